package texremap

import (
	"fmt"
	"strconv"
	"strings"
)

// Channel selects one of the four scalar components of a pixel.
type Channel uint8

const (
	Red Channel = iota
	Green
	Blue
	Alpha
)

// Channels lists every valid channel in ordinal order.
var Channels = [...]Channel{Red, Green, Blue, Alpha}

// Valid reports whether c is one of Red, Green, Blue or Alpha.
func (c Channel) Valid() bool {
	return c <= Alpha
}

func (c Channel) String() string {
	switch c {
	case Red:
		return "R"
	case Green:
		return "G"
	case Blue:
		return "B"
	case Alpha:
		return "A"
	default:
		return "Channel(" + strconv.Itoa(int(c)) + ")"
	}
}

// ParseChannel accepts a channel letter (r, g, b, a), its full name or its
// ordinal 0-3. Case is ignored.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r", "red", "0":
		return Red, nil
	case "g", "green", "1":
		return Green, nil
	case "b", "blue", "2":
		return Blue, nil
	case "a", "alpha", "3":
		return Alpha, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidChannel, s)
}

func (c Channel) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannel, c)
	}
	return []byte(c.String()), nil
}

func (c *Channel) UnmarshalText(text []byte) error {
	ch, err := ParseChannel(string(text))
	if err != nil {
		return err
	}
	*c = ch
	return nil
}
