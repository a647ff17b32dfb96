package main

import (
	"fmt"

	"github.com/setanarut/texremap/utils"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Print size, channel statistics and palette of an image",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().IntP("colors", "k", 5, "Number of palette colors")
	inspectCmd.Flags().String("method", "dominantcolor", "Palette method (dominantcolor, kmeans)")
	inspectCmd.Flags().String("palette", "", "Write the palette as a PNG strip to this path")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	k, _ := cmd.Flags().GetInt("colors")
	methodStr, _ := cmd.Flags().GetString("method")
	palettePath, _ := cmd.Flags().GetString("palette")

	method, err := utils.ParsePaletteMethod(methodStr)
	if err != nil {
		return err
	}

	img, err := utils.ReadImage(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	b := img.Bounds()
	fmt.Printf("File:       %s\n", path)
	fmt.Printf("Dimensions: %d x %d\n", b.Dx(), b.Dy())
	fmt.Println("Channels:")
	for _, s := range utils.ChannelStats(img) {
		fmt.Printf("  %s\n", s)
	}

	palette := utils.ExtractPalette(img, k, method)
	fmt.Printf("Palette (%s):\n", method)
	for _, s := range palette {
		fmt.Printf("  %s\n", s)
	}

	if palettePath != "" {
		if err := utils.SavePalette(palette, 64, palettePath); err != nil {
			return fmt.Errorf("writing palette: %w", err)
		}
		fmt.Printf("Palette image: %s\n", palettePath)
	}
	return nil
}
