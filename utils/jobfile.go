package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/setanarut/texremap"
)

// JobFile is the on-disk form of a texremap.Job:
//
//	{
//	  "name": "mask",
//	  "sources": [
//	    {"path": "metal.png", "rules": [{"from": "R", "to": "R"}]},
//	    {"path": "rough.png", "rules": [{"from": "R", "invert": true, "to": "A"}]}
//	  ]
//	}
//
// Relative source paths are resolved against the directory of the file.
type JobFile struct {
	Name    string       `json:"name"`
	Sources []SourceFile `json:"sources"`

	dir string
}

type SourceFile struct {
	Path  string                 `json:"path"`
	Rules []texremap.ChannelRule `json:"rules"`
}

func LoadJobFile(path string) (*JobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var jf JobFile
	if err := json.Unmarshal(data, &jf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	jf.dir = filepath.Dir(path)
	return &jf, nil
}

// SourcePath returns the resolved path of source i, or "" when unset.
func (jf *JobFile) SourcePath(i int) string {
	p := jf.Sources[i].Path
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(jf.dir, p)
}

// Job decodes every source image. Sources without a path become mappings
// without an image.
func (jf *JobFile) Job() (texremap.Job, error) {
	job := texremap.Job{
		Name:    jf.Name,
		Sources: make([]texremap.SourceMapping, len(jf.Sources)),
	}
	for i, s := range jf.Sources {
		job.Sources[i].Rules = s.Rules
		path := jf.SourcePath(i)
		if path == "" {
			continue
		}
		img, err := ReadImage(path)
		if err != nil {
			return texremap.Job{}, fmt.Errorf("source %d: %w", i, err)
		}
		job.Sources[i].Image = img
	}
	return job, nil
}

// OutputDir is the directory of the first source with a path, where the
// result is written by default.
func (jf *JobFile) OutputDir() string {
	for i := range jf.Sources {
		if p := jf.SourcePath(i); p != "" {
			return filepath.Dir(p)
		}
	}
	return jf.dir
}
