package main

import (
	"fmt"
	"strings"

	"github.com/setanarut/texremap"
	"github.com/setanarut/texremap/utils"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Remap channels of the source images into a new PNG",
	Example: `  texremap run --job mask.json
  texremap run -s metal.png:R>R -s ao.png:R>G -s rough.png:!R>A --name mask`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringP("job", "j", "", "JSON job file")
	runCmd.Flags().StringArrayP("source", "s", nil, "Source as PATH:RULES, e.g. a.png:R>R,!G>A (repeatable, in order)")
	runCmd.Flags().StringP("name", "n", "", "Output name (overrides the job file)")
	runCmd.Flags().String("out-dir", "", "Output directory (default: directory of the first source)")
	runCmd.Flags().StringP("output", "o", "", "Exact output path; an existing file is overwritten")
	runCmd.Flags().Int("workers", texremap.DefaultOptions().Workers, "Goroutines per rule pass")
	runCmd.MarkFlagsMutuallyExclusive("job", "source")
	runCmd.MarkFlagsOneRequired("job", "source")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	jobPath, _ := cmd.Flags().GetString("job")
	sources, _ := cmd.Flags().GetStringArray("source")
	name, _ := cmd.Flags().GetString("name")
	outDir, _ := cmd.Flags().GetString("out-dir")
	outputPath, _ := cmd.Flags().GetString("output")
	workers, _ := cmd.Flags().GetInt("workers")

	var jf *utils.JobFile
	if jobPath != "" {
		var err error
		if jf, err = utils.LoadJobFile(jobPath); err != nil {
			return fmt.Errorf("loading job: %w", err)
		}
	} else {
		jf = &utils.JobFile{}
		for _, s := range sources {
			sf, err := parseSourceFlag(s)
			if err != nil {
				return err
			}
			jf.Sources = append(jf.Sources, sf)
		}
	}
	if name != "" {
		jf.Name = name
	}
	if jf.Name == "" {
		jf.Name = "RemappedTexture"
	}

	job, err := jf.Job()
	if err != nil {
		return fmt.Errorf("loading sources: %w", err)
	}
	if err := job.Ready(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	canvas, err := texremap.New(texremap.Options{Workers: workers}).Run(job)
	if err != nil {
		return fmt.Errorf("remap: %w", err)
	}

	if outputPath == "" {
		if outDir == "" {
			outDir = jf.OutputDir()
		}
		if outputPath, err = utils.SuggestOutputPath(outDir, jf.Name); err != nil {
			return fmt.Errorf("choosing output path: %w", err)
		}
	}
	if err := utils.SaveImage(canvas.NRGBA(), outputPath); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	fmt.Printf("Remapped %d source(s) → %dx%d RGBA\n", len(job.Sources), canvas.Width(), canvas.Height())
	for i, m := range job.Sources {
		rules := make([]string, len(m.Rules))
		for j, r := range m.Rules {
			rules[j] = r.String()
		}
		fmt.Printf("  %s: %s\n", jf.SourcePath(i), strings.Join(rules, ", "))
	}
	fmt.Printf("Output: %s\n", outputPath)
	return nil
}

// parseSourceFlag splits "PATH:RULES" at the last colon so paths may contain
// colons themselves.
func parseSourceFlag(s string) (utils.SourceFile, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 {
		return utils.SourceFile{}, fmt.Errorf("source %q: want PATH:RULES", s)
	}
	rules, err := texremap.ParseRules(s[i+1:])
	if err != nil {
		return utils.SourceFile{}, fmt.Errorf("source %q: %w", s, err)
	}
	if len(rules) == 0 {
		return utils.SourceFile{}, fmt.Errorf("source %q: %w", s, texremap.ErrNoRules)
	}
	return utils.SourceFile{Path: s[:i], Rules: rules}, nil
}
