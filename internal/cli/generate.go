package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ahmetildirim/sightreading.studio/internal/config"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/generate"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/notation"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/pitch"
)

var (
	generateSeed     uint32
	generateOut      string
	generateExpected bool
	generateMin      int
	generateMax      int
	generateClef     string
	generateNPM      int
	generateTotal    int
)

func init() {
	generateCmd.Flags().Uint32Var(&generateSeed, "seed", 0, "seed of the deterministic random stream")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "write MusicXML to a file instead of stdout")
	generateCmd.Flags().BoolVar(&generateExpected, "expected", false, "print the expected pitch sequence instead of MusicXML")
	generateCmd.Flags().IntVar(&generateMin, "min-pitch", 0, "lowest pitch of the range (default from config)")
	generateCmd.Flags().IntVar(&generateMax, "max-pitch", 0, "highest pitch of the range (default from config)")
	generateCmd.Flags().StringVar(&generateClef, "clef", "", "clef: treble or bass (default from config)")
	generateCmd.Flags().IntVar(&generateNPM, "notes-per-measure", 0, "notes per generated measure (default from config)")
	generateCmd.Flags().IntVar(&generateTotal, "total-notes", 0, "total notes in the exercise (default from config)")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an exercise as MusicXML",
	Long: `Generates a deterministic exercise for the configured pitch range and
prints its MusicXML serialization. The same seed always yields the same
exercise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("min-pitch") {
			cfg.MinPitch = generateMin
		}
		if cmd.Flags().Changed("max-pitch") {
			cfg.MaxPitch = generateMax
		}
		if cmd.Flags().Changed("clef") {
			cfg.Clef = generateClef
		}
		if cmd.Flags().Changed("notes-per-measure") {
			cfg.NotesPerMeasure = generateNPM
		}
		if cmd.Flags().Changed("total-notes") {
			cfg.TotalNotes = generateTotal
		}
		// Re-check bounds here: flag overrides skip the loader's
		// validation, and an out-of-range value must not wrap through
		// the uint8 pitch conversion below.
		if cfg.MinPitch < 0 || cfg.MinPitch > 127 || cfg.MaxPitch < 0 || cfg.MaxPitch > 127 {
			return fmt.Errorf("%w: pitch range [%d,%d] outside 0..127",
				config.ErrInvalidConfig, cfg.MinPitch, cfg.MaxPitch)
		}

		g := generate.New(generate.WithDurations(cfg.Durations))
		result, err := g.Generate(cmd.Context(), generate.Params{
			Range:           rangeFromConfig(),
			NotesPerMeasure: cfg.NotesPerMeasure,
			TotalNotes:      cfg.TotalNotes,
			Seed:            generateSeed,
		})
		if err != nil {
			return err
		}

		if generateExpected {
			for i, p := range result.Expected {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d\n", i, p)
			}
			return nil
		}

		xml, err := result.Document.MusicXML()
		if err != nil {
			return err
		}
		if generateOut != "" {
			return os.WriteFile(generateOut, xml, 0o644)
		}
		_, err = cmd.OutOrStdout().Write(append(xml, '\n'))
		return err
	},
}

func rangeFromConfig() generate.RangeSpec {
	clef := notation.ClefTreble
	if cfg.Clef == string(notation.ClefBass) {
		clef = notation.ClefBass
	}
	return generate.RangeSpec{
		Min:  pitch.Pitch(cfg.MinPitch),
		Max:  pitch.Pitch(cfg.MaxPitch),
		Clef: clef,
	}
}
