package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/ahmetildirim/sightreading.studio/internal/adapters/midi/registry"
	"github.com/ahmetildirim/sightreading.studio/internal/adapters/midi/simulator"
	"github.com/ahmetildirim/sightreading.studio/internal/app"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/decode"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/generate"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/session"
)

var (
	practiceSeed        uint32
	practiceDevice      string
	practiceSimulate    bool
	practiceMistakeRate float64
)

func init() {
	practiceCmd.Flags().Uint32Var(&practiceSeed, "seed", 0, "seed of the deterministic random stream")
	practiceCmd.Flags().StringVar(&practiceDevice, "device", "", "MIDI input to listen to (default: auto-pick)")
	practiceCmd.Flags().BoolVar(&practiceSimulate, "simulate", false, "replay a scripted performance instead of listening to hardware")
	practiceCmd.Flags().Float64Var(&practiceMistakeRate, "mistake-rate", 0, "probability of injected mistakes in simulated playback")
	rootCmd.AddCommand(practiceCmd)
}

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run a practice session against live or simulated input",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		svc := app.New(
			app.WithQueueSize(cfg.QueueSize),
			app.WithDurations(cfg.Durations),
			app.WithVerdictHandler(func(v app.VerdictEvent) {
				printVerdict(out, v)
			}),
		)
		if err := svc.Start(ctx); err != nil {
			return err
		}
		defer svc.Stop()

		ex, err := svc.NewExercise(ctx, generate.Params{
			Range:           rangeFromConfig(),
			NotesPerMeasure: cfg.NotesPerMeasure,
			TotalNotes:      cfg.TotalNotes,
			Seed:            practiceSeed,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "session %s: %d notes, play in order\n", ex.SessionID, len(ex.Expected))

		src, cleanup, err := buildSource(ctx, ex)
		if err != nil {
			return err
		}
		if cleanup != nil {
			defer cleanup()
		}

		if err := svc.Attach(ctx, src); err != nil {
			return err
		}
		defer svc.Detach()

		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				fmt.Fprintln(out, "session aborted")
				return nil
			case <-ticker.C:
				stats := svc.Stats()
				if stats.State == session.StateComplete {
					fmt.Fprintf(out, "complete: %d/%d correct, accuracy %d%%\n",
						stats.CorrectAttempts, stats.Attempts, stats.Accuracy)
					return nil
				}
			}
		}
	},
}

// buildSource wires either the simulator or a hardware subscription.
func buildSource(ctx context.Context, ex app.Exercise) (app.Source, func(), error) {
	if practiceSimulate {
		src := simulator.New(
			simulator.WithMistakeRate(practiceMistakeRate),
			simulator.WithSeed(int64(practiceSeed)),
		)
		src.LoadExpected(ex.Expected)
		return src, nil, nil
	}

	drv, err := rtmididrv.New()
	if err != nil {
		return nil, nil, fmt.Errorf("init midi driver: %w", err)
	}
	reg := registry.New(drv,
		registry.WithExcludedPatterns(cfg.ExcludedDevices),
		registry.WithPreferredPatterns(cfg.PreferredDevices),
	)

	deviceID := practiceDevice
	if deviceID == "" {
		devices, err := reg.Devices(ctx)
		if err != nil {
			drv.Close()
			return nil, nil, err
		}
		picked, ok := reg.Pick(devices)
		if !ok {
			drv.Close()
			return nil, nil, registry.ErrNoDevices
		}
		deviceID = picked.ID
	}

	return &deviceSource{reg: reg, id: deviceID}, func() { drv.Close() }, nil
}

// deviceSource binds a registry subscription to one chosen device.
type deviceSource struct {
	reg *registry.Registry
	id  string
}

func (d *deviceSource) Subscribe(ctx context.Context, fn func(decode.Message)) (func(), error) {
	return d.reg.Subscribe(ctx, d.id, fn)
}

func printVerdict(out io.Writer, v app.VerdictEvent) {
	switch v.Event.Kind {
	case decode.NoteDown:
		fmt.Fprintf(out, "  down %3d -> %s (cursor %d, accuracy %d%%)\n", v.Event.Pitch, v.Verdict, v.Cursor, v.Accuracy)
	case decode.NoteUp:
		if v.Verdict != session.VerdictIdle {
			fmt.Fprintf(out, "  up   %3d -> %s\n", v.Event.Pitch, v.Verdict)
		}
	case decode.AllReleased:
		// Quiet; the cursor line already moved.
	}
}
