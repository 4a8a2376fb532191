package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/ahmetildirim/sightreading.studio/internal/adapters/midi/registry"
)

func init() {
	rootCmd.AddCommand(devicesCmd)
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available MIDI input sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		drv, err := rtmididrv.New()
		if err != nil {
			return fmt.Errorf("init midi driver: %w", err)
		}
		defer drv.Close()

		reg := registry.New(drv,
			registry.WithExcludedPatterns(cfg.ExcludedDevices),
			registry.WithPreferredPatterns(cfg.PreferredDevices),
		)
		devices, err := reg.Devices(cmd.Context())
		if err != nil {
			return fmt.Errorf("enumerate inputs: %w", err)
		}
		if len(devices) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no MIDI inputs available")
			return nil
		}

		picked, ok := reg.Pick(devices)
		for _, d := range devices {
			marker := " "
			if ok && d.ID == picked.ID {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, d.Name)
		}
		return nil
	},
}
