package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ColonelBlimp/cwtrainer/internal/audio"
	"github.com/ColonelBlimp/cwtrainer/internal/config"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio playback devices",
	Long:  `Lists the playback devices by index. Pass an index to --device to train on it.`,
	Args:  cobra.NoArgs,
	RunE:  runDevices,
}

func runDevices(cmd *cobra.Command, _ []string) error {
	settings, err := config.Get()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	out := audio.New(audioConfig(settings), stderrLogger(viper.GetBool("debug")))
	if err := out.Init(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	defer out.Close()

	devices, err := out.ListDevices()
	if err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	if len(devices) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No playback devices found")
		return nil
	}
	for i, d := range devices {
		marker := " "
		if d.IsDefault != 0 {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s [%d] %s\n", marker, i, d.Name())
	}
	return nil
}
