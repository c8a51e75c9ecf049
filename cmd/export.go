package cmd

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/cwtrainer/internal/config"
	"github.com/ColonelBlimp/cwtrainer/internal/trainer"
	"github.com/ColonelBlimp/cwtrainer/internal/wavout"
)

var exportCmd = &cobra.Command{
	Use:   "export <file.wav>",
	Short: "Render a practice session to a WAV file",
	Long: `Renders a session of random characters to a 16-bit mono WAV file using the
configured speed, repetitions and tone, then prints the answer key.
Announcements are not rendered.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().IntP("count", "n", 10, "number of characters to render")
	exportCmd.Flags().Uint64("seed", 0, "random seed for a repeatable session (0 = random)")
}

func runExport(cmd *cobra.Command, args []string) error {
	settings, err := config.Get()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	count, _ := cmd.Flags().GetInt("count")
	if count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", count)
	}
	seed, _ := cmd.Flags().GetUint64("seed")
	alphabetFlag, _ := cmd.Flags().GetString("alphabet")
	alphabet, err := parseAlphabet(alphabetFlag)
	if err != nil {
		return err
	}

	rec := wavout.NewRecorder(settings.SampleRate)
	set := trainerSettings(settings)
	set.Announce = false

	var key []string
	opts := trainer.Options{
		Settings:   set,
		Alphabet:   alphabet,
		Characters: count,
		Clock:      rec,
		Observer: func(e trainer.Event) {
			if e.Kind == trainer.EventRevealed {
				key = append(key, string(e.Char))
			}
		},
		Log: stderrLogger(settings.Debug),
	}
	if seed != 0 {
		opts.Rand = rand.New(rand.NewPCG(seed, seed))
	}

	sched := trainer.New(rec, opts)
	if err := sched.Start(); err != nil {
		return err
	}
	<-sched.Done()
	if err := sched.Err(); err != nil {
		return err
	}

	if err := rec.Save(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", args[0], rec.Duration().Round(time.Millisecond))
	fmt.Fprintf(cmd.OutOrStdout(), "Answer key: %s\n", strings.Join(key, " "))
	return nil
}
