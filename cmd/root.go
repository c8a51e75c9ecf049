// cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ColonelBlimp/cwtrainer/internal/audio"
	"github.com/ColonelBlimp/cwtrainer/internal/config"
	"github.com/ColonelBlimp/cwtrainer/internal/cw"
	"github.com/ColonelBlimp/cwtrainer/internal/logging"
	"github.com/ColonelBlimp/cwtrainer/internal/recovery"
	"github.com/ColonelBlimp/cwtrainer/internal/speech"
	"github.com/ColonelBlimp/cwtrainer/internal/tone"
	"github.com/ColonelBlimp/cwtrainer/internal/trainer"
	"github.com/ColonelBlimp/cwtrainer/internal/tui"
)

// eventBuffer is the number of scheduler events the TUI may fall behind by.
const eventBuffer = 64

var rootCmd = &cobra.Command{
	Use:   "cwtrainer",
	Short: "CW (Morse code) listening trainer",
	Long: `A Morse code listening trainer. Random characters are played as audio,
each repeated a configurable number of times, then revealed on screen and
optionally spoken aloud.`,
	SilenceUsage: true,
	RunE:         runTrainer,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flagBindings maps persistent flags to their config keys.
var flagBindings = map[string]string{
	"wpm":         config.KeyWPM,
	"repetitions": config.KeyRepetitions,
	"farnsworth":  config.KeyFarnsworthWPM,
	"frequency":   config.KeyToneFrequency,
	"volume":      config.KeyToneVolume,
	"language":    config.KeyLanguage,
	"announce":    config.KeyAnnounce,
	"device":      "device_index",
	"debug":       "debug",
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (override config file)
	flags := rootCmd.PersistentFlags()
	flags.IntP("wpm", "w", 20, "character speed in words per minute")
	flags.IntP("repetitions", "r", 3, "times each character is played")
	flags.Int("farnsworth", 0, "effective speed with stretched gaps (0 = off)")
	flags.Float64P("frequency", "f", 700, "tone frequency in Hz")
	flags.Float64P("volume", "v", 0, "tone volume in dB (-60 to 0)")
	flags.StringP("language", "l", "en", "announcement language (en, fr)")
	flags.Bool("announce", true, "speak each character before and after it is played")
	flags.StringP("alphabet", "a", "", "characters to train (default: the whole table)")
	flags.IntP("device", "d", -1, "audio device index (-1 for default)")
	flags.BoolP("debug", "D", false, "enable debug output")

	rootCmd.Flags().Bool("headless", false, "run without the TUI, printing each character as it is revealed")
	rootCmd.Flags().IntP("count", "n", 0, "stop after this many characters (0 = until interrupted)")

	rootCmd.AddCommand(devicesCmd, exportCmd, tableCmd)
}

func initConfig() {
	bindFlags()
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
}

// bindFlags binds the persistent flags to viper. It runs on every command
// so a viper.Reset does not lose the bindings.
func bindFlags() {
	for name, key := range flagBindings {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(name))
	}
}

func runTrainer(cmd *cobra.Command, _ []string) error {
	settings, err := config.Get()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	headless, _ := cmd.Flags().GetBool("headless")
	count, _ := cmd.Flags().GetInt("count")
	alphabetFlag, _ := cmd.Flags().GetString("alphabet")
	alphabet, err := parseAlphabet(alphabetFlag)
	if err != nil {
		return err
	}

	var logOut io.Writer = os.Stderr
	if !headless {
		f, err := logging.OpenFile(config.Dir())
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	log := logging.New(logOut, settings.Debug)
	recovery.SetLogger(log)

	out := audio.New(audioConfig(settings), log)
	if err := out.Init(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	defer out.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := out.Start(ctx); err != nil {
		if headless {
			return fmt.Errorf("audio: %w", err)
		}
		// The TUI reports the failure when training is started
		log.Error().Err(err).Msg("Playback device unavailable")
	}

	opts := trainer.Options{
		Settings:   trainerSettings(settings),
		Alphabet:   alphabet,
		Characters: count,
		Announcer:  speech.NewEspeak(settings.EspeakPath, settings.SpeechRate, log),
		Persister:  config.NewStore(nil),
		Log:        log,
	}
	synth := tone.NewSynthesizer(out, log)

	if headless {
		opts.Observer = printObserver(cmd.OutOrStdout())
		return runHeadless(ctx, trainer.New(synth, opts))
	}

	events, observe := tui.Events(eventBuffer)
	opts.Observer = observe
	sched := trainer.New(synth, opts)
	defer sched.Stop()

	_, err = tea.NewProgram(tui.NewModel(sched, events), tea.WithAltScreen()).Run()
	return err
}

// runHeadless trains until the character limit is reached or ctx is done.
func runHeadless(ctx context.Context, sched *trainer.Scheduler) error {
	if err := sched.Start(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		sched.Stop()
		return nil
	case <-sched.Done():
		return sched.Err()
	}
}

// printObserver writes each revealed character with its pattern to w.
func printObserver(w io.Writer) trainer.Observer {
	return func(e trainer.Event) {
		if e.Kind == trainer.EventRevealed {
			fmt.Fprintf(w, "%c  %s\n", e.Char, e.Pattern)
		}
	}
}

func trainerSettings(s *config.Settings) trainer.Settings {
	return trainer.Settings{
		WPM:         s.WPM,
		Repetitions: s.Repetitions,
		Tone: tone.Params{
			FrequencyHz: s.ToneFrequency,
			VolumeDb:    s.ToneVolume,
		},
		Language:      speech.Language(s.Language),
		Announce:      s.Announce,
		FarnsworthWPM: s.FarnsworthWPM,
	}
}

func audioConfig(s *config.Settings) audio.Config {
	return audio.Config{
		DeviceIndex: s.DeviceIndex,
		SampleRate:  uint32(s.SampleRate),
		Channels:    uint32(s.Channels),
		BufferSize:  uint32(s.BufferSize),
	}
}

// stderrLogger is used by subcommands that only report to stdout.
func stderrLogger(debug bool) zerolog.Logger {
	if debug {
		return logging.New(os.Stderr, true)
	}
	return zerolog.Nop()
}

var errNoCharacters = errors.New("alphabet contains no known characters")

// parseAlphabet returns the characters of s to train. An empty s selects the
// whole table. Characters without a Morse pattern are rejected.
func parseAlphabet(s string) ([]rune, error) {
	if s == "" {
		return nil, nil
	}
	upper := []rune(strings.ToUpper(s))
	unknown := lo.Reject(upper, func(r rune, _ int) bool {
		_, ok := cw.Lookup(r)
		return ok || unicode.IsSpace(r)
	})
	if len(unknown) > 0 {
		return nil, fmt.Errorf("alphabet: no Morse pattern for %q", string(lo.Uniq(unknown)))
	}
	known := lo.Uniq(lo.Filter(upper, func(r rune, _ int) bool { return !unicode.IsSpace(r) }))
	if len(known) == 0 {
		return nil, errNoCharacters
	}
	return known, nil
}
