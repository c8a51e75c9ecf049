// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/ColonelBlimp/cwtrainer/internal/speech"
	"github.com/ColonelBlimp/cwtrainer/internal/tone"
)

const (
	AppName       = "cwtrainer"
	ConfigType    = "yaml"
	DefaultConfig = `# CW Trainer Configuration

# Training
wpm: 20                 # Character speed in words per minute (PARIS)
repetitions: 3          # Times each character is played before the next
farnsworth_wpm: 0       # Effective speed with stretched gaps, 0 = off

# Tone
tone_frequency: 700     # Tone frequency in Hz (100-3000)
tone_volume: 0          # Tone volume in dB (-60 to 0)

# Announcements
announce: true          # Speak each character before and after it is played
language: "en"          # Announcement language: en, fr
espeak_path: "espeak-ng" # Speech synthesizer binary
speech_rate: 160        # Speech rate in words per minute

# Audio device settings
device_index: -1        # -1 for default device
sample_rate: 48000      # Audio sample rate in Hz
channels: 1             # Number of channels (1=mono, 2=stereo)
buffer_size: 512        # Frames per device period

# Output
debug: false            # Enable debug output
`
)

// Preference keys written back when the user changes a setting.
const (
	KeyWPM           = "wpm"
	KeyRepetitions   = "repetitions"
	KeyFarnsworthWPM = "farnsworth_wpm"
	KeyToneFrequency = "tone_frequency"
	KeyToneVolume    = "tone_volume"
	KeyAnnounce      = "announce"
	KeyLanguage      = "language"
)

// Settings holds all application configuration. Training preferences are
// read key by key in Get so a bad value is clamped instead of failing.
type Settings struct {
	// Training
	WPM           int `mapstructure:"-"`
	Repetitions   int `mapstructure:"-"`
	FarnsworthWPM int `mapstructure:"-"`

	// Tone
	ToneFrequency float64 `mapstructure:"-"`
	ToneVolume    float64 `mapstructure:"-"`

	// Announcements
	Announce   bool   `mapstructure:"-"`
	Language   string `mapstructure:"-"`
	EspeakPath string `mapstructure:"espeak_path"`
	SpeechRate int    `mapstructure:"speech_rate"`

	// Audio device settings
	DeviceIndex int     `mapstructure:"device_index"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Channels    int     `mapstructure:"channels"`
	BufferSize  int     `mapstructure:"buffer_size"`

	// Output
	Debug bool `mapstructure:"debug"`
}

// Init initializes Viper with defaults and config file.
// Config file search order: current directory, then ~/.config/cwtrainer/
func Init() error {
	// Set defaults
	viper.SetDefault(KeyWPM, 20)
	viper.SetDefault(KeyRepetitions, 3)
	viper.SetDefault(KeyFarnsworthWPM, 0)
	viper.SetDefault(KeyToneFrequency, 700)
	viper.SetDefault(KeyToneVolume, 0)
	viper.SetDefault(KeyAnnounce, true)
	viper.SetDefault(KeyLanguage, "en")
	viper.SetDefault("espeak_path", "espeak-ng")
	viper.SetDefault("speech_rate", 160)
	viper.SetDefault("device_index", -1)
	viper.SetDefault("sample_rate", 48000)
	viper.SetDefault("channels", 1)
	viper.SetDefault("buffer_size", 512)
	viper.SetDefault("debug", false)

	viper.SetConfigType(ConfigType)

	// Priority order: current directory first, then XDG config
	viper.AddConfigPath(".")

	configDir := Dir()
	viper.AddConfigPath(configDir)

	// Try .config.yaml first (hidden file), then config.yaml
	viper.SetConfigName(".config")
	err := viper.ReadInConfig()
	if err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	// Read config file - if not found, create default in XDG config dir
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("read config: %w", err)
		}
		if err = ensureConfigExists(configDir); err != nil {
			return err
		}
		if err = viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

// Dir returns the per-user configuration directory, ~/.config/cwtrainer.
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, AppName)
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings. Training preferences are normalized,
// device settings are validated.
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	s.readPreferences(viper.GetViper())
	s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// readPreferences reads the training preferences from v. A value that does not
// parse is treated like the lowest valid one for speeds and repetitions, and
// like the default for everything else.
func (s *Settings) readPreferences(v *viper.Viper) {
	s.WPM = intOr(v.Get(KeyWPM), 1)
	s.Repetitions = intOr(v.Get(KeyRepetitions), 1)
	s.FarnsworthWPM = intOr(v.Get(KeyFarnsworthWPM), 0)
	s.ToneFrequency = floatOr(v.Get(KeyToneFrequency), tone.DefaultFrequencyHz)
	s.ToneVolume = floatOr(v.Get(KeyToneVolume), tone.DefaultVolumeDb)
	s.Announce = boolOr(v.Get(KeyAnnounce), true)
	s.Language = cast.ToString(v.Get(KeyLanguage))
}

func intOr(value any, fallback int) int {
	n, err := cast.ToIntE(value)
	if err != nil {
		return fallback
	}
	return n
}

func floatOr(value any, fallback float64) float64 {
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return fallback
	}
	return f
}

func boolOr(value any, fallback bool) bool {
	b, err := cast.ToBoolE(value)
	if err != nil {
		return fallback
	}
	return b
}

// Normalize clamps training preferences to usable values. A bad speed, tone
// or language in the config file never stops the trainer.
func (s *Settings) Normalize() {
	s.WPM = max(s.WPM, 1)
	s.Repetitions = max(s.Repetitions, 1)
	s.FarnsworthWPM = max(s.FarnsworthWPM, 0)
	s.ToneFrequency = tone.ClampFrequency(s.ToneFrequency)
	s.ToneVolume = tone.ClampVolume(s.ToneVolume)
	s.Language = string(speech.ParseLanguage(s.Language))
}

// Validate checks that all settings are within acceptable ranges
func (s *Settings) Validate() error {
	var errs []error

	// Training
	if s.WPM < 1 {
		errs = append(errs, fmt.Errorf("wpm must be at least 1, got %d", s.WPM))
	}
	if s.Repetitions < 1 {
		errs = append(errs, fmt.Errorf("repetitions must be at least 1, got %d", s.Repetitions))
	}
	if s.FarnsworthWPM < 0 {
		errs = append(errs, fmt.Errorf("farnsworth_wpm must not be negative, got %d", s.FarnsworthWPM))
	}

	// Announcements
	if !speech.Language(s.Language).Valid() {
		errs = append(errs, fmt.Errorf("language must be one of %v, got %q", speech.Supported(), s.Language))
	}
	if s.SpeechRate < 80 || s.SpeechRate > 450 {
		errs = append(errs, fmt.Errorf("speech_rate must be between 80 and 450, got %d", s.SpeechRate))
	}

	// Audio device settings
	if s.SampleRate < 8000 || s.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %v", s.SampleRate))
	}
	if s.Channels < 1 || s.Channels > 2 {
		errs = append(errs, fmt.Errorf("channels must be 1 or 2, got %d", s.Channels))
	}
	if s.BufferSize < 64 || s.BufferSize > 8192 {
		errs = append(errs, fmt.Errorf("buffer_size must be between 64 and 8192, got %d", s.BufferSize))
	}
	if s.BufferSize&(s.BufferSize-1) != 0 {
		errs = append(errs, fmt.Errorf("buffer_size should be a power of 2, got %d", s.BufferSize))
	}

	// Nyquist check: the tone and its filter cutoff must stay below half the sample rate
	if s.ToneFrequency >= s.SampleRate/2 {
		errs = append(errs, fmt.Errorf("tone_frequency (%v Hz) must be less than Nyquist frequency (%v Hz)", s.ToneFrequency, s.SampleRate/2))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
