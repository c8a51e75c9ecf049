package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func resetViper() {
	viper.Reset()
}

// setupHome points the user config directory at a fresh temp dir.
func setupHome(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	return tmpDir
}

func writeUserConfig(t *testing.T, home, content string) {
	t.Helper()
	configDir := filepath.Join(home, ".config", AppName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origDir, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			t.Logf("failed to restore dir: %v", err)
		}
	})
}

func TestInit_WithDefaults(t *testing.T) {
	resetViper()
	home := setupHome(t)
	writeUserConfig(t, home, DefaultConfig)

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	tests := []struct {
		key      string
		expected interface{}
	}{
		{"wpm", 20},
		{"repetitions", 3},
		{"farnsworth_wpm", 0},
		{"tone_frequency", 700},
		{"tone_volume", 0},
		{"announce", true},
		{"language", "en"},
		{"espeak_path", "espeak-ng"},
		{"speech_rate", 160},
		{"device_index", -1},
		{"sample_rate", 48000},
		{"channels", 1},
		{"buffer_size", 512},
		{"debug", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := viper.Get(tt.key)
			if got != tt.expected {
				t.Errorf("viper.Get(%q) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestInit_CreatesConfigIfMissing(t *testing.T) {
	resetViper()
	home := setupHome(t)

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	configPath := filepath.Join(home, ".config", AppName, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Errorf("Init() did not create config file at %s", configPath)
	}
	if got := viper.ConfigFileUsed(); got != configPath {
		t.Errorf("ConfigFileUsed() = %q, want %q", got, configPath)
	}
}

func TestInit_ReadsLocalConfigFirst(t *testing.T) {
	resetViper()
	home := setupHome(t)
	writeUserConfig(t, home, "wpm: 20")

	chdir(t, home)
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte("wpm: 25"), 0644); err != nil {
		t.Fatalf("failed to write local config: %v", err)
	}

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if got := viper.GetInt("wpm"); got != 25 {
		t.Errorf("viper.GetInt(wpm) = %d, want 25 (local config)", got)
	}
}

func TestInit_DotConfigTakesPrecedence(t *testing.T) {
	resetViper()
	home := setupHome(t)
	chdir(t, home)

	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte("repetitions: 2"), 0644); err != nil {
		t.Fatalf("failed to write config.yaml: %v", err)
	}
	if err := os.WriteFile(filepath.Join(home, ".config.yaml"), []byte("repetitions: 5"), 0644); err != nil {
		t.Fatalf("failed to write .config.yaml: %v", err)
	}

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if got := viper.GetInt("repetitions"); got != 5 {
		t.Errorf("viper.GetInt(repetitions) = %d, want 5 (.config.yaml)", got)
	}
}

func TestInit_InvalidConfigFile(t *testing.T) {
	resetViper()
	home := setupHome(t)
	writeUserConfig(t, home, "invalid: yaml: content: [[[")

	if err := Init(); err == nil {
		t.Error("Init() should return error for invalid YAML")
	}
}

func TestGet_ReturnsSettings(t *testing.T) {
	resetViper()
	home := setupHome(t)
	writeUserConfig(t, home, DefaultConfig)

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	settings, err := Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if settings.WPM != 20 {
		t.Errorf("Settings.WPM = %d, want 20", settings.WPM)
	}
	if settings.Repetitions != 3 {
		t.Errorf("Settings.Repetitions = %d, want 3", settings.Repetitions)
	}
	if settings.ToneFrequency != 700 {
		t.Errorf("Settings.ToneFrequency = %f, want 700", settings.ToneFrequency)
	}
	if settings.ToneVolume != 0 {
		t.Errorf("Settings.ToneVolume = %f, want 0", settings.ToneVolume)
	}
	if settings.Language != "en" {
		t.Errorf("Settings.Language = %q, want en", settings.Language)
	}
	if !settings.Announce {
		t.Errorf("Settings.Announce = %v, want true", settings.Announce)
	}
	if settings.DeviceIndex != -1 {
		t.Errorf("Settings.DeviceIndex = %d, want -1", settings.DeviceIndex)
	}
	if settings.SampleRate != 48000 {
		t.Errorf("Settings.SampleRate = %f, want 48000", settings.SampleRate)
	}
	if settings.BufferSize != 512 {
		t.Errorf("Settings.BufferSize = %d, want 512", settings.BufferSize)
	}
}

func TestGet_AllFields(t *testing.T) {
	resetViper()
	home := setupHome(t)

	customConfig := `wpm: 25
repetitions: 5
farnsworth_wpm: 12
tone_frequency: 600
tone_volume: -12
announce: false
language: "fr"
espeak_path: "/usr/local/bin/espeak"
speech_rate: 200
device_index: 2
sample_rate: 96000
channels: 2
buffer_size: 1024
debug: true
`
	writeUserConfig(t, home, customConfig)

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	settings, err := Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	want := Settings{
		WPM:           25,
		Repetitions:   5,
		FarnsworthWPM: 12,
		ToneFrequency: 600,
		ToneVolume:    -12,
		Announce:      false,
		Language:      "fr",
		EspeakPath:    "/usr/local/bin/espeak",
		SpeechRate:    200,
		DeviceIndex:   2,
		SampleRate:    96000,
		Channels:      2,
		BufferSize:    1024,
		Debug:         true,
	}
	if *settings != want {
		t.Errorf("Get() = %+v, want %+v", *settings, want)
	}
}

// Bad training preferences are clamped rather than rejected.
func TestGet_NormalizesPreferences(t *testing.T) {
	resetViper()
	home := setupHome(t)
	writeUserConfig(t, home, "wpm: 0\nrepetitions: -2\nlanguage: \"de\"\n")

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	settings, err := Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if settings.WPM != 1 {
		t.Errorf("Settings.WPM = %d, want 1", settings.WPM)
	}
	if settings.Repetitions != 1 {
		t.Errorf("Settings.Repetitions = %d, want 1", settings.Repetitions)
	}
	if settings.Language != "en" {
		t.Errorf("Settings.Language = %q, want en", settings.Language)
	}
}

// Values that do not parse or are out of range are clamped, never fatal.
func TestGet_ClampsUnparsablePreferences(t *testing.T) {
	tests := []struct {
		name   string
		config string
		check  func(*Settings) bool
	}{
		{"non-numeric wpm", "wpm: fast\n", func(s *Settings) bool { return s.WPM == 1 }},
		{"non-numeric repetitions", "repetitions: lots\n", func(s *Settings) bool { return s.Repetitions == 1 }},
		{"non-numeric farnsworth", "farnsworth_wpm: slow\n", func(s *Settings) bool { return s.FarnsworthWPM == 0 }},
		{"frequency too high", "tone_frequency: 9000\n", func(s *Settings) bool { return s.ToneFrequency == 3000 }},
		{"frequency too low", "tone_frequency: 20\n", func(s *Settings) bool { return s.ToneFrequency == 100 }},
		{"non-numeric frequency", "tone_frequency: high\n", func(s *Settings) bool { return s.ToneFrequency == 700 }},
		{"volume amplified", "tone_volume: 6\n", func(s *Settings) bool { return s.ToneVolume == 0 }},
		{"volume too quiet", "tone_volume: -90\n", func(s *Settings) bool { return s.ToneVolume == -60 }},
		{"non-boolean announce", "announce: maybe\n", func(s *Settings) bool { return s.Announce }},
		{"numeric wpm as string", "wpm: \"25\"\n", func(s *Settings) bool { return s.WPM == 25 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			home := setupHome(t)
			writeUserConfig(t, home, tt.config)

			if err := Init(); err != nil {
				t.Fatalf("Init() error = %v", err)
			}
			settings, err := Get()
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !tt.check(settings) {
				t.Errorf("Get() = %+v", *settings)
			}
		})
	}
}

func TestGet_RejectsBadDeviceSettings(t *testing.T) {
	resetViper()
	home := setupHome(t)
	writeUserConfig(t, home, "sample_rate: 1000\n")

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if _, err := Get(); err == nil {
		t.Error("Get() should return error for invalid sample_rate")
	}
}

func TestEnsureConfigExists_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config")

	if err := ensureConfigExists(configPath); err != nil {
		t.Fatalf("ensureConfigExists() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(configPath, "config.yaml"))
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}
	if string(content) != DefaultConfig {
		t.Errorf("config content does not match DefaultConfig")
	}
}

func TestEnsureConfigExists_DoesNotOverwrite(t *testing.T) {
	tmpDir := t.TempDir()

	configFile := filepath.Join(tmpDir, "config.yaml")
	existingContent := "existing: true"
	if err := os.WriteFile(configFile, []byte(existingContent), 0644); err != nil {
		t.Fatalf("failed to write existing config: %v", err)
	}

	if err := ensureConfigExists(tmpDir); err != nil {
		t.Fatalf("ensureConfigExists() error = %v", err)
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}
	if string(content) != existingContent {
		t.Errorf("ensureConfigExists() overwrote existing config")
	}
}

func TestEnsureConfigExists_WriteError(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("skipping test when running as root")
	}

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "readonly")
	if err := os.MkdirAll(configPath, 0555); err != nil {
		t.Fatalf("failed to create readonly dir: %v", err)
	}
	defer func() {
		if err := os.Chmod(configPath, 0755); err != nil {
			t.Logf("failed to restore permissions: %v", err)
		}
	}()

	if err := ensureConfigExists(filepath.Join(configPath, "subdir")); err == nil {
		t.Error("ensureConfigExists() should return error for read-only directory")
	}
}

func TestDir(t *testing.T) {
	home := setupHome(t)
	if got, want := Dir(), filepath.Join(home, ".config", AppName); got != want {
		t.Errorf("Dir() = %q, want %q", got, want)
	}
}

func TestConstants(t *testing.T) {
	if AppName != "cwtrainer" {
		t.Errorf("AppName = %q, want %q", AppName, "cwtrainer")
	}
	if ConfigType != "yaml" {
		t.Errorf("ConfigType = %q, want %q", ConfigType, "yaml")
	}
}

func TestDefaultConfig_ContainsExpectedKeys(t *testing.T) {
	expectedKeys := []string{
		KeyWPM,
		KeyRepetitions,
		KeyFarnsworthWPM,
		KeyToneFrequency,
		KeyToneVolume,
		KeyAnnounce,
		KeyLanguage,
		"espeak_path",
		"speech_rate",
		"device_index",
		"sample_rate",
		"channels",
		"buffer_size",
		"debug",
	}

	for _, key := range expectedKeys {
		if !strings.Contains(DefaultConfig, key+":") {
			t.Errorf("DefaultConfig missing key: %s", key)
		}
	}
}

// Validation tests

func TestSettings_Validate_ValidSettings(t *testing.T) {
	if err := validSettings().Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil for valid settings", err)
	}
}

func TestSettings_Validate_SampleRate(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		wantErr    bool
	}{
		{"too low", 7999, true},
		{"minimum", 8000, false},
		{"typical 44100", 44100, false},
		{"typical 48000", 48000, false},
		{"maximum", 192000, false},
		{"too high", 192001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			s.SampleRate = tt.sampleRate
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettings_Validate_Channels(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		wantErr  bool
	}{
		{"zero", 0, true},
		{"mono", 1, false},
		{"stereo", 2, false},
		{"too many", 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			s.Channels = tt.channels
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettings_Validate_BufferSize(t *testing.T) {
	tests := []struct {
		name       string
		bufferSize int
		wantErr    bool
	}{
		{"too small", 32, true},
		{"minimum", 64, false},
		{"typical 512", 512, false},
		{"maximum", 8192, false},
		{"too large", 8193, true},
		{"not power of 2", 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			s.BufferSize = tt.bufferSize
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettings_Normalize_Tone(t *testing.T) {
	tests := []struct {
		name       string
		frequency  float64
		volume     float64
		wantFreq   float64
		wantVolume float64
	}{
		{"defaults", 700, 0, 700, 0},
		{"frequency too low", 99, 0, 100, 0},
		{"frequency maximum", 3000, 0, 3000, 0},
		{"frequency too high", 3001, 0, 3000, 0},
		{"volume minimum", 700, -60, 700, -60},
		{"volume too quiet", 700, -61, 700, -60},
		{"volume amplified", 700, 1, 700, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			s.ToneFrequency = tt.frequency
			s.ToneVolume = tt.volume
			s.Normalize()
			if s.ToneFrequency != tt.wantFreq || s.ToneVolume != tt.wantVolume {
				t.Errorf("Normalize() tone = %v Hz %v dB, want %v Hz %v dB",
					s.ToneFrequency, s.ToneVolume, tt.wantFreq, tt.wantVolume)
			}
			if err := s.Validate(); err != nil {
				t.Errorf("Validate() after Normalize() error = %v", err)
			}
		})
	}
}

func TestSettings_Validate_Language(t *testing.T) {
	tests := []struct {
		language string
		wantErr  bool
	}{
		{"en", false},
		{"fr", false},
		{"de", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			s := validSettings()
			s.Language = tt.language
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettings_Validate_NyquistFrequency(t *testing.T) {
	s := validSettings()
	s.SampleRate = 8000
	s.ToneFrequency = 3000
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() error = %v for 3000 Hz at 8000 Hz", err)
	}

	s.ToneFrequency = 700
	s.SampleRate = 1200
	if err := s.Validate(); err == nil || !strings.Contains(err.Error(), "Nyquist") {
		t.Errorf("Validate() error = %v, want Nyquist error", err)
	}
}

func TestSettings_Validate_MultipleErrors(t *testing.T) {
	s := &Settings{
		WPM:           0,    // invalid
		Repetitions:   0,    // invalid
		FarnsworthWPM: -1,   // invalid
		ToneFrequency: 0,    // invalid
		Language:      "xx", // invalid
		SpeechRate:    0,    // invalid
		SampleRate:    0,    // invalid
		Channels:      0,    // invalid
		BufferSize:    10,   // invalid
	}

	err := s.Validate()
	if err == nil {
		t.Fatal("Validate() should return error for multiple invalid fields")
	}

	errStr := err.Error()
	expectedSubstrings := []string{
		"wpm",
		"repetitions",
		"farnsworth_wpm",
		"tone_frequency",
		"language",
		"speech_rate",
		"sample_rate",
		"channels",
		"buffer_size",
	}

	for _, substr := range expectedSubstrings {
		if !strings.Contains(errStr, substr) {
			t.Errorf("Validate() error should mention %q, got: %v", substr, errStr)
		}
	}
}

func TestSettings_Normalize(t *testing.T) {
	s := &Settings{WPM: -3, Repetitions: 0, FarnsworthWPM: -5, Language: "FR-ca"}
	s.Normalize()

	if s.WPM != 1 || s.Repetitions != 1 || s.FarnsworthWPM != 0 {
		t.Errorf("Normalize() = wpm %d, repetitions %d, farnsworth %d, want 1, 1, 0",
			s.WPM, s.Repetitions, s.FarnsworthWPM)
	}
	if s.Language != "fr" {
		t.Errorf("Normalize() language = %q, want fr", s.Language)
	}
}

// validSettings returns a Settings struct with all valid values
func validSettings() *Settings {
	return &Settings{
		WPM:           20,
		Repetitions:   3,
		FarnsworthWPM: 0,
		ToneFrequency: 700,
		ToneVolume:    0,
		Announce:      true,
		Language:      "en",
		EspeakPath:    "espeak-ng",
		SpeechRate:    160,
		DeviceIndex:   -1,
		SampleRate:    48000,
		Channels:      1,
		BufferSize:    512,
		Debug:         false,
	}
}
