// Package config handles GemKey settings: a TOML file with environment
// overrides, validation with clamped defaults, hot reload on file change,
// and debounced persistence for UI-driven updates.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Duration wraps time.Duration so the settings file reads and writes
// values in human-readable form ("8s", "250ms") rather than raw
// nanosecond integers.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	trimmed := strings.TrimSpace(string(text))
	if trimmed == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(trimmed)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", trimmed, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config stores runtime configuration for the keyboard backend.
type Config struct {
	Keyboard  KeyboardConfig  `toml:"keyboard"`
	Privacy   PrivacyConfig   `toml:"privacy"`
	Gesture   GestureConfig   `toml:"gesture"`
	Anthropic AnthropicConfig `toml:"anthropic"`
	Deepgram  DeepgramConfig  `toml:"deepgram"`
	Audio     AudioConfig     `toml:"audio"`
	History   HistoryConfig   `toml:"history"`
	Rules     RulesConfig     `toml:"rules"`
}

// KeyboardConfig covers the customization surface the UI exposes.
type KeyboardConfig struct {
	Scale          float64            `toml:"scale"`
	SplitLayout    bool               `toml:"split_layout"`
	OneHanded      string             `toml:"one_handed"`
	KeyScale       map[string]float64 `toml:"key_scale"`
	Theme          string             `toml:"theme"`
	HapticFeedback bool               `toml:"haptic_feedback"`
	Language       string             `toml:"language"`
	TraceTyping    bool               `toml:"trace_typing"`
}

// PrivacyConfig gates learning, context sharing, and history recording.
type PrivacyConfig struct {
	IncognitoMode     bool `toml:"incognito_mode"`
	EncryptKeystrokes bool `toml:"encrypt_keystrokes"`
}

// Private reports whether any privacy-preserving mode is active.
func (p PrivacyConfig) Private() bool {
	return p.IncognitoMode || p.EncryptKeystrokes
}

type GestureConfig struct {
	PoolCapacity  int           `toml:"pool_capacity"`
	ContextRunes  int           `toml:"context_runes"`
	DecodeTimeout Duration      `toml:"decode_timeout"`
}

type AnthropicConfig struct {
	APIKey     string `toml:"api_key"`
	APIBaseURL string `toml:"api_base_url"`
	Model      string `toml:"model"`
}

type DeepgramConfig struct {
	APIKey      string `toml:"api_key"`
	APIBaseURL  string `toml:"api_base_url"`
	Model       string `toml:"model"`
	SmartFormat bool   `toml:"smart_format"`
}

type AudioConfig struct {
	RecorderCommand string        `toml:"recorder_command"`
	InputFormat     string        `toml:"input_format"`
	InputDevice     string        `toml:"input_device"`
	SampleRate      int           `toml:"sample_rate"`
	Channels        int           `toml:"channels"`
	ChunkSize       int           `toml:"chunk_size"`
	StreamingGrace  Duration      `toml:"streaming_grace"`
}

type HistoryConfig struct {
	DBPath   string `toml:"db_path"`
	Capacity int    `toml:"capacity"`
}

type RulesConfig struct {
	Path           string `toml:"path"`
	IterationLimit int    `toml:"iteration_limit"`
}

// Default returns the built-in configuration rooted under the user's
// config and data directories.
func Default() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}
	configDir := filepath.Join(home, ".config", "gemkey")

	return Config{
		Keyboard: KeyboardConfig{
			Scale:          1.0,
			OneHanded:      "off",
			KeyScale:       map[string]float64{},
			Theme:          "light",
			HapticFeedback: true,
			Language:       "en",
			TraceTyping:    true,
		},
		Gesture: GestureConfig{
			PoolCapacity:  500,
			ContextRunes:  200,
			DecodeTimeout: Duration(8 * time.Second),
		},
		Anthropic: AnthropicConfig{
			APIBaseURL: "https://api.anthropic.com/v1",
			Model:      "claude-3-5-haiku-latest",
		},
		Deepgram: DeepgramConfig{
			APIBaseURL:  "https://api.deepgram.com/v1",
			Model:       "nova-2",
			SmartFormat: true,
		},
		Audio: AudioConfig{
			RecorderCommand: "ffmpeg",
			InputFormat:     "pulse",
			InputDevice:     "default",
			SampleRate:      16000,
			Channels:        1,
			ChunkSize:       4096,
			StreamingGrace:  Duration(time.Second),
		},
		History: HistoryConfig{
			DBPath:   filepath.Join(configDir, "gemkey.db"),
			Capacity: 50,
		},
		Rules: RulesConfig{
			Path:           filepath.Join(configDir, "replacements.rules"),
			IterationLimit: 30,
		},
	}, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("could not determine home directory")
	}
	return filepath.Join(home, ".config", "gemkey", "config.toml"), nil
}

// applyEnvOverrides layers environment variables over the file contents.
func (c *Config) applyEnvOverrides() {
	c.Anthropic.APIKey = firstNonEmpty(os.Getenv("GEMKEY_ANTHROPIC_API_KEY"), os.Getenv("ANTHROPIC_API_KEY"), c.Anthropic.APIKey)
	c.Anthropic.APIBaseURL = envOrDefault("GEMKEY_ANTHROPIC_API_BASE", c.Anthropic.APIBaseURL)
	c.Anthropic.Model = envOrDefault("GEMKEY_ANTHROPIC_MODEL", c.Anthropic.Model)

	c.Deepgram.APIKey = firstNonEmpty(os.Getenv("GEMKEY_DEEPGRAM_API_KEY"), os.Getenv("DEEPGRAM_API_KEY"), c.Deepgram.APIKey)
	c.Deepgram.APIBaseURL = envOrDefault("GEMKEY_DEEPGRAM_API_BASE", c.Deepgram.APIBaseURL)
	c.Deepgram.Model = envOrDefault("GEMKEY_DEEPGRAM_MODEL", c.Deepgram.Model)

	c.Audio.RecorderCommand = envOrDefault("GEMKEY_FFMPEG_COMMAND", c.Audio.RecorderCommand)
	c.Audio.InputFormat = envOrDefault("GEMKEY_AUDIO_INPUT_FORMAT", c.Audio.InputFormat)
	c.Audio.InputDevice = envOrDefault("GEMKEY_AUDIO_INPUT_DEVICE", c.Audio.InputDevice)
	c.Audio.SampleRate = envOrDefaultInt("GEMKEY_SAMPLE_RATE", c.Audio.SampleRate)
	c.Audio.Channels = envOrDefaultInt("GEMKEY_CHANNELS", c.Audio.Channels)

	c.History.DBPath = envOrDefault("GEMKEY_DB_PATH", c.History.DBPath)
	c.Rules.Path = envOrDefault("GEMKEY_RULES_FILE", c.Rules.Path)
	c.Keyboard.Language = envOrDefault("GEMKEY_LANGUAGE", c.Keyboard.Language)
}

// validate clamps out-of-range values rather than failing.
func (c *Config) validate() error {
	if c.Keyboard.Scale < 0.5 || c.Keyboard.Scale > 2.0 {
		c.Keyboard.Scale = 1.0
	}
	switch c.Keyboard.OneHanded {
	case "off", "left", "right":
	default:
		c.Keyboard.OneHanded = "off"
	}
	if c.Keyboard.KeyScale == nil {
		c.Keyboard.KeyScale = map[string]float64{}
	}
	for key, scale := range c.Keyboard.KeyScale {
		if scale < 0.5 || scale > 2.0 {
			c.Keyboard.KeyScale[key] = 1.0
		}
	}
	if c.Keyboard.Theme == "" {
		c.Keyboard.Theme = "light"
	}
	if c.Keyboard.Language == "" {
		c.Keyboard.Language = "en"
	}
	if c.Gesture.PoolCapacity <= 0 {
		c.Gesture.PoolCapacity = 500
	}
	if c.Gesture.ContextRunes <= 0 {
		c.Gesture.ContextRunes = 200
	}
	if c.Gesture.DecodeTimeout <= 0 {
		c.Gesture.DecodeTimeout = Duration(8 * time.Second)
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.Channels <= 0 {
		c.Audio.Channels = 1
	}
	if c.Audio.ChunkSize < 256 {
		c.Audio.ChunkSize = 4096
	}
	if c.Audio.StreamingGrace < 0 {
		c.Audio.StreamingGrace = Duration(time.Second)
	}
	if c.History.Capacity <= 0 {
		c.History.Capacity = 50
	}
	if c.Rules.IterationLimit <= 0 {
		c.Rules.IterationLimit = 30
	}
	if c.History.DBPath == "" {
		return fmt.Errorf("history db path cannot be empty")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
