// Package config loads the TOML configuration for the narration service.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Server contains HTTP listener configuration.
type Server struct {
	Bind string `toml:"bind"`
}

// Database contains the analysis-cache database settings. An empty DSN
// disables the cache; the pipeline still works, repeated analyses just cost a
// re-run.
type Database struct {
	DSN string `toml:"dsn"`
}

// Speech contains configuration for the speech-synthesis vendor and the local
// audio cache.
type Speech struct {
	BaseURL         string `toml:"base_url"`
	APIKey          string `toml:"api_key"`
	VoiceID         string `toml:"voice_id"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	CacheDir        string `toml:"cache_dir"`
	CacheMaxEntries int    `toml:"cache_max_entries"`
}

// LLM contains settings for the optional long-form story generator. Story
// endpoints are disabled when the API key is empty.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Replay contains playback defaults applied to new replay sessions.
type Replay struct {
	BaseDelayMS    int    `toml:"base_delay_ms"`
	VoiceNarration bool   `toml:"voice_narration"`
	CinematicMode  bool   `toml:"cinematic_mode"`
	Style          string `toml:"style"`
	VoiceMode      string `toml:"voice_mode"`
}

// Logging contains logger settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root configuration document.
type Config struct {
	Server   Server   `toml:"server"`
	Database Database `toml:"database"`
	Speech   Speech   `toml:"speech"`
	LLM      LLM      `toml:"llm"`
	Replay   Replay   `toml:"replay"`
	Logging  Logging  `toml:"logging"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: Server{Bind: ":8080"},
		Speech: Speech{
			BaseURL:         "https://api.elevenlabs.io",
			VoiceID:         "21m00Tcm4TlvDq8ikWAM",
			TimeoutSeconds:  30,
			CacheDir:        defaultCacheDir(),
			CacheMaxEntries: 512,
		},
		LLM: LLM{
			BaseURL:        "https://openrouter.ai/api/v1/chat/completions",
			Model:          "deepseek/deepseek-chat",
			TimeoutSeconds: 60,
		},
		Replay: Replay{
			BaseDelayMS:    2000,
			VoiceNarration: true,
			CinematicMode:  true,
			Style:          "dramatic",
		},
		Logging: Logging{Level: "info", Format: "console"},
	}
}

// Load reads a config file over the defaults. A missing file is not an error;
// secrets may also arrive via CHESSWIRE_SPEECH_API_KEY and
// CHESSWIRE_LLM_API_KEY.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if v := os.Getenv("CHESSWIRE_SPEECH_API_KEY"); v != "" {
		cfg.Speech.APIKey = v
	}
	if v := os.Getenv("CHESSWIRE_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validStyles = map[string]struct{}{
	"dramatic": {}, "educational": {}, "poetic": {}, "analytical": {},
}

var validVoiceModes = map[string]struct{}{
	"calm": {}, "dramatic": {}, "excited": {}, "melancholy": {}, "intense": {},
}

// Validate checks ranges and enumerations, normalizing unrecognized replay
// options back to their defaults rather than failing.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Bind) == "" {
		return errors.New("server.bind must not be empty")
	}
	if c.Speech.TimeoutSeconds <= 0 {
		c.Speech.TimeoutSeconds = 30
	}
	if c.Speech.CacheMaxEntries <= 0 {
		c.Speech.CacheMaxEntries = 512
	}
	if c.Replay.BaseDelayMS <= 0 {
		c.Replay.BaseDelayMS = 2000
	}
	if _, ok := validStyles[c.Replay.Style]; !ok {
		c.Replay.Style = "dramatic"
	}
	if c.Replay.VoiceMode != "" {
		if _, ok := validVoiceModes[c.Replay.VoiceMode]; !ok {
			c.Replay.VoiceMode = ""
		}
	}
	return nil
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + "/chesswire/audio"
	}
	return "audio-cache"
}
