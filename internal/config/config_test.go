package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Server.Bind != ":8080" {
		t.Errorf("unexpected bind: %s", cfg.Server.Bind)
	}
	if cfg.Speech.CacheMaxEntries != 512 {
		t.Errorf("unexpected cache bound: %d", cfg.Speech.CacheMaxEntries)
	}
	if cfg.Replay.BaseDelayMS != 2000 {
		t.Errorf("unexpected base delay: %d", cfg.Replay.BaseDelayMS)
	}
	if cfg.Replay.Style != "dramatic" {
		t.Errorf("unexpected style: %s", cfg.Replay.Style)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if cfg.Server.Bind != ":8080" {
		t.Errorf("expected defaults, got bind %s", cfg.Server.Bind)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chesswire.toml")
	doc := `
[server]
bind = ":9090"

[replay]
base_delay_ms = 500
voice_narration = false
style = "poetic"
voice_mode = "intense"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Bind != ":9090" {
		t.Errorf("bind not overridden: %s", cfg.Server.Bind)
	}
	if cfg.Replay.BaseDelayMS != 500 {
		t.Errorf("base delay not overridden: %d", cfg.Replay.BaseDelayMS)
	}
	if cfg.Replay.VoiceNarration {
		t.Errorf("voice narration not overridden")
	}
	if cfg.Replay.Style != "poetic" || cfg.Replay.VoiceMode != "intense" {
		t.Errorf("replay voice settings not overridden: %+v", cfg.Replay)
	}
	// untouched sections keep their defaults
	if cfg.Speech.TimeoutSeconds != 30 {
		t.Errorf("speech defaults lost: %+v", cfg.Speech)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[server\nbind=:"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestValidateNormalizesReplayOptions(t *testing.T) {
	cfg := Default()
	cfg.Replay.Style = "operatic"
	cfg.Replay.VoiceMode = "shouty"
	cfg.Replay.BaseDelayMS = -1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Replay.Style != "dramatic" {
		t.Errorf("unknown style must fall back, got %s", cfg.Replay.Style)
	}
	if cfg.Replay.VoiceMode != "" {
		t.Errorf("unknown voice mode must fall back to auto, got %s", cfg.Replay.VoiceMode)
	}
	if cfg.Replay.BaseDelayMS != 2000 {
		t.Errorf("non-positive delay must reset, got %d", cfg.Replay.BaseDelayMS)
	}
}

func TestValidateRejectsEmptyBind(t *testing.T) {
	cfg := Default()
	cfg.Server.Bind = "   "
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for empty bind")
	}
}

func TestEnvSecrets(t *testing.T) {
	t.Setenv("CHESSWIRE_SPEECH_API_KEY", "speech-secret")
	t.Setenv("CHESSWIRE_LLM_API_KEY", "llm-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Speech.APIKey != "speech-secret" {
		t.Errorf("speech key not taken from environment")
	}
	if cfg.LLM.APIKey != "llm-secret" {
		t.Errorf("llm key not taken from environment")
	}
}
