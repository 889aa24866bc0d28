package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Debug("hello")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("expected json output, got %q", buf.String())
	}
}

func TestNewLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info must be filtered at warn level: %q", buf.String())
	}
	logger.Warn("loud")
	if buf.Len() == 0 {
		t.Errorf("warn must pass at warn level")
	}
}

func TestNewRejectsUnknownValues(t *testing.T) {
	if _, err := New(Options{Level: "blaring"}); err == nil {
		t.Errorf("expected an error for an unknown level")
	}
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Errorf("expected an error for an unknown format")
	}
}

func TestWithComponentNilLogger(t *testing.T) {
	logger := WithComponent(nil, "test")
	if logger == nil {
		t.Fatalf("expected a usable nop logger")
	}
	logger.Info("must not panic")
}
