package main

import (
	"regexp"
	"testing"
)

func TestBuildVersion(t *testing.T) {
	commit, date := buildVersion()
	if commit == "" {
		t.Errorf("expected a commit stamp or the dev fallback")
	}
	if !regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`).MatchString(date) {
		t.Errorf("expected a yyyy-mm-dd date, got %q", date)
	}
}
