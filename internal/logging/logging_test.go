package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewJSONFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Format: "json", Output: &buf})
	if log.GetLevel() != logrus.WarnLevel {
		t.Fatalf("expected warn level, got %v", log.GetLevel())
	}
	log.Info("dropped")
	log.WithField("component", "gen").Warn("shortfall")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected exactly one json line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "shortfall" || entry["component"] != "gen" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewFallsBackToEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "")
	log := New(Options{Output: &bytes.Buffer{}})
	if log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug from env, got %v", log.GetLevel())
	}
	if _, ok := log.Formatter.(*logrus.TextFormatter); !ok {
		t.Fatalf("expected text formatter by default")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	log := New(Options{Level: "loud", Output: &bytes.Buffer{}})
	if log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info, got %v", log.GetLevel())
	}
}
