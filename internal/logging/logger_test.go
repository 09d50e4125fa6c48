package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"Warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if LevelWarn.String() != "WARN" || Level(42).String() != "UNKNOWN" {
		t.Error("unexpected level names")
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelInfo, Writer: &buf, Service: "jamsim"})
	log.Debug("hidden")
	log.Info("run started", "n", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level: %q", out)
	}
	for _, want := range []string{"run started", "n=4", "service=jamsim"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelDebug, JSON: true, Writer: &buf})
	log.Debug("step", "energy", 1.5)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["msg"] != "step" || rec["energy"] != 1.5 {
		t.Errorf("record = %v", rec)
	}
}

func TestQuiet(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelDebug, Writer: &buf, Quiet: true})
	log.Error("dropped")
	if buf.Len() != 0 {
		t.Errorf("quiet logger wrote %q", buf.String())
	}
}
