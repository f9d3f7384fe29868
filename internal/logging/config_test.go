package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		raw   string
		level zerolog.Level
		ok    bool
	}{
		{"", zerolog.InfoLevel, false},
		{"trace", zerolog.TraceLevel, true},
		{"DEBUG", zerolog.DebugLevel, true},
		{"info", zerolog.InfoLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"error", zerolog.ErrorLevel, true},
		{"off", zerolog.Disabled, true},
		{"bogus", zerolog.InfoLevel, false},
	}
	for _, tc := range cases {
		level, ok := parseLevel(tc.raw)
		if level != tc.level || ok != tc.ok {
			t.Fatalf("parseLevel(%q) = (%v, %v), want (%v, %v)", tc.raw, level, ok, tc.level, tc.ok)
		}
	}
}

func TestParseBool(t *testing.T) {
	cases := []struct {
		raw   string
		value bool
		ok    bool
	}{
		{"", false, false},
		{"true", true, true},
		{"0", false, true},
		{"maybe", false, false},
	}
	for _, tc := range cases {
		v, ok := parseBool(tc.raw)
		if v != tc.value || ok != tc.ok {
			t.Fatalf("parseBool(%q) = (%v, %v), want (%v, %v)", tc.raw, v, ok, tc.value, tc.ok)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: zerolog.WarnLevel, NoColor: true}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn line missing: %q", out)
	}
}
