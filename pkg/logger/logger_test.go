package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestWriterEmitsStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.DebugLevel).With(String("component", "test"))

	l.Info("quote served",
		String("symbol", "AAPL"),
		Int("points", 21),
		Float64("price", 187.5),
		Bool("fallback", false),
		Error(errors.New("boom")),
	)

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}
	if got["message"] != "quote served" || got["level"] != "info" {
		t.Fatalf("unexpected envelope: %v", got)
	}
	if got["component"] != "test" || got["symbol"] != "AAPL" {
		t.Fatalf("missing string fields: %v", got)
	}
	if got["points"] != float64(21) || got["price"] != 187.5 || got["fallback"] != false {
		t.Fatalf("missing typed fields: %v", got)
	}
	if got["error"] != "boom" {
		t.Fatalf("expected error field, got %v", got["error"])
	}
}

func TestWriterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.WarnLevel)
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %s", buf.String())
	}
	l.Warn("shown")
	if buf.Len() == 0 {
		t.Fatalf("expected warn to be written")
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Fatalf("expected invalid level error")
	}
}

func TestNewFileOutputCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "quotelens.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Info("hello")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected log file: %v", err)
	}
}

func TestNop(t *testing.T) {
	NewNop().Error("discarded", Duration("took", 0), Strings("symbols", []string{"A", "B"}))
}
