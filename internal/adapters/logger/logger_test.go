package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nishantjr/kninja/internal/adapters/logger"

	"go.trai.ch/zerr"
)

func TestLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	lg := logger.New()
	lg.(*logger.Logger).SetOutput(&buf)

	lg.Info("manifest written")

	out := buf.String()
	if !strings.Contains(out, "manifest written") {
		t.Errorf("expected output to contain the message, got: %s", out)
	}
	if !strings.Contains(out, "INFO") {
		t.Errorf("expected output to contain INFO, got: %s", out)
	}
}

func TestLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	lg := logger.New()
	lg.(*logger.Logger).SetOutput(&buf)

	lg.Error(zerr.New("no derivable output"))

	out := buf.String()
	if !strings.Contains(out, "no derivable output") {
		t.Errorf("expected output to contain the error, got: %s", out)
	}
	if !strings.Contains(out, "ERROR") {
		t.Errorf("expected output to contain ERROR, got: %s", out)
	}
}
