package logger

import (
	"bytes"
	"testing"

	"github.com/user/storyreel/pkg/ports"
)

func TestConsoleLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	log := NewConsoleWriter(ports.LevelInfo, &out, &errOut)

	log.Debug("hidden %d", 1)
	log.Info("shown %d", 2)
	log.Warn("careful %d", 3)
	log.Error("broken %d", 4)

	if got := out.String(); got != "shown 2\n" {
		t.Errorf("unexpected stdout %q", got)
	}
	if got := errOut.String(); got != "WARN careful 3\nERROR broken 4\n" {
		t.Errorf("unexpected stderr %q", got)
	}
}

func TestConsoleLogger_Quiet(t *testing.T) {
	var out, errOut bytes.Buffer
	log := NewConsoleWriter(ports.LevelQuiet, &out, &errOut)

	log.Error("nothing %d", 1)

	if out.Len() != 0 || errOut.Len() != 0 {
		t.Errorf("expected no output, got %q %q", out.String(), errOut.String())
	}
}

func TestConsoleLogger_NestedComponents(t *testing.T) {
	var out bytes.Buffer
	root := NewConsoleWriter(ports.LevelDebug, &out, &out)

	root.WithComponent("server").WithComponent("jobs").Info("line %d", 1)
	root.WithComponent("server").WithComponent("").Info("line %d", 2)
	root.Info("line %d", 3)

	want := "[server/jobs] line 1\n[server] line 2\nline 3\n"
	if got := out.String(); got != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}
