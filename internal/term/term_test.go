package term

import (
	"bytes"
	"testing"
)

func TestPrintf(t *testing.T) {
	defer Reset()
	var out bytes.Buffer
	SetOutput(&out)

	Printf("tool %s registered\n", "run_batch")

	if got, want := out.String(), "tool run_batch registered\n"; got != want {
		t.Errorf("Printf output = %q, want %q", got, want)
	}
}

func TestSilentSuppressesStdout(t *testing.T) {
	defer Reset()
	var out, errOut bytes.Buffer
	SetOutput(&out)
	SetErrOutput(&errOut)
	SetSilent(true)

	Println("hidden")
	Warn("still visible")

	if out.Len() != 0 {
		t.Errorf("stdout should be suppressed in silent mode, got %q", out.String())
	}
	if got, want := errOut.String(), "Warning: still visible\n"; got != want {
		t.Errorf("Warn output = %q, want %q", got, want)
	}
}

func TestErrorPrefix(t *testing.T) {
	defer Reset()
	var errOut bytes.Buffer
	SetErrOutput(&errOut)

	Error("config invalid: %s", "listen")

	if got, want := errOut.String(), "Error: config invalid: listen\n"; got != want {
		t.Errorf("Error output = %q, want %q", got, want)
	}
}
