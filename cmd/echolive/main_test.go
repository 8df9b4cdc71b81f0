package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/algo-echo/dsp/effects"
)

func TestApplyCommands(t *testing.T) {
	params := effects.NewParams()
	var out bytes.Buffer

	if err := apply(params, "delayTime 0.3", &out); err != nil {
		t.Fatal(err)
	}
	if err := apply(params, "  delayGain   4 ", &out); err != nil {
		t.Fatal(err)
	}
	if got := params.Snapshot(); got.DelayTime != 0.3 || got.DelayGain != 1 {
		t.Fatalf("Snapshot() = %+v", got)
	}
	if got := out.String(); got != "delayTime=0.3\ndelayGain=1\n" {
		t.Fatalf("output = %q", got)
	}

	out.Reset()
	if err := apply(params, "show", &out); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "delayTime=0.3\ndelayGain=1\n" {
		t.Fatalf("show output = %q", got)
	}

	if err := apply(params, "reset", &out); err != nil {
		t.Fatal(err)
	}
	if params.Snapshot() != effects.DefaultState() {
		t.Fatal("reset did not restore defaults")
	}
	if err := apply(params, "", &out); err != nil {
		t.Fatalf("blank line: %v", err)
	}
}

func TestApplyErrors(t *testing.T) {
	params := effects.NewParams()
	var out bytes.Buffer
	for _, line := range []string{"delayTime", "delayTime x", "mix 0.5", "delayGain 0.1 0.2"} {
		if err := apply(params, line, &out); err == nil {
			t.Fatalf("%q: expected error", line)
		}
	}
	if err := apply(params, "quit", &out); !errors.Is(err, errQuit) {
		t.Fatalf("quit: %v", err)
	}
	if params.Snapshot() != effects.DefaultState() {
		t.Fatal("failed commands changed parameters")
	}
}

func TestControlStopsOnQuit(t *testing.T) {
	params := effects.NewParams()
	var out bytes.Buffer
	in := strings.NewReader("delayGain 0.25\nbogus\nquit\ndelayGain 0.9\n")

	err := control(context.Background(), params, in, &out)
	if !errors.Is(err, errQuit) {
		t.Fatalf("control() = %v, want errQuit", err)
	}
	if params.Gain.Value() != 0.25 {
		t.Fatalf("gain = %v, want 0.25", params.Gain.Value())
	}
	if !strings.Contains(out.String(), "error:") {
		t.Fatalf("bogus command not reported: %q", out.String())
	}
}

func TestControlStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- control(ctx, effects.NewParams(), strings.NewReader(""), &bytes.Buffer{})
	}()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("control() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("control did not return after cancel")
	}
}

func TestStateFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "echo.xml")

	params := effects.NewParams()
	if err := loadState(path, params); err != nil {
		t.Fatalf("missing file should load defaults: %v", err)
	}

	params.Apply(effects.State{DelayTime: 0.75, DelayGain: 0.3})
	if err := saveState(path, params); err != nil {
		t.Fatal(err)
	}

	loaded := effects.NewParams()
	if err := loadState(path, loaded); err != nil {
		t.Fatal(err)
	}
	if loaded.Snapshot() != params.Snapshot() {
		t.Fatalf("loaded %+v, want %+v", loaded.Snapshot(), params.Snapshot())
	}

	if err := os.WriteFile(path, []byte("<Other/>"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := loadState(path, loaded); !errors.Is(err, effects.ErrStateTag) {
		t.Fatalf("loadState() = %v, want ErrStateTag", err)
	}
}

func TestParseUint32(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"48000", 48000, false},
		{"0", 0, false},
		{"4294967295", 4294967295, false},
		{"4294967296", 7, true},
		{"-1", 7, true},
		{"fast", 7, true},
	}
	for _, tt := range tests {
		got := uint32(7)
		err := parseUint32(&got)(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseUint32(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("parseUint32(%q) stored %d, want %d", tt.in, got, tt.want)
		}
	}
}
