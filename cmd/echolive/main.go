// Command echolive runs the delay effect between the default audio input and
// output devices.
//
// Parameters are read from the optional state document at start-up and can be
// changed while running by typing commands on stdin:
//
//	delayTime 0.3
//	delayGain 0.6
//	show
//	reset
//
// On exit the current parameters are written back to the state document.
//
// Usage:
//
//	echolive [flags]
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-echo/dsp/effects"
	"github.com/cwbudde/algo-echo/internal/live"
)

var errQuit = errors.New("quit")

func main() {
	def := live.DefaultConfig()
	cfg := def
	flag.Func("rate", fmt.Sprintf("sample rate in Hz (default %d)", def.SampleRate), parseUint32(&cfg.SampleRate))
	channels := flag.Int("channels", def.Channels, "number of channels")
	block := flag.Int("block", def.BlockSize, "largest block handed to the engine")
	flag.Func("period", "device period in frames (0 = backend default)", parseUint32(&cfg.PeriodFrames))
	wrap := flag.String("wrap", "legacy", "wrap segment gain: legacy (0.8) or uniform (feedback gain)")
	statePath := flag.String("state", "", "state document to load on start and save on exit")
	verbose := flag.Bool("v", false, "log audio backend messages")
	flag.Parse()

	logger := log.New(os.Stderr, "echolive: ", log.LstdFlags)

	mode := effects.LegacyWrapDecay
	switch *wrap {
	case "legacy":
	case "uniform":
		mode = effects.UniformWrapGain
	default:
		logger.Fatalf("unknown wrap mode %q", *wrap)
	}

	params := effects.NewParams()
	if *statePath != "" {
		if err := loadState(*statePath, params); err != nil {
			logger.Fatal(err)
		}
	}

	engine := effects.NewDelayEngine(
		effects.WithChannels(*channels),
		effects.WithParams(params),
		effects.WithWrapDecay(mode),
	)

	cfg.Channels = *channels
	cfg.BlockSize = *block
	if *verbose {
		cfg.Logf = logger.Printf
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, engine, cfg, os.Stdin, os.Stdout)

	if *statePath != "" {
		if serr := saveState(*statePath, params); serr != nil {
			logger.Print(serr)
		}
	}
	if err != nil {
		logger.Fatal(err)
	}
}

// parseUint32 returns a flag.Func parser that rejects values outside uint32.
func parseUint32(dst *uint32) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return err
		}
		*dst = uint32(v)
		return nil
	}
}

func run(ctx context.Context, engine *effects.DelayEngine, cfg live.Config, in io.Reader, out io.Writer) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return live.Run(ctx, engine, cfg)
	})
	g.Go(func() error {
		return control(ctx, engine.Params(), in, out)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}

// control applies commands read from in until ctx is done, in reaches EOF,
// or a quit command arrives. Scanning happens on its own goroutine because a
// blocked read cannot be cancelled.
func control(ctx context.Context, params *effects.Params, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				// Keep running without a control surface.
				<-ctx.Done()
				return nil
			}
			if err := apply(params, line, out); err != nil {
				if errors.Is(err, errQuit) {
					return err
				}
				fmt.Fprintf(out, "error: %v\n", err)
			}
		}
	}
}

// apply executes a single control command.
func apply(params *effects.Params, line string, out io.Writer) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "quit", "exit":
		return errQuit
	case "show":
		for _, p := range params.All() {
			fmt.Fprintln(out, p)
		}
		return nil
	case "reset":
		params.Reset()
		return nil
	}

	if len(fields) != 2 {
		return fmt.Errorf("usage: <%s|%s> <value>", effects.ParamDelayTime, effects.ParamDelayGain)
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", fields[1], err)
	}
	stored, err := params.Set(fields[0], v)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s=%g\n", fields[0], stored)
	return nil
}

func loadState(path string, params *effects.Params) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	if err := params.ReadState(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func saveState(path string, params *effects.Params) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := params.WriteState(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
