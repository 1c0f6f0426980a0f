package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	"github.com/zeusync/livescene/internal/injector"
)

func main() {
	os.Exit(run())
}

// run returns the exit code so deferred profile and logger flushes happen
// before the process exits.
func run() int {
	configPath := flag.String("config", "", "path to the YAML config; defaults are used when empty")
	profileMode := flag.String("profile", "", "write a cpu or mem profile to the working directory")
	flag.Parse()

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		fmt.Fprintf(os.Stderr, "unknown -profile %q, want cpu or mem\n", *profileMode)
		return 2
	}

	eng, cleanup, err := injector.InitializeEngine(injector.ConfigPath(*configPath))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing engine:", err)
		return 1
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error running engine:", err)
		return 1
	}
	return 0
}
