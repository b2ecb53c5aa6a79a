package main

import (
	"log/slog"
	"os"

	"stereocensus/match"
	"stereocensus/parallel"
	"stereocensus/vectors"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

type cli struct {
	Config   kong.ConfigFlag `help:"JSON file with default flag values"`
	Workers  int             `help:"Number of parallel workers, 0 uses all CPUs" default:"0" env:"STEREO_WORKERS"`
	LogLevel slog.Level      `help:"Log level (debug, info, warn, error)" default:"info" env:"STEREO_LOG_LEVEL"`

	Match  match.CLICmd   `cmd:"" help:"Compute Census and SSD disparity maps and export Census test vectors"`
	Verify vectors.CLICmd `cmd:"" help:"Compare Census test vectors with a hardware simulation dump"`
}

func main() {
	// .env is optional, it only feeds the env defaults of the flags below.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env", "error", err)
	}

	var c cli
	kctx := kong.Parse(&c,
		kong.Name("stereocensus"),
		kong.Description("Census transform stereo matching with bit-exact hardware test vectors."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, "~/.stereocensus.json", ".stereocensus.json"),
	)

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel})))
	slog.Info("running", "command", kctx.Command(), "workers", c.Workers)

	pool := parallel.Start(c.Workers)
	defer pool.Cancel()

	if err := kctx.Run(pool); err != nil {
		slog.Error("failed", "command", kctx.Command(), "error", err)
		pool.Cancel()
		os.Exit(1)
	}
}
