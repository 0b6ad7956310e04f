package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/zan8in/gologger"
	"github.com/zan8in/squidscan/internal/runner"
	"github.com/zan8in/squidscan/pkg/config"
)

func main() {
	options := config.ParseOptions()

	r, err := runner.New(options)
	if err != nil {
		gologger.Error().Msgf("%s", err.Error())
		gologger.Print().Msgf("%s", runner.ShowUsage())
		os.Exit(runner.ExitCode(nil, err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	summary, err := r.Run(ctx)
	stop()
	if err != nil {
		gologger.Error().Msgf("%s", err.Error())
	}
	os.Exit(runner.ExitCode(summary, err))
}
