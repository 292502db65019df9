// Command alchemist runs the intake pipeline once over the files named
// on the command line, without watching a drop directory.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/content-alchemist/internal/bootstrap"
	"github.com/kirillkom/content-alchemist/internal/config"
	"github.com/kirillkom/content-alchemist/internal/observability/logging"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s FILE [FILE...]\n", os.Args[0])
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("alchemist", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewPipeline(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	exitCode := 0
	for _, path := range os.Args[1:] {
		job, err := app.ProcessUC.ProcessFile(ctx, path)
		if err != nil {
			logger.Error("pipeline_failed", "path", path, "error", err)
			exitCode = 1
			continue
		}
		fmt.Printf("%s -> %s\n", path, job.FinalPath)
	}
	os.Exit(exitCode)
}
