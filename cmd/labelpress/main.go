package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eringen/labelpress"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := serve(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("labelpress %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func serve() error {
	cfg, err := labelpress.LoadConfig()
	if err != nil {
		return err
	}
	app := labelpress.New(cfg, labelpress.ViewFuncs{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Init(ctx); err != nil {
		return errors.Join(err, app.Close())
	}

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return errors.Join(err, app.Close())
	case <-ctx.Done():
	}

	app.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

func printUsage() {
	fmt.Println(`labelpress - a label-driven blog backend built with Go, Echo, and templ

Usage:
  labelpress <command>

Commands:
  serve         Start the HTTP server (configured through environment variables)
  version       Print the labelpress version
  help          Show this help message

Environment:
  SITE_NAME, SITE_URL, SITE_DESCRIPTION, ADDR, DATABASE_PATH, PER_PAGE_NUM,
  STORAGE_TIMEOUT, AUTHOR_EMAIL, AUTHOR_NAME, LOG_LEVEL, ENV, WRITE_LIMIT,
  AUTHOR_CACHE_TTL`)
}
