// Command nab fetches one or more URLs and prints their converted markdown
// to stdout. It is a thin demonstration of the nab library's wiring, not a
// full CLI: argument parsing and output formatting are deliberately minimal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MikkoParkkola/nab"
)

func main() {
	enablePDF := flag.Bool("pdf", true, "convert PDF responses to markdown")
	concurrency := flag.Int("concurrency", 5, "max concurrent fetches")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, error")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, flag.Args(), *enablePDF, *concurrency); err != nil {
		logger.Error("nab: fatal", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func run(ctx context.Context, logger *slog.Logger, urls []string, enablePDF bool, concurrency int) error {
	if len(urls) == 0 {
		return fmt.Errorf("usage: nab [flags] <url> [url...]")
	}

	n, err := nab.New(nab.Config{
		EnablePDF:        enablePDF,
		BatchConcurrency: concurrency,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("initializing nab: %w", err)
	}
	defer n.Close()

	if len(urls) == 1 {
		doc, err := n.Fetch(ctx, urls[0])
		if err != nil {
			return err
		}
		fmt.Println(doc.Markdown)
		return nil
	}

	items, err := n.FetchBatch(ctx, urls)
	if err != nil {
		return fmt.Errorf("batch fetch: %w", err)
	}
	for _, item := range items {
		fmt.Printf("## %s\n\n", item.URL)
		if item.Err != nil {
			fmt.Printf("*fetch failed: %v*\n\n", item.Err)
			continue
		}
		fmt.Println(item.Value.Markdown)
		fmt.Println()
	}
	return nil
}
