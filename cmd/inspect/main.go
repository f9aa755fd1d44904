package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/satlens/internal/inspect"
)

const defaultTimeout = 10 * time.Second

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		metric  = flag.String("metric", "", "Ranking metric (default: the service's ranking metric)")
		top     = flag.Int("top", -1, "Number of top entries (default: the service's top_n)")
		bottom  = flag.Int("bottom", -1, "Number of bottom entries (default: the service's bottom_n)")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		inspect.ShowHelp()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := inspect.Config{
		BaseURL: *baseURL,
		Metric:  *metric,
		Top:     *top,
		Bottom:  *bottom,
		Timeout: *timeout,
	}
	if err := inspect.Run(ctx, cfg, os.Stdout); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
