package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/fabiogif/moday-board/internal/api"
	"github.com/fabiogif/moday-board/internal/config"
	"github.com/fabiogif/moday-board/internal/engine"
	"github.com/fabiogif/moday-board/internal/notify"
	"github.com/fabiogif/moday-board/internal/realtime"
	watchpkg "github.com/fabiogif/moday-board/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the board engine and render the live board",
	Long: `Run the synchronization engine against the configured backend and
render the order board after every change.

Drag gestures are read from stdin, one per line:

  order-<identify> column-<status>   move an order to a column
  order-<identify> order-<identify>  move an order to another card's column
  reload                             force a full resync
  quit                               exit

Examples:
  # Watch the board interactively
  modayboard watch

  # Replay a scripted session
  modayboard watch < gestures.txt`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return notify.CommandError(
			"invalid configuration",
			fmt.Sprintf("Error: %v", err),
			[]string{"Check moday.yml, or set MODAY_SERVER_URL / MODAY_REDIS_ADDR / MODAY_TENANT"},
		)
	}

	client, err := api.NewClient(cfg.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	feed, err := realtime.NewFeed(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Tenant)
	if err != nil {
		return fmt.Errorf("failed to create realtime feed: %w", err)
	}
	defer feed.Close()

	if err := feed.Ping(ctx); err != nil {
		return notify.CommandError(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis at %s", cfg.Redis.Addr),
			[]string{
				"Check that Redis is running",
				"Override the address:\n  MODAY_REDIS_ADDR=host:port modayboard watch",
			},
		)
	}

	// The renderer and the engine's event loop both touch stdout, so
	// redraws are serialized.
	renderer := watchpkg.NewRenderer(os.Stdout)
	var renderMu sync.Mutex
	var eng *engine.Engine
	redraw := func() {
		renderMu.Lock()
		defer renderMu.Unlock()
		renderer.Render(eng.Columns(), eng.InFlight())
	}

	eng = engine.New(client, feed, cfg.Tenant, notify.NewConsole(), redraw)

	runErr := make(chan error, 1)
	go func() {
		runErr <- eng.Run(ctx)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case err := <-runErr:
			return err
		case <-ctx.Done():
			return nil
		default:
		}

		fields := strings.Fields(scanner.Text())
		switch {
		case len(fields) == 0:
			continue
		case len(fields) == 1 && fields[0] == "quit":
			stop()
			return nil
		case len(fields) == 1 && fields[0] == "reload":
			// Reload failures are already reported as notifications
			_ = eng.Reload(ctx)
		case len(fields) == 2:
			// Each gesture commits in its own goroutine; the coordinator
			// rejects overlapping updates on the same order.
			go func(source, target string) {
				_ = eng.HandleGesture(ctx, source, target)
			}(fields[0], fields[1])
		default:
			fmt.Fprintf(os.Stderr, "unrecognized gesture: %s\n", scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read gestures: %w", err)
	}

	// Stdin closed (scripted session finished): keep watching until
	// interrupted so realtime events continue to render.
	select {
	case err := <-runErr:
		return err
	case <-ctx.Done():
		return nil
	}
}
