package commands

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/fabiogif/moday-board/internal/config"
	"github.com/fabiogif/moday-board/internal/demoserver"
	"github.com/fabiogif/moday-board/internal/notify"
	"github.com/fabiogif/moday-board/internal/realtime"
)

var (
	serveAddr   string
	serveDBPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reference order backend",
	Long: `Run a self-contained order backend backed by SQLite.

Every write publishes the matching realtime event on the configured Redis
channel, so a modayboard watch session observes changes made through this
server. When Redis is unreachable the server still runs; writes are simply
not announced.

Examples:
  # Serve on the default address with a local database
  modayboard serve

  # Custom address and database
  modayboard serve --addr :9090 --db /tmp/orders.db`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "moday.db", "SQLite database path")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return notify.CommandError(
			"invalid configuration",
			fmt.Sprintf("Error: %v", err),
			[]string{"Check moday.yml, or set MODAY_REDIS_ADDR / MODAY_TENANT"},
		)
	}

	db, err := demoserver.OpenDB(serveDBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
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

	console := notify.NewConsole()
	if err := feed.Ping(context.Background()); err != nil {
		console.Info("Redis unreachable at %s, serving without realtime events", cfg.Redis.Addr)
		feed = nil
	} else {
		console.Info("Publishing realtime events for tenant %q via %s", cfg.Tenant, cfg.Redis.Addr)
	}

	console.Info("Listening on %s (database %s)", serveAddr, serveDBPath)
	return demoserver.New(db, feed).Run(serveAddr)
}
