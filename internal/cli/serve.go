package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/restosync/internal/config"
	"github.com/roach88/restosync/internal/feed"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
	File string
	DSN  string
	Seed bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the restaurant feed over HTTP",
		Long: `Serve GET /restaurants/ and GET /restaurants/{id} from a JSON file or a
PostgreSQL database, for development and offline testing of sync.

With --dsn and --seed, the records of --file are upserted into the database
before serving.

Example:
  restosync serve --addr :1337 --file data/restaurants.json
  restosync serve --dsn postgres://localhost/restaurants --seed`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&opts.File, "file", "", "JSON feed file (overrides config)")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "PostgreSQL DSN (overrides config)")
	cmd.Flags().BoolVar(&opts.Seed, "seed", false, "upsert --file records into PostgreSQL before serving")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg, err := opts.setup(cmd)
	if err != nil {
		return configError(f, err)
	}
	if opts.Addr != "" {
		cfg.ListenAddr = opts.Addr
	}
	if opts.File != "" {
		cfg.FeedFile = opts.File
	}
	if opts.DSN != "" {
		cfg.FeedDSN = opts.DSN
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	src, closer, err := openFeed(ctx, cfg, opts.Seed)
	if err != nil {
		_ = f.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open feed", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	f.VerboseLog("Serving feed on %s", cfg.ListenAddr)
	if err := feed.Serve(ctx, cfg.ListenAddr, feed.NewHandler(src, cfg.AllowedOrigins)); err != nil {
		return f.Fail(ExitFailure, "feed server error", err)
	}
	return nil
}

// openFeed picks PostgreSQL when a DSN is configured and the JSON file
// otherwise.
func openFeed(ctx context.Context, cfg config.Config, seed bool) (feed.Source, io.Closer, error) {
	if cfg.FeedDSN == "" {
		if seed {
			return nil, nil, errors.New("--seed requires a PostgreSQL DSN")
		}
		src, err := feed.LoadFile(cfg.FeedFile)
		if err != nil {
			return nil, nil, err
		}
		return src, nil, nil
	}

	pg, err := feed.OpenPostgres(ctx, cfg.FeedDSN)
	if err != nil {
		return nil, nil, err
	}
	if seed {
		if err := seedPostgres(ctx, pg, cfg.FeedFile); err != nil {
			pg.Close()
			return nil, nil, err
		}
	}
	return pg, pg, nil
}

func seedPostgres(ctx context.Context, pg *feed.PostgresSource, path string) error {
	file, err := feed.LoadFile(path)
	if err != nil {
		return err
	}
	records, err := file.All(ctx)
	if err != nil {
		return err
	}
	for _, r := range records {
		if err := pg.Put(ctx, r); err != nil {
			return fmt.Errorf("seed restaurant %d: %w", r.ID, err)
		}
	}
	slog.Info("seeded feed database", "records", len(records), "file", path)
	return nil
}
