package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SyncResult is the output of the sync command.
type SyncResult struct {
	Records       int      `json:"records"`
	Cached        bool     `json:"cached"`
	Persisted     int64    `json:"persisted"`
	WriteErrors   int64    `json:"write_errors"`
	Neighborhoods []string `json:"neighborhoods"`
	Cuisines      []string `json:"cuisines"`
}

func (r SyncResult) String() string {
	source := "remote feed"
	if r.Cached {
		source = "cache (remote unavailable)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Loaded %d restaurants from %s\n", r.Records, source)
	fmt.Fprintf(&b, "Cached %d records", r.Persisted)
	if r.WriteErrors > 0 {
		fmt.Fprintf(&b, " (%d write errors)", r.WriteErrors)
	}
	fmt.Fprintf(&b, "\nNeighborhoods: %s\n", strings.Join(r.Neighborhoods, ", "))
	fmt.Fprintf(&b, "Cuisines: %s", strings.Join(r.Cuisines, ", "))
	return b.String()
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch every restaurant and refresh the local cache",
		Long: `Fetch the full record set from the remote feed, write every record to the
local cache and derive the neighborhood and cuisine lists.

When the feed is unreachable and offline fallback is enabled, the cached
records are loaded instead.

Example:
  restosync sync --endpoint http://localhost:1337 --db ./restaurants.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(rootOpts, cmd)
		},
	}
}

func runSync(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg, err := opts.setup(cmd)
	if err != nil {
		return configError(f, err)
	}
	ctx := commandContext(cmd)

	f.VerboseLog("Syncing from %s into %s", cfg.Endpoint, cfg.DBPath)
	s := startSession(ctx, cfg)
	s.ctrl.Load()
	o, err := s.await(ctx)
	s.close()
	if err != nil {
		return f.Fail(ExitFailure, "sync interrupted", err)
	}
	if o.Err != nil {
		return f.Fail(ExitFailure, "sync failed", o.Err)
	}

	st := s.ctrl.State()
	stats := s.ctrl.Stats()
	return f.SuccessWithGeneration(SyncResult{
		Records:       o.Records,
		Cached:        o.Cached,
		Persisted:     stats.Persisted,
		WriteErrors:   stats.WriteErrors,
		Neighborhoods: nonNil(st.Neighborhoods),
		Cuisines:      nonNil(st.Cuisines),
	}, o.Generation)
}

func configError(f *OutputFormatter, err error) error {
	_ = f.Error(ErrCodeConfig, err.Error(), nil)
	return WrapExitError(ExitCommandError, "invalid configuration", err)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
