package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/restosync/internal/store"
)

// PurgeResult is the output of the purge command.
type PurgeResult struct {
	Path string `json:"path"`
}

func (r PurgeResult) String() string {
	return fmt.Sprintf("Removed cache %s", r.Path)
}

// NewPurgeCommand creates the purge command.
func NewPurgeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "purge",
		Short:         "Delete the local cache",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			cfg, err := rootOpts.setup(cmd)
			if err != nil {
				return configError(f, err)
			}
			if err := store.Remove(cfg.DBPath); err != nil {
				return f.Fail(ExitFailure, "purge failed", err)
			}
			return f.Success(PurgeResult{Path: cfg.DBPath})
		},
	}
}
