package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/restosync/internal/facet"
	"github.com/roach88/restosync/internal/stream"
)

// FacetsResult is the output of the facets command.
type FacetsResult struct {
	Records       int      `json:"records"`
	Neighborhoods []string `json:"neighborhoods"`
	Cuisines      []string `json:"cuisines"`
}

func (r FacetsResult) String() string {
	return fmt.Sprintf("%d cached restaurants\nNeighborhoods: %s\nCuisines: %s",
		r.Records, strings.Join(r.Neighborhoods, ", "), strings.Join(r.Cuisines, ", "))
}

// NewFacetsCommand creates the facets command.
func NewFacetsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "List the neighborhoods and cuisines in the local cache",
		Long: `Derive the distinct neighborhood and cuisine values from the cached records,
in first-seen order. Works offline.

Example:
  restosync facets --db ./restaurants.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFacets(rootOpts, cmd)
		},
	}
}

func runFacets(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg, err := opts.setup(cmd)
	if err != nil {
		return configError(f, err)
	}
	st := openStore(cfg)
	if st == nil {
		_ = f.Error(ErrCodeConfig, "cache unavailable: "+cfg.DBPath, nil)
		return NewExitError(ExitCommandError, "cache unavailable")
	}
	defer st.Close()

	ctx := commandContext(cmd)
	count, err := st.Count(ctx)
	if err != nil {
		return f.Fail(ExitFailure, "read cache", err)
	}
	result := FacetsResult{Records: count}
	if result.Neighborhoods, err = stream.Collect(facet.DeriveFacet(st.All(ctx), facet.Neighborhood)); err != nil {
		return f.Fail(ExitFailure, "read cache", err)
	}
	if result.Cuisines, err = stream.Collect(facet.DeriveFacet(st.All(ctx), facet.Cuisine)); err != nil {
		return f.Fail(ExitFailure, "read cache", err)
	}
	result.Neighborhoods = nonNil(result.Neighborhoods)
	result.Cuisines = nonNil(result.Cuisines)
	return f.Success(result)
}
