package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/restosync/internal/controller"
	"github.com/roach88/restosync/internal/restaurant"
)

// ShowResult is the output of the show command.
type ShowResult struct {
	restaurant.Restaurant
	ReviewURL string `json:"review_url"`
	ImageURL  string `json:"image_url"`
}

func (r ShowResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (#%d)\n", r.Name, r.ID)
	fmt.Fprintf(&b, "  Neighborhood: %s\n", r.Neighborhood)
	fmt.Fprintf(&b, "  Cuisine:      %s\n", r.CuisineType)
	fmt.Fprintf(&b, "  Address:      %s\n", r.Address)
	fmt.Fprintf(&b, "  Location:     %.6f, %.6f\n", r.LatLng.Lat, r.LatLng.Lng)
	fmt.Fprintf(&b, "  Reviews:      %d\n", len(r.Reviews))
	fmt.Fprintf(&b, "  Page:         %s\n", r.ReviewURL)
	fmt.Fprintf(&b, "  Image:        %s", r.ImageURL)
	return b.String()
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one restaurant, from the feed or the cache",
		Long: `Fetch a single restaurant by ID. When the feed is unreachable the cached
record is shown instead.

Example:
  restosync show 4`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, cmd, args[0])
		},
	}
}

func runShow(opts *RootOptions, cmd *cobra.Command, arg string) error {
	f := opts.formatter(cmd)
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		_ = f.Error(ErrCodeUsage, fmt.Sprintf("invalid id %q", arg), nil)
		return WrapExitError(ExitCommandError, "invalid id", err)
	}
	cfg, err := opts.setup(cmd)
	if err != nil {
		return configError(f, err)
	}

	st := openStore(cfg)
	if st != nil {
		defer st.Close()
	}
	ctrl := controller.New(newClient(cfg), st, nil, nil)

	r, err := ctrl.Detail(commandContext(cmd), id)
	if err != nil {
		return f.Fail(ExitFailure, "lookup failed", err)
	}
	return f.Success(ShowResult{
		Restaurant: r,
		ReviewURL:  restaurant.ReviewURL(r),
		ImageURL:   restaurant.ImageURL(r),
	})
}
