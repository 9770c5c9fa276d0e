package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/restosync/internal/facet"
	"github.com/roach88/restosync/internal/restaurant"
	"github.com/roach88/restosync/internal/view"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Cuisine      string
	Neighborhood string
	Scrolls      int
	HTML         bool
}

// ListItem is one revealed restaurant.
type ListItem struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Neighborhood string `json:"neighborhood"`
	Cuisine      string `json:"cuisine_type"`
	URL          string `json:"url"`
	ImageURL     string `json:"image_url"`
}

// ListResult is the output of the list command.
type ListResult struct {
	Cuisine      string     `json:"cuisine"`
	Neighborhood string     `json:"neighborhood"`
	Matched      int        `json:"matched"`
	Cached       bool       `json:"cached"`
	Revealed     []ListItem `json:"revealed"`
	Pending      int        `json:"pending"`
	HTML         []string   `json:"html,omitempty"`
}

func (r ListResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Showing %d of %d restaurants (cuisine=%s, neighborhood=%s)", len(r.Revealed), r.Matched, r.Cuisine, r.Neighborhood)
	if r.Cached {
		b.WriteString(" from cache")
	}
	for _, it := range r.Revealed {
		fmt.Fprintf(&b, "\n  [%d] %s (%s, %s)", it.ID, it.Name, it.Neighborhood, it.Cuisine)
	}
	for _, h := range r.HTML {
		b.WriteString("\n")
		b.WriteString(h)
	}
	return b.String()
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List restaurants matching a cuisine and neighborhood",
		Long: `Fetch restaurants matching the selected facets and show the ones a browser
would have revealed: the first viewport, plus one batch per --scrolls.

Use "all" for either facet to disable that filter.

Example:
  restosync list --cuisine Pizza
  restosync list --neighborhood Manhattan --scrolls 2 --html`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Cuisine, "cuisine", facet.All, "cuisine to show")
	cmd.Flags().StringVar(&opts.Neighborhood, "neighborhood", facet.All, "neighborhood to show")
	cmd.Flags().IntVar(&opts.Scrolls, "scrolls", 0, "number of scroll-to-bottom events to simulate")
	cmd.Flags().BoolVar(&opts.HTML, "html", false, "include the rendered list markup")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	if opts.Scrolls < 0 {
		_ = f.Error(ErrCodeUsage, "--scrolls must not be negative", nil)
		return NewExitError(ExitCommandError, "--scrolls must not be negative")
	}
	cfg, err := opts.setup(cmd)
	if err != nil {
		return configError(f, err)
	}
	ctx := commandContext(cmd)

	s := startSession(ctx, cfg)
	s.ctrl.Select(opts.Cuisine, opts.Neighborhood)
	o, err := s.await(ctx)
	if err == nil && o.Err == nil {
		// The list container is exactly one viewport tall, so every
		// scroll lands on the bottom edge.
		vh := cfg.Viewport.Height
		for i := 0; i < opts.Scrolls; i++ {
			s.ctrl.Scroll(view.Scroll{Y: 0, ViewportHeight: vh, DocumentHeight: vh})
		}
	}
	s.close()
	if err != nil {
		return f.Fail(ExitFailure, "list interrupted", err)
	}
	if o.Err != nil {
		return f.Fail(ExitFailure, "list failed", o.Err)
	}

	st := s.ctrl.State()
	byID := make(map[int64]int, len(st.Records))
	for i, r := range st.Records {
		byID[r.ID] = i
	}

	result := ListResult{
		Cuisine:      opts.Cuisine,
		Neighborhood: opts.Neighborhood,
		Matched:      len(st.Records),
		Cached:       o.Cached,
		Revealed:     []ListItem{},
	}
	for _, th := range st.Thumbnails.All() {
		if !th.Revealed() {
			result.Pending++
			continue
		}
		r := st.Records[byID[th.ID]]
		result.Revealed = append(result.Revealed, ListItem{
			ID:           r.ID,
			Name:         r.Name,
			Neighborhood: r.Neighborhood,
			Cuisine:      r.CuisineType,
			URL:          restaurant.ReviewURL(r),
			ImageURL:     th.Image.URL,
		})
	}
	if opts.HTML {
		result.HTML = s.page.Fragments(view.SlotList)
	}

	return f.SuccessWithGeneration(result, o.Generation)
}
