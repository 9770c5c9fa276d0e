package view

import (
	"html/template"
	"path"
	"strings"
	"sync/atomic"

	"github.com/roach88/restosync/internal/restaurant"
)

// DefaultImagePrefix is the relative prefix for image URLs on the list page.
const DefaultImagePrefix = "."

var itemTmpl = template.Must(template.New("item").Parse(
	`<li role="banner" aria-labelledby="r{{.ID}}">` +
		`<div id="r{{.ID}}"><h2 role="heading">{{.Name}}</h2><p>{{.Neighborhood}}</p><p>{{.Address}}</p></div>` +
		`<a role="link" href="{{.URL}}">View Details</a></li>`))

var imageTmpl = template.Must(template.New("image").Parse(
	`<picture class="restaurant-img">` +
		`<source media="(max-width: 719px)" srcset="{{.Base}}-100-1x.jpg 1x, {{.Base}}-100-2x.jpg 2x, {{.Base}}-100-3x.jpg 3x">` +
		`<source media="(min-width: 720px)" srcset="{{.Base}}.jpg 1x">` +
		`<img class="restaurant-img" src="{{.Base}}.jpg" alt="{{.Alt}}">` +
		`</picture>`))

var optionTmpl = template.Must(template.New("option").Parse(`<option value="{{.}}">{{.}}</option>`))

// Fragment is rendered list-item markup without its image.
type Fragment string

// ImageRef references a restaurant image by key without fetching it.
type ImageRef struct {
	Key string // image key, e.g. "1"
	URL string // e.g. "/img/1"
	Alt string
}

// RenderThumbnail builds the list-item fragment for r and the deferred
// reference to its image.
func RenderThumbnail(r restaurant.Restaurant) (Fragment, ImageRef) {
	var b strings.Builder
	execute(itemTmpl, &b, struct {
		ID                          int64
		Name, Neighborhood, Address string
		URL                         string
	}{r.ID, r.Name, r.Neighborhood, r.Address, restaurant.ReviewURL(r)})

	url := restaurant.ImageURL(r)
	return Fragment(b.String()), ImageRef{
		Key: strings.TrimPrefix(url, "/img/"),
		URL: url,
		Alt: "Image of " + r.Name + " restaurant",
	}
}

// ResponsiveImage renders the <picture> markup for ref. Small viewports get
// the -100-{1,2,3}x variants; wide ones get the full image.
func ResponsiveImage(ref ImageRef, prefix string) string {
	var b strings.Builder
	execute(imageTmpl, &b, struct{ Base, Alt string }{
		Base: prefix + strings.TrimSuffix(ref.URL, path.Ext(ref.URL)),
		Alt:  ref.Alt,
	})
	return b.String()
}

// Materialize inserts the image markup as the first child of the fragment's
// list item.
func Materialize(f Fragment, img ImageRef) string {
	s := string(f)
	i := strings.IndexByte(s, '>')
	if i < 0 {
		return ResponsiveImage(img, DefaultImagePrefix) + s
	}
	return s[:i+1] + ResponsiveImage(img, DefaultImagePrefix) + s[i+1:]
}

// Option renders a facet selector option.
func Option(value string) string {
	var b strings.Builder
	execute(optionTmpl, &b, value)
	return b.String()
}

// execute runs a parsed template. The templates are static, so a failure is
// a programming error.
func execute(t *template.Template, b *strings.Builder, data any) {
	if err := t.Execute(b, data); err != nil {
		panic("view: render " + t.Name() + ": " + err.Error())
	}
}

// Thumbnail pairs a rendered fragment with its deferred image and a
// revealed flag. A thumbnail is revealed at most once and never goes back.
type Thumbnail struct {
	ID       int64
	Fragment Fragment
	Image    ImageRef
	revealed atomic.Bool
}

// NewThumbnail renders r into an unrevealed thumbnail.
func NewThumbnail(r restaurant.Restaurant) *Thumbnail {
	f, img := RenderThumbnail(r)
	return &Thumbnail{ID: r.ID, Fragment: f, Image: img}
}

// Revealed reports whether the thumbnail has been materialized.
func (t *Thumbnail) Revealed() bool {
	return t.revealed.Load()
}

// Reveal marks the thumbnail revealed and returns its full markup.
// Returns false if it was already revealed.
func (t *Thumbnail) Reveal() (string, bool) {
	if !t.revealed.CompareAndSwap(false, true) {
		return "", false
	}
	return Materialize(t.Fragment, t.Image), true
}
