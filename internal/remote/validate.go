package remote

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/restosync/internal/restaurant"
)

//go:embed schema.cue
var recordSchema string

// validator checks raw records against the embedded CUE schema.
// A cue.Context is not safe for concurrent use, so each fetch builds its own.
type validator struct {
	ctx    *cue.Context
	schema cue.Value
}

func newValidator() (*validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(recordSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile record schema: %w", err)
	}
	return &validator{ctx: ctx, schema: schema}, nil
}

// decode validates raw against the schema and decodes it into a record with
// NFC-normalized text fields.
func (v *validator) decode(raw json.RawMessage) (restaurant.Restaurant, error) {
	val := v.ctx.CompileBytes(raw)
	if err := val.Err(); err != nil {
		return restaurant.Restaurant{}, fmt.Errorf("parse record: %w", err)
	}
	if err := v.schema.Unify(val).Validate(cue.Concrete(true)); err != nil {
		return restaurant.Restaurant{}, fmt.Errorf("invalid record: %w", err)
	}

	var r restaurant.Restaurant
	if err := json.Unmarshal(raw, &r); err != nil {
		return restaurant.Restaurant{}, fmt.Errorf("decode record: %w", err)
	}
	return normalize(r), nil
}

// normalize puts text fields in NFC so that facet values compare equal
// regardless of how the feed encoded them.
func normalize(r restaurant.Restaurant) restaurant.Restaurant {
	r.Name = norm.NFC.String(r.Name)
	r.Neighborhood = norm.NFC.String(r.Neighborhood)
	r.CuisineType = norm.NFC.String(r.CuisineType)
	r.Address = norm.NFC.String(r.Address)
	return r
}
