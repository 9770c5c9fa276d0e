// Package feed serves restaurant records over HTTP in the shape the sync
// layer consumes: GET /restaurants/ returns a JSON array, GET
// /restaurants/{id} returns one record or 404.
//
// Records come from a Source: a JSON file for local development, or a
// Postgres table.
package feed
