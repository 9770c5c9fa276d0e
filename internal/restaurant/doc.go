// Package restaurant defines the restaurant record shared by every layer of
// restosync, the URL conventions derived from it, and the error taxonomy
// used across the fetch, cache and view pipeline.
//
// A Restaurant is an immutable value once fetched. Its ID is the only key
// used for persistence upserts; two records with the same ID are the same
// restaurant and the later one wins.
package restaurant
