// Package controller wires user events to the sync pipeline.
//
// A Controller owns the application state and runs a single-writer event
// loop. Load, Select and Scroll only enqueue events; every state patch,
// page write and marker change happens on the Run goroutine, one event at a
// time. Records stream in from the remote source on a fetch goroutine and
// are persisted by a write-behind goroutine, so rendering never waits on
// the store.
//
// Each Load or Select starts a new generation. Events still in flight from
// a superseded generation are discarded when they reach the loop.
package controller
