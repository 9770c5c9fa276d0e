// Package state holds the application-state aggregate and applies patches
// to it.
//
// A State is a value. Updates are expressed as a Patch merged shallowly into
// the previous State: fields present in the patch overwrite, absent fields
// carry over by reference. The marker list and thumbnail queue are the only
// deeply mutated parts; they are owned resources reached through accessor
// methods and cannot be replaced by a patch.
//
// Container serializes patches so that no two interleave.
package state
