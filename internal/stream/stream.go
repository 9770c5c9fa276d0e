// Package stream provides a small lazy, single-pass sequence abstraction
// used to compose the record pipeline.
//
// A Stream yields (value, nil) pairs in source order and terminates either
// when the source is exhausted or after yielding a single (zero, err) pair.
// Operators never reorder, never retry and pass upstream errors through
// unchanged.
package stream

// Stream is a lazy sequence of values that may fail.
// It can be consumed with range:
//
//	for r, err := range s {
//	    if err != nil {
//	        return err
//	    }
//	    ...
//	}
type Stream[T any] func(yield func(T, error) bool)

// FromSlice returns a stream over xs in order.
func FromSlice[T any](xs []T) Stream[T] {
	return func(yield func(T, error) bool) {
		for _, x := range xs {
			if !yield(x, nil) {
				return
			}
		}
	}
}

// Fail returns a stream that yields err and terminates.
func Fail[T any](err error) Stream[T] {
	return func(yield func(T, error) bool) {
		var zero T
		yield(zero, err)
	}
}

// Filter yields the values of s for which keep returns true.
func Filter[T any](s Stream[T], keep func(T) bool) Stream[T] {
	return func(yield func(T, error) bool) {
		for v, err := range s {
			if err != nil {
				yield(v, err)
				return
			}
			if keep(v) && !yield(v, nil) {
				return
			}
		}
	}
}

// Map yields f(v) for every value v of s.
func Map[T, U any](s Stream[T], f func(T) U) Stream[U] {
	return func(yield func(U, error) bool) {
		for v, err := range s {
			if err != nil {
				var zero U
				yield(zero, err)
				return
			}
			if !yield(f(v), nil) {
				return
			}
		}
	}
}

// Distinct yields each value of s the first time it is seen.
// The seen set lives for one iteration of the returned stream.
func Distinct[T comparable](s Stream[T]) Stream[T] {
	return func(yield func(T, error) bool) {
		seen := NewSet[T]()
		for v, err := range s {
			if err != nil {
				yield(v, err)
				return
			}
			if seen.Add(v) && !yield(v, nil) {
				return
			}
		}
	}
}

// Tap calls f for every value of s before passing it downstream.
func Tap[T any](s Stream[T], f func(T)) Stream[T] {
	return func(yield func(T, error) bool) {
		for v, err := range s {
			if err != nil {
				yield(v, err)
				return
			}
			f(v)
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Collect drains s into a slice. On error it returns the values collected
// so far together with the error.
func Collect[T any](s Stream[T]) ([]T, error) {
	var out []T
	for v, err := range s {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}
