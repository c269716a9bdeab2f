// Package stream holds helpers around lazy feature sequences.
//
// A sequence is an iter.Seq2[T, error]: each step yields either a value with
// a nil error, or a zero value with the error that ends the sequence.
// Producers stop without yielding an error once their context is cancelled,
// so consumers tell completion from cancellation by checking ctx.Err().
package stream

import (
	"context"
	"iter"
)

// FromSlice yields every element of items, stopping early if ctx is done.
func FromSlice[T any](ctx context.Context, items []T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, it := range items {
			if ctx.Err() != nil {
				return
			}
			if !yield(it, nil) {
				return
			}
		}
	}
}

// Fail yields err once.
func Fail[T any](err error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		yield(zero, err)
	}
}

// Collect drains seq into a slice. It returns the first yielded error, or
// ctx.Err() when the sequence ended because ctx was cancelled.
func Collect[T any](ctx context.Context, seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}
