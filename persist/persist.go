// Package persist mirrors the value of a cell into a string-keyed store.
package persist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AnatoleLucet/frp"
)

type options struct {
	logger *slog.Logger
}

type Option func(*options)

// WithLogger sets the logger used to report failed writes. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Persist binds cell to key in store. A stored value is loaded into the cell
// and every later change is written back. Without a stored value, the current
// value is written immediately.
//
// Writes happen in a listener, after the transaction that produced the value.
// A failed write is logged and does not affect the cell.
func Persist[T any](ctx context.Context, store Store, key string, cell frp.CellSink[T], conv Serializer[T], opts ...Option) (frp.Listener, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	saveCtx := context.WithoutCancel(ctx)
	save := func(v T) {
		if err := store.Set(saveCtx, key, conv.ToStr(v)); err != nil {
			o.logger.Error("failed to store cell", "key", key, "error", err)
		}
	}

	stored, ok, err := store.Get(ctx, key)
	if err != nil {
		return frp.Listener{}, fmt.Errorf("failed to load %q: %w", key, err)
	}
	if !ok {
		return cell.Observe(save), nil
	}

	v, err := conv.FromStr(stored)
	if err != nil {
		return frp.Listener{}, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	cell.Send(v)
	return cell.Listen(save), nil
}
