package view

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// withFallback runs fn in g and stores its result in dst, or def when fn
// fails. A failure is logged and never fails the group.
func withFallback[T any](ctx context.Context, g *errgroup.Group, logger zerolog.Logger, call string, dst *T, def T, fn func(context.Context) (T, error)) {
	g.Go(func() error {
		v, err := fn(ctx)
		if err != nil {
			logger.Debug().Err(err).Str("call", call).Msg("using fallback")
			*dst = def
			return nil
		}
		*dst = v
		return nil
	})
}

// required runs fn in g and stores its result in dst. A failure cancels the
// rest of the group and becomes the group's error.
func required[T any](ctx context.Context, g *errgroup.Group, dst *T, fn func(context.Context) (T, error)) {
	g.Go(func() error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	})
}

// tryLoad is withFallback for sections that also tell the user which part
// failed: *failed is set when fn fails.
func tryLoad[T any](ctx context.Context, g *errgroup.Group, logger zerolog.Logger, call string, failed *bool, dst *T, def T, fn func(context.Context) (T, error)) {
	withFallback(ctx, g, logger, call, dst, def, func(ctx context.Context) (T, error) {
		v, err := fn(ctx)
		if err != nil {
			*failed = true
		}
		return v, err
	})
}
