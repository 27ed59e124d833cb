package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"taskmaster/internal/validation"
)

// Handler executes one command or query end to end.
type Handler[Req, Resp any] interface {
	Handle(ctx context.Context, req Req) (Resp, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

func (f HandlerFunc[Req, Resp]) Handle(ctx context.Context, req Req) (Resp, error) {
	return f(ctx, req)
}

// Behavior wraps a handler with cross-cutting work that runs around it.
type Behavior[Req, Resp any] func(next Handler[Req, Resp]) Handler[Req, Resp]

// Chain applies behaviors so that the first one listed runs outermost.
func Chain[Req, Resp any](h Handler[Req, Resp], behaviors ...Behavior[Req, Resp]) Handler[Req, Resp] {
	for i := len(behaviors) - 1; i >= 0; i-- {
		h = behaviors[i](h)
	}
	return h
}

// Validated rejects requests that break their field rules before the handler runs.
// The returned error is a *validation.Errors.
func Validated[Req, Resp any](v *validation.Validator, messages validation.Messages) Behavior[Req, Resp] {
	return func(next Handler[Req, Resp]) Handler[Req, Resp] {
		return HandlerFunc[Req, Resp](func(ctx context.Context, req Req) (Resp, error) {
			if err := v.Struct(req, messages); err != nil {
				var zero Resp
				return zero, err
			}
			return next.Handle(ctx, req)
		})
	}
}

// Logged records the outcome and latency of every dispatch under name.
func Logged[Req, Resp any](log logrus.FieldLogger, name string) Behavior[Req, Resp] {
	return func(next Handler[Req, Resp]) Handler[Req, Resp] {
		return HandlerFunc[Req, Resp](func(ctx context.Context, req Req) (Resp, error) {
			start := time.Now()
			resp, err := next.Handle(ctx, req)

			entry := log.WithFields(logrus.Fields{
				"handler":  name,
				"duration": time.Since(start),
			})
			var verr *validation.Errors
			switch {
			case err == nil:
				entry.Debug("handled")
			case errors.As(err, &verr):
				entry.WithField("violations", len(verr.Fields)).Debug("rejected by validation")
			case errors.Is(err, ErrTaskNotFound), errors.Is(err, ErrNoContent):
				entry.WithError(err).Debug("handled without result")
			default:
				entry.WithError(err).Error("handler failed")
			}
			return resp, err
		})
	}
}
