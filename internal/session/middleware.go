package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"order-app/internal/model"

	"github.com/rs/zerolog"
)

// ErrPanic is returned when a command panics.
var ErrPanic = errors.New("command failed unexpectedly")

// Logging logs every command with timing information.
func Logging(logger zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) error {
			start := time.Now()

			err := next(ctx, req)

			var event *zerolog.Event
			switch _, domain := model.IsDomainError(err); {
			case err == nil, errors.Is(err, io.EOF), errors.Is(err, errLogout):
				event = logger.Info()
			case domain:
				event = logger.Warn().Err(err)
			default:
				event = logger.Error().Err(err)
			}
			event.
				Str("option", req.Option.Key).
				Str("command", req.Option.Label).
				Int("user_id", req.Session.Account.ID).
				Dur("duration", time.Since(start)).
				Msg("menu command")
			return err
		}
	}
}

// Recovery turns a panicking command into ErrPanic.
func Recovery(logger zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error().
						Interface("panic", r).
						Str("option", req.Option.Key).
						Msg("panic recovered")
					err = fmt.Errorf("%s: %w", req.Option.Label, ErrPanic)
				}
			}()

			return next(ctx, req)
		}
	}
}

// RequireAdmin rejects admin options for sessions without the admin role.
func RequireAdmin(logger zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) error {
			if req.Option.Admin && !req.Session.IsAdmin() {
				logger.Warn().
					Str("option", req.Option.Key).
					Int("user_id", req.Session.Account.ID).
					Msg("admin option refused")
				return model.ErrAdminRequired
			}
			return next(ctx, req)
		}
	}
}
