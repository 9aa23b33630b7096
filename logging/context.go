package logging

import (
	"context"

	"github.com/charmbracelet/log"
)

type loggerKey struct{}

// FromContext returns the logger carried by ctx, or Default.
func FromContext(ctx context.Context) *log.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*log.Logger); ok && logger != nil {
			return logger
		}
	}
	return Default()
}

// WithLogger attaches logger to ctx.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithFields scopes the logger in ctx to a document or file, so work started
// from ctx logs with those fields attached.
func WithFields(ctx context.Context, keyvals ...interface{}) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(keyvals...))
}

// ForDocument is WithFields for one document revision.
func ForDocument(ctx context.Context, uri string, revision uint64) context.Context {
	return WithFields(ctx, FieldURI, uri, FieldRevision, revision)
}
