package log

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type contextKey struct{}

// Init builds the process logger. Logs go to stderr so that they never mix
// with command output.
func Init(level, format string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	logger.SetLevel(parsed)

	switch format {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, errors.Errorf("invalid log format %q", format)
	}

	return logger, nil
}

func WithLogger(ctx context.Context, entry logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, contextKey{}, entry)
}

func GetLogger(ctx context.Context) logrus.FieldLogger {
	entry, ok := ctx.Value(contextKey{}).(logrus.FieldLogger)
	if !ok {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return entry
}
