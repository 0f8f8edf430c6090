package log

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	logger, err := Init("debug", "json")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	_, err = Init("loud", "text")
	assert.Error(t, err)

	_, err = Init("info", "xml")
	assert.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	entry := logrus.New().WithField("command", "list")
	ctx := WithLogger(context.Background(), entry)
	assert.Same(t, entry, GetLogger(ctx))
}
