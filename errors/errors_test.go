package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassString(t *testing.T) {
	tests := []struct {
		class ErrorClass
		want  string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.class.String())
	}
}

func TestWrap(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(base, "Plugin", "Start", "hook invocation")
	require.Error(t, err)
	assert.Equal(t, "Plugin.Start: hook invocation failed: boom", err.Error())
	assert.True(t, errors.Is(err, base))

	assert.NoError(t, Wrap(nil, "Plugin", "Start", "anything"))
}

func TestWrapInvalidClassification(t *testing.T) {
	err := WrapInvalid(ErrSchemaUnderflow, "Builder", "EndObject", "stack check")
	require.Error(t, err)

	assert.True(t, IsInvalid(err))
	assert.False(t, IsTransient(err))
	assert.False(t, IsFatal(err))
	assert.Equal(t, ErrorInvalid, Classify(err))
	assert.True(t, errors.Is(err, ErrSchemaUnderflow))

	var ce *ClassifiedError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Builder", ce.Component)
	assert.Equal(t, "EndObject", ce.Operation)
}

func TestWrapTransientClassification(t *testing.T) {
	err := WrapTransient(ErrNoConnection, "Client", "Publish", "connection check")
	assert.True(t, IsTransient(err))
	assert.Equal(t, ErrorTransient, Classify(err))
}

func TestWrapFatalClassification(t *testing.T) {
	err := WrapFatal(fmt.Errorf("disk gone"), "Store", "Save", "write")
	assert.True(t, IsFatal(err))
	assert.Equal(t, ErrorFatal, Classify(err))
}

func TestSentinelClassification(t *testing.T) {
	// Bare sentinels classify without a ClassifiedError wrapper
	assert.True(t, IsInvalid(ErrSchemaUnbalanced))
	assert.True(t, IsInvalid(ErrInvalidConfig))
	assert.True(t, IsTransient(ErrSubscriptionFailed))

	// Unknown errors default to transient
	assert.Equal(t, ErrorTransient, Classify(errors.New("mystery")))
}

func TestNilChecks(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsInvalid(nil))
	assert.False(t, IsFatal(nil))
}
