package natsbridge

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelkoz/signalk-plugin-base/delta"
	"github.com/joelkoz/signalk-plugin-base/errors"
)

func deltaFixture() delta.Delta {
	return delta.New("test-plugin", []delta.PathValue{
		{Path: "navigation.speedOverGround", Value: 4.2},
	})
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	assert.Equal(t, "nats://localhost:4222", client.URL())
	assert.Equal(t, StatusDisconnected, client.Status())
	assert.Equal(t, -1, client.maxReconnects)
	assert.Equal(t, 2*time.Second, client.reconnectWait)
	assert.Equal(t, 30*time.Second, client.drainTimeout)
}

func TestNewClientOptions(t *testing.T) {
	client, err := NewClient("nats://localhost:4222",
		WithName("plugin-host"),
		WithMaxReconnects(5),
		WithReconnectWait(500*time.Millisecond),
		WithTimeout(time.Second),
		WithDrainTimeout(10*time.Second),
		WithLogger(slog.Default()),
	)
	require.NoError(t, err)

	assert.Equal(t, "plugin-host", client.clientName)
	assert.Equal(t, 5, client.maxReconnects)
	assert.Equal(t, 500*time.Millisecond, client.reconnectWait)
	assert.Equal(t, time.Second, client.timeout)
	assert.Equal(t, 10*time.Second, client.drainTimeout)
}

func TestNewClientInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  ClientOption
	}{
		{"empty name", WithName("")},
		{"nil logger", WithLogger(nil)},
		{"bad max reconnects", WithMaxReconnects(-2)},
		{"zero reconnect wait", WithReconnectWait(0)},
		{"negative timeout", WithTimeout(-time.Second)},
		{"zero drain timeout", WithDrainTimeout(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient("nats://localhost:4222", tt.opt)
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
		})
	}
}

func TestConnectionStatusString(t *testing.T) {
	assert.Equal(t, "disconnected", StatusDisconnected.String())
	assert.Equal(t, "connecting", StatusConnecting.String())
	assert.Equal(t, "connected", StatusConnected.String())
	assert.Equal(t, "reconnecting", StatusReconnecting.String())
	assert.Equal(t, "unknown", ConnectionStatus(42).String())
}

func TestPublishNotConnected(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	err = client.Publish("test.subject", []byte("data"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.True(t, errors.IsTransient(err))
}

func TestSubscribeNotConnected(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	source := client.Stream("vessels.position")
	_, err = source.Subscribe(func(any) {})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSubscribeNilHandler(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	_, err = client.Stream("vessels.position").Subscribe(nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestCloseWithoutConnect(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	// Close is safe without a prior connect and idempotent.
	require.NoError(t, client.Close(context.Background()))
	require.NoError(t, client.Close(context.Background()))
	assert.Equal(t, StatusDisconnected, client.Status())
}

func TestSinkNotConnected(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	sink := client.Sink("signalk.deltas")
	err = sink.Publish("my-plugin", deltaFixture())
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
}

func TestDecodePayload(t *testing.T) {
	decoded := decodePayload([]byte(`{"speed": 4.2}`))
	m, ok := decoded.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 4.2, m["speed"])

	raw := decodePayload([]byte("not json"))
	assert.Equal(t, []byte("not json"), raw)
}
