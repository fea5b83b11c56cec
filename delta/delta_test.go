package delta

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelopeShape(t *testing.T) {
	values := []PathValue{{Path: "a.b", Value: 1}}
	d := New("my-plugin", values)

	require.Len(t, d.Updates, 1)
	assert.Equal(t, "my-plugin", d.Updates[0].Source.Label)
	assert.Equal(t, values, d.Updates[0].Values)
}

func TestEnvelopeWireFormat(t *testing.T) {
	d := New("anchor-watch", []PathValue{
		{Path: "navigation.anchor.position", Value: map[string]any{"latitude": 60.1}},
		{Path: "navigation.anchor.state", Value: "dragging"},
	})

	raw, err := json.Marshal(d)
	require.NoError(t, err)

	// The host contract fixes every field name in the envelope
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	updates, ok := decoded["updates"].([]any)
	require.True(t, ok, "envelope must have an updates array")
	require.Len(t, updates, 1)

	update := updates[0].(map[string]any)
	source := update["source"].(map[string]any)
	assert.Equal(t, "anchor-watch", source["label"])

	values := update["values"].([]any)
	require.Len(t, values, 2)
	first := values[0].(map[string]any)
	assert.Equal(t, "navigation.anchor.position", first["path"])
	second := values[1].(map[string]any)
	assert.Equal(t, "dragging", second["value"])
}

func TestEmptyValues(t *testing.T) {
	d := New("p", nil)
	require.Len(t, d.Updates, 1)
	assert.Equal(t, "p", d.Updates[0].Source.Label)
	assert.Empty(t, d.Updates[0].Values)
}
