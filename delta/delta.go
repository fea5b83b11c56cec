// Package delta defines the message format used to publish path/value updates
// to the host's data bus. The field names and nesting are a compatibility
// contract with the host and must be emitted verbatim.
package delta

// PathValue is a single dotted-path update.
type PathValue struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// Source identifies the plugin that produced an update.
type Source struct {
	Label string `json:"label"`
}

// Update groups the values produced by one source.
type Update struct {
	Source Source      `json:"source"`
	Values []PathValue `json:"values"`
}

// Delta is the full envelope published to the host bus.
type Delta struct {
	Updates []Update `json:"updates"`
}

// New builds the single-update envelope for a plugin. The values slice is
// carried through unchanged.
func New(pluginID string, values []PathValue) Delta {
	return Delta{
		Updates: []Update{
			{
				Source: Source{Label: pluginID},
				Values: values,
			},
		},
	}
}
