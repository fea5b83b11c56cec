package natsbridge

import (
	"encoding/json"

	"github.com/joelkoz/signalk-plugin-base/delta"
	"github.com/joelkoz/signalk-plugin-base/errors"
)

// DeltaSink publishes delta envelopes onto per-plugin bus subjects. It
// satisfies the plugin.MessageSink contract.
type DeltaSink struct {
	client *Client
	prefix string
}

// Sink returns a DeltaSink that publishes each delta as JSON to the
// subject "<prefix>.<pluginID>".
func (c *Client) Sink(prefix string) *DeltaSink {
	return &DeltaSink{client: c, prefix: prefix}
}

// Publish marshals the delta and publishes it on the plugin's subject.
func (s *DeltaSink) Publish(pluginID string, d delta.Delta) error {
	data, err := json.Marshal(d)
	if err != nil {
		return errors.WrapInvalid(err, "deltaSink", "Publish", "delta marshal")
	}

	subject := s.prefix + "." + pluginID
	if err := s.client.Publish(subject, data); err != nil {
		return errors.WrapTransient(err, "deltaSink", "Publish", "bus publish")
	}
	return nil
}
