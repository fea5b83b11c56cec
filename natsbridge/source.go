package natsbridge

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/joelkoz/signalk-plugin-base/errors"
	"github.com/joelkoz/signalk-plugin-base/stream"
)

// natsSource adapts one NATS subject to the stream.Source contract.
type natsSource struct {
	client  *Client
	subject string
}

// Stream returns a stream.Source that delivers messages published on the
// given subject. Message payloads are decoded from JSON; payloads that are
// not valid JSON are delivered as raw bytes.
func (c *Client) Stream(subject string) stream.Source {
	return &natsSource{client: c, subject: subject}
}

// Subscribe attaches handler to the subject. Each subscription gets its own
// NATS subscription so Unsubscribe detaches only this handler.
func (s *natsSource) Subscribe(handler stream.Handler) (stream.Subscription, error) {
	if handler == nil {
		return nil, errors.WrapInvalid(errors.ErrSubscriptionFailed, "natsSource", "Subscribe", "nil handler")
	}

	s.client.mu.RLock()
	conn := s.client.conn
	s.client.mu.RUnlock()

	if conn == nil || !conn.IsConnected() {
		return nil, errors.WrapTransient(ErrNotConnected, "natsSource", "Subscribe", "connection check")
	}

	subID := uuid.NewString()
	logger := s.client.logger.With("subject", s.subject, "subscription_id", subID)

	sub, err := conn.Subscribe(s.subject, func(msg *nats.Msg) {
		handler(decodePayload(msg.Data))
	})
	if err != nil {
		return nil, errors.WrapTransient(err, "natsSource", "Subscribe", "subject subscribe")
	}

	logger.Debug("subscribed to subject")

	return stream.UnsubscribeFunc(func() error {
		if err := sub.Unsubscribe(); err != nil {
			return errors.WrapTransient(err, "natsSource", "Unsubscribe", "subject unsubscribe")
		}
		logger.Debug("unsubscribed from subject")
		return nil
	}), nil
}

func decodePayload(data []byte) any {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return data
	}
	return value
}
