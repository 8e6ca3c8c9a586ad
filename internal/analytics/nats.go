package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectd/internal/logging"
)

// DefaultSubjectPrefix is prepended to the event name to form the subject.
const DefaultSubjectPrefix = "analytics.projects"

// NATSSink publishes events as JSON to <prefix>.<event>.
type NATSSink struct {
	nc     *nats.Conn
	prefix string
	logger *logging.Logger
}

// NewNATSSink returns a sink publishing on nc.
func NewNATSSink(nc *nats.Conn, prefix string, logger *logging.Logger) *NATSSink {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &NATSSink{nc: nc, prefix: prefix, logger: logger}
}

// Subject returns the subject an event is published on.
func (s *NATSSink) Subject(name EventName) string {
	return fmt.Sprintf("%s.%s", s.prefix, name)
}

func (s *NATSSink) Log(ctx context.Context, e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		s.logger.Debug(ctx, "analytics marshal failed", zap.Error(err))
		return
	}
	if err := s.nc.Publish(s.Subject(e.Name), data); err != nil {
		s.logger.Debug(ctx, "analytics publish failed",
			zap.String("event", string(e.Name)), zap.Error(err))
	}
}

// Connect dials NATS for analytics. The connection retries in the background,
// so a broker that is down at startup does not block the service.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("projectd-analytics"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}
