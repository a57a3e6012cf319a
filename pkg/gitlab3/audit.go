package gitlab3

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultAuditSubject is the NATS subject audit events are published on.
const DefaultAuditSubject = "gitlab3.audit"

// Publisher sends a message to a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// AuditEvent summarizes one API call.
type AuditEvent struct {
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	StatusCode int       `json:"status_code"`
	Sudo       string    `json:"sudo,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// AuditInterceptor publishes an AuditEvent for every response. Request
// bodies are never published. Publish failures fail the call only when
// strict is set.
func AuditInterceptor(publisher Publisher, subject string, strict bool) ResponseInterceptor {
	if subject == "" {
		subject = DefaultAuditSubject
	}

	return func(ctx context.Context, req *Request, resp *Response) error {
		event := AuditEvent{
			Method:     req.Method,
			Path:       req.Path,
			StatusCode: resp.StatusCode,
			Timestamp:  time.Now().UTC(),
		}

		if user, ok := SudoFromContext(ctx); ok {
			event.Sudo = user
		}

		if resp.Error != nil {
			event.Error = resp.Error.Error()
		}

		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("encoding audit event: %w", err)
		}

		err = publisher.Publish(subject, data)
		if err != nil && strict {
			return fmt.Errorf("publishing audit event: %w", err)
		}

		return nil
	}
}

// ConnectAudit opens a NATS connection suitable for AuditInterceptor.
func ConnectAudit(url string, opts ...nats.Option) (*nats.Conn, error) {
	opts = append([]nats.Option{nats.Name("gitlab3-audit")}, opts...)

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return conn, nil
}
