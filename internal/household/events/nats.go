package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/nemanja-m/chores/internal/household/core"
)

// Conn is the subset of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

type NATSPublisher struct {
	conn   Conn
	prefix string
}

func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("chores"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
}

// NewNATSPublisher connects to url and publishes under prefix.
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	nc, err := Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return NewPublisherWithConn(nc, prefix), nil
}

func NewPublisherWithConn(conn Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix}
}

func (p *NATSPublisher) PublishJobCompleted(job core.Job) error {
	return p.publishJSON(SubjectJobCompleted, NewJobEvent(job))
}

func (p *NATSPublisher) PublishJobHarvested(h core.Harvest) error {
	return p.publishJSON(SubjectJobHarvested, NewHarvestEvent(h))
}

func (p *NATSPublisher) PublishRunResult(r core.Result) error {
	return p.publishJSON(SubjectRunResult, NewRunResultEvent(r))
}

func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}

func (p *NATSPublisher) Subject(name string) string {
	return p.prefix + "." + name
}

func (p *NATSPublisher) publishJSON(name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", name, err)
	}
	if err := p.conn.Publish(p.Subject(name), b); err != nil {
		return fmt.Errorf("publish %s: %w", p.Subject(name), err)
	}
	return nil
}
