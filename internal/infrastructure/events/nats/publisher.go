// Package nats publishes document lifecycle events for downstream
// consumers (notification fan-out, reporting). Publishing is
// best-effort by contract: the editor never fails a user action over
// a lost event.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	subjectDocumentCreated   = "edo.document.created"
	subjectDocumentSubmitted = "edo.document.submitted"
	subjectDocumentResent    = "edo.document.resent"
)

type Publisher struct {
	conn          *nats.Conn
	subjectPrefix string
}

type Options struct {
	ConnectTimeout time.Duration
	ReconnectWait  time.Duration
	MaxReconnects  int
	SubjectPrefix  string
}

func New(url string) (*Publisher, error) {
	return NewWithOptions(url, Options{})
}

func NewWithOptions(url string, options Options) (*Publisher, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}

	conn, err := nats.Connect(
		url,
		nats.Name("edo-orchestrator"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{conn: conn, subjectPrefix: options.SubjectPrefix}, nil
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

func (p *Publisher) PublishDocumentCreated(ctx context.Context, documentID int64) error {
	return p.publish(ctx, subjectDocumentCreated, map[string]any{"document_id": documentID})
}

func (p *Publisher) PublishDocumentSubmitted(ctx context.Context, documentID int64) error {
	return p.publish(ctx, subjectDocumentSubmitted, map[string]any{"document_id": documentID})
}

func (p *Publisher) PublishDocumentResent(ctx context.Context, documentID int64, success bool) error {
	return p.publish(ctx, subjectDocumentResent, map[string]any{
		"document_id": documentID,
		"success":     success,
	})
}

func (p *Publisher) publish(ctx context.Context, subject string, payload map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload["at"] = time.Now().UTC().Format(time.RFC3339)
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subjectPrefix+subject, raw); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}
