package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// DefaultChannel is the NOTIFY channel the row triggers publish on
const DefaultChannel = "table_changes"

// notification is the JSON payload built by the notify_table_change trigger
type notification struct {
	Table  string    `json:"table"`
	Action string    `json:"action"`
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
}

// ParseNotification decodes a trigger payload into a ChangeEvent
func ParseNotification(payload string) (ChangeEvent, error) {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return ChangeEvent{}, fmt.Errorf("invalid change notification: %w", err)
	}
	if !IsKnownTable(n.Table) {
		return ChangeEvent{}, fmt.Errorf("change notification for unknown table %q", n.Table)
	}
	action := Action(n.Action)
	switch action {
	case ActionInsert, ActionUpdate, ActionDelete, ActionResequence:
	default:
		return ChangeEvent{}, fmt.Errorf("change notification with unknown action %q", n.Action)
	}
	return ChangeEvent{Table: n.Table, Action: action, ID: n.ID, At: n.At, Source: SourceNotify}, nil
}

// PgListener holds a dedicated connection that LISTENs on the change channel
// and republishes notifications into the hub. It reconnects with backoff
// until its context is cancelled.
type PgListener struct {
	dsn        string
	channel    string
	hub        *Hub
	logger     *zap.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewPgListener creates a listener; an empty channel uses DefaultChannel
func NewPgListener(dsn, channel string, hub *Hub, logger *zap.Logger) *PgListener {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PgListener{
		dsn:        dsn,
		channel:    channel,
		hub:        hub,
		logger:     logger.Named("pg-listener"),
		minBackoff: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
}

// Run blocks until ctx is done
func (l *PgListener) Run(ctx context.Context) error {
	backoff := l.minBackoff
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.logger.Warn("change listener disconnected, reconnecting",
			zap.Error(err),
			zap.Duration("backoff", backoff),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > l.maxBackoff {
			backoff = l.maxBackoff
		}
	}
}

func (l *PgListener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}
	l.logger.Info("listening for table changes", zap.String("channel", l.channel))

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		change, err := ParseNotification(n.Payload)
		if err != nil {
			l.logger.Warn("ignoring change notification", zap.Error(err), zap.String("payload", n.Payload))
			continue
		}
		l.hub.Publish(change)
	}
}
