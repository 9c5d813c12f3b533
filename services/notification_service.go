package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PushProvider is implemented by the FCM client in internal/notification.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

// NotificationService keeps a log of every outbound message and delivers it
// through the configured push provider. A failed delivery is recorded and
// the error is returned unswallowed so the guard retries on the next tick.
type NotificationService struct {
	db           *pgxpool.Pool
	pushProvider PushProvider
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

// SetPushProvider injects the real FCM provider from main.go.
func (s *NotificationService) SetPushProvider(provider PushProvider) {
	s.pushProvider = provider
}

func (s *NotificationService) EnsureSchema(ctx context.Context) error {
	notificationsTable := `
	CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		failure_reason TEXT,
		sent_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
	`
	if _, err := s.db.Exec(ctx, notificationsTable); err != nil {
		return fmt.Errorf("failed to create notifications table: %w", err)
	}

	tokensTable := `
	CREATE TABLE IF NOT EXISTS device_tokens (
		token TEXT PRIMARY KEY,
		platform TEXT NOT NULL DEFAULT '',
		registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
	`
	if _, err := s.db.Exec(ctx, tokensTable); err != nil {
		return fmt.Errorf("failed to create device_tokens table: %w", err)
	}
	return nil
}

func (s *NotificationService) RegisterDevice(ctx context.Context, token, platform string) error {
	query := `
	INSERT INTO device_tokens (token, platform)
	VALUES ($1, $2)
	ON CONFLICT (token) DO UPDATE SET platform = $2, registered_at = NOW()
	`
	if _, err := s.db.Exec(ctx, query, token, platform); err != nil {
		return fmt.Errorf("failed to register device: %w", mapStoreErr(err))
	}
	return nil
}

func (s *NotificationService) deviceTokens(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT token FROM device_tokens`)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", mapStoreErr(err))
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// Send implements guard.Sender.
func (s *NotificationService) Send(ctx context.Context, title, body string) error {
	id := uuid.New()

	query := `
	INSERT INTO notifications (id, title, body, status)
	VALUES ($1, $2, $3, 'pending')
	`
	if _, err := s.db.Exec(ctx, query, id, title, body); err != nil {
		return fmt.Errorf("failed to record notification: %w", mapStoreErr(err))
	}

	if s.pushProvider == nil {
		// No provider configured (e.g. local dev without FCM credentials).
		// Log instead of failing so the guarded actions still complete.
		log.Printf("Notification (no push provider): %s: %s", title, body)
		s.markSent(ctx, id)
		return nil
	}

	tokens, err := s.deviceTokens(ctx)
	if err != nil {
		return err
	}

	if err := s.pushProvider.SendPush(ctx, tokens, title, body, nil); err != nil {
		s.markFailed(ctx, id, err)
		return fmt.Errorf("failed to deliver notification: %w", err)
	}

	s.markSent(ctx, id)
	return nil
}

func (s *NotificationService) markSent(ctx context.Context, id uuid.UUID) {
	query := `UPDATE notifications SET status = 'sent', sent_at = NOW() WHERE id = $1`
	if _, err := s.db.Exec(ctx, query, id); err != nil {
		log.Printf("Failed to mark notification %s as sent: %v", id, err)
	}
}

func (s *NotificationService) markFailed(ctx context.Context, id uuid.UUID, cause error) {
	query := `UPDATE notifications SET status = 'failed', failure_reason = $2 WHERE id = $1`
	if _, err := s.db.Exec(ctx, query, id, cause.Error()); err != nil {
		log.Printf("Failed to mark notification %s as failed: %v", id, err)
	}
}

type NotificationEntry struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Status    string     `json:"status"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// RecentNotifications returns the latest outbox entries for the API.
func (s *NotificationService) RecentNotifications(ctx context.Context, limit int) ([]*NotificationEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
	SELECT id, title, body, status, sent_at, created_at
	FROM notifications
	ORDER BY created_at DESC
	LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", mapStoreErr(err))
	}
	defer rows.Close()

	var entries []*NotificationEntry
	for rows.Next() {
		entry := &NotificationEntry{}
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.Body, &entry.Status, &entry.SentAt, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
