// Package audit records admin moderation actions in PostgreSQL. Auditing
// is best-effort: when Postgres is not configured every call is a no-op.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pochi-app/pochi-web/internal/database"
)

// Entry is one recorded admin action.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	Detail    string    `json:"detail"`
	IPAddress string    `json:"ip_address"`
}

// Action names used across the handlers.
const (
	ActionLogin              = "login"
	ActionLogout             = "logout"
	ActionDeleteFeedback     = "delete_feedback"
	ActionCreateAnnouncement = "create_announcement"
	ActionUpdateAnnouncement = "update_announcement"
	ActionDeleteAnnouncement = "delete_announcement"
)

// Record writes one entry. Failures are logged, never surfaced; an audit
// problem must not break the admin action it describes.
func Record(ctx context.Context, action, target, detail, ip string) {
	if database.PostgresDB == nil {
		return
	}
	_, err := database.PostgresDB.ExecContext(ctx,
		`INSERT INTO admin_audit (action, target, detail, ip_address) VALUES ($1, $2, $3, $4)`,
		action, target, detail, ip)
	if err != nil {
		log.Printf("⚠️ audit write failed (%s %s): %v", action, target, err)
	}
}

// List returns the most recent entries, newest first.
func List(ctx context.Context, limit int) ([]Entry, error) {
	if database.PostgresDB == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := database.PostgresDB.QueryContext(ctx,
		`SELECT id, created_at, action, COALESCE(target, ''), COALESCE(detail, ''), COALESCE(ip_address, '')
		 FROM admin_audit ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Action, &e.Target, &e.Detail, &e.IPAddress); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
