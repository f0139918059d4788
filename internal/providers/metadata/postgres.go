// internal/providers/metadata/postgres.go
package metadata

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"workspace-assistant/internal/common/logger"
	"workspace-assistant/internal/models"
)

// PostgresStore resolves channel and user metadata from the relational
// source of truth. Lookups are batched with ANY() so one round trip covers
// all ids from a retrieval result.
type PostgresStore struct {
	db  *sql.DB
	log logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{db: db, log: log}
}

const channelsQuery = `
SELECT id, name
FROM channels
WHERE workspace_id = $1 AND id = ANY($2)`

func (s *PostgresStore) Channels(ctx context.Context, workspaceID string, ids []string) ([]models.ChannelInfo, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, channelsQuery, workspaceID, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	var out []models.ChannelInfo
	for rows.Next() {
		var ch models.ChannelInfo
		if err := rows.Scan(&ch.ID, &ch.Name); err != nil {
			return nil, fmt.Errorf("scan channel row: %w", err)
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channel rows: %w", err)
	}
	return out, nil
}

const usersQuery = `
SELECT id, username, COALESCE(full_name, ''), COALESCE(email, ''), COALESCE(avatar_url, '')
FROM users
WHERE id = ANY($1)`

func (s *PostgresStore) Users(ctx context.Context, ids []string) ([]models.UserInfo, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, usersQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []models.UserInfo
	for rows.Next() {
		var u models.UserInfo
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return out, nil
}
