package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-assistant/internal/common/logger"
	"workspace-assistant/internal/models"
)

func newStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db, logger.NewNoOpLogger()), mock
}

func TestChannels_BatchLookup(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery("SELECT id, name").
		WithArgs("ws-1", pq.Array([]string{"ch-1", "ch-2"})).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow("ch-1", "general").
			AddRow("ch-2", "random"))

	channels, err := store.Channels(context.Background(), "ws-1", []string{"ch-1", "ch-2"})

	assert.NoError(t, err)
	assert.Equal(t, []models.ChannelInfo{
		{ID: "ch-1", Name: "general"},
		{ID: "ch-2", Name: "random"},
	}, channels)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChannels_EmptyIDsSkipsQuery(t *testing.T) {
	store, mock := newStore(t)

	channels, err := store.Channels(context.Background(), "ws-1", nil)

	assert.NoError(t, err)
	assert.Nil(t, channels)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChannels_QueryError(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery("SELECT id, name").
		WillReturnError(errors.New("connection reset"))

	_, err := store.Channels(context.Background(), "ws-1", []string{"ch-1"})
	assert.Error(t, err)
}

func TestUsers_BatchLookup(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery("SELECT id, username").
		WithArgs(pq.Array([]string{"u-1", "u-2"})).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "full_name", "email", "avatar_url"}).
			AddRow("u-1", "alice", "Alice Smith", "alice@example.com", "").
			AddRow("u-2", "bob", "", "", ""))

	users, err := store.Users(context.Background(), []string{"u-1", "u-2"})

	assert.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, models.UserInfo{ID: "u-1", Username: "alice", FullName: "Alice Smith", Email: "alice@example.com"}, users[0])
	assert.Equal(t, models.UserInfo{ID: "u-2", Username: "bob"}, users[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_EmptyIDsSkipsQuery(t *testing.T) {
	store, mock := newStore(t)

	users, err := store.Users(context.Background(), nil)

	assert.NoError(t, err)
	assert.Nil(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_ScanError(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery("SELECT id, username").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-1"))

	_, err := store.Users(context.Background(), []string{"u-1"})
	assert.Error(t, err)
}
