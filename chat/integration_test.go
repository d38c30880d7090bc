package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/chatql"
	"github.com/syssam/chatql/chat"
	"github.com/syssam/chatql/dialect"
	"github.com/syssam/chatql/dialect/sql"
	"github.com/syssam/chatql/loader"
)

var testSchema = []string{
	`CREATE TABLE chats (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id TEXT NOT NULL,
		author_id TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX messages_chat_created ON messages (chat_id, created_at DESC, id DESC)`,
}

func openSQLite(t *testing.T) *sql.Driver {
	t.Helper()
	drv, err := sql.Open(dialect.SQLite, ":memory:")
	require.NoError(t, err)
	// One in-memory database shared by one connection.
	drv.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { drv.Close() })
	for _, stmt := range testSchema {
		require.NoError(t, drv.Exec(context.Background(), stmt, []any{}, nil))
	}
	return drv
}

func seedChat(t *testing.T, drv *sql.Driver, id uuid.UUID, title string) {
	t.Helper()
	stmt := "INSERT INTO chats (id, title, created_at) VALUES (?, ?, ?)"
	if drv.Dialect() == dialect.Postgres {
		stmt = "INSERT INTO chats (id, title, created_at) VALUES ($1, $2, $3)"
	}
	err := drv.Exec(context.Background(), stmt,
		[]any{id.String(), title, time.Now().UnixMilli()}, nil)
	require.NoError(t, err)
}

func seedUser(t *testing.T, drv *sql.Driver, id uuid.UUID, name string) {
	t.Helper()
	stmt := "INSERT INTO users (id, name) VALUES (?, ?)"
	if drv.Dialect() == dialect.Postgres {
		stmt = "INSERT INTO users (id, name) VALUES ($1, $2)"
	}
	err := drv.Exec(context.Background(), stmt, []any{id.String(), name}, nil)
	require.NoError(t, err)
}

func TestSQLiteHistoryWalk(t *testing.T) {
	drv := openSQLite(t)
	store := chat.NewStore(drv)
	ctx := context.Background()

	chatID := uuid.New()
	author := uuid.New()
	seedChat(t, drv, chatID, "general")
	seedUser(t, drv, author, "ada")

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	var written []*chat.Message
	for i := 0; i < 7; i++ {
		m, err := store.CreateMessage(ctx, chatID, author, "hello", base.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		written = append(written, m)
	}

	// Walk the history backwards in pages of three and reassemble it.
	var history []*chat.Message
	w := chat.Window{Limit: 3}
	pages := 0
	for {
		p, err := store.MessagePage(ctx, chatID, w)
		require.NoError(t, err)
		history = chat.MergeOlder(history, p)
		pages++
		if !p.HasMore {
			break
		}
		w.After = p.Cursor
	}
	assert.Equal(t, 3, pages)
	require.Len(t, history, len(written))
	for i, m := range history {
		// Newest first.
		assert.Equal(t, written[len(written)-1-i].ID, m.ID)
		assert.Equal(t, chatID, m.ChatID)
	}

	t.Run("cursor_survives_the_wire", func(t *testing.T) {
		p, err := store.MessagePage(ctx, chatID, chat.Window{Limit: 3})
		require.NoError(t, err)
		dec, err := chat.DecodeCursor(p.Cursor.String())
		require.NoError(t, err)
		next, err := store.MessagePage(ctx, chatID, chat.Window{After: &dec, Limit: 3})
		require.NoError(t, err)
		require.NotEmpty(t, next.Items)
		assert.True(t, next.Items[0].CreatedAt <= p.Items[len(p.Items)-1].CreatedAt)
	})

	t.Run("other_chat_is_invisible", func(t *testing.T) {
		other := uuid.New()
		seedChat(t, drv, other, "random")
		p, err := store.MessagePage(ctx, other, chat.Window{Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, p.Items)
		assert.False(t, p.HasMore)
	})
}

func TestSQLiteScopedReads(t *testing.T) {
	drv := openSQLite(t)
	store := chat.NewStore(drv, loader.WithWait(5*time.Millisecond))

	chatID := uuid.New()
	seedChat(t, drv, chatID, "general")
	authors := make([]uuid.UUID, 3)
	for i := range authors {
		authors[i] = uuid.New()
		seedUser(t, drv, authors[i], "user")
	}

	scope := loader.NewScope()
	defer scope.Close()
	ctx := loader.WithScope(context.Background(), scope)

	c, err := store.ChatByID(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, "general", c.Title)

	users, errs := store.UsersByID(ctx, authors)
	require.Len(t, users, 3)
	for i, err := range errs {
		require.NoError(t, err)
		assert.Equal(t, authors[i], users[i].ID)
	}

	_, err = store.UserByID(ctx, uuid.New())
	assert.True(t, chatql.IsNotFound(err))

	t.Run("own_write_visible", func(t *testing.T) {
		m, err := store.CreateMessage(ctx, chatID, authors[0], "hi", time.Now())
		require.NoError(t, err)
		got, err := store.MessageByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, m.Body, got.Body)
	})
}
