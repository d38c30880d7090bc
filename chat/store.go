package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/chatql"
	"github.com/syssam/chatql/dialect"
	sql "github.com/syssam/chatql/dialect/sql"
	"github.com/syssam/chatql/loader"
)

// Loader kinds, namespacing entity keys in the scope cache.
const (
	kindMessage = "chat.message"
	kindUser    = "chat.user"
	kindChat    = "chat.chat"
)

// Store reads and writes the chat relations through a dialect.Driver.
// Reads issued with a loader scope on the context are deduplicated and
// cached for the lifetime of that scope; writes always go straight to the
// store. The Store itself holds no state besides the driver, so one Store
// serves any number of concurrent operations.
type Store struct {
	drv   dialect.Driver
	users *loader.Loader[uuid.UUID, *User]
}

// NewStore returns a store over the given driver.
func NewStore(drv dialect.Driver, opts ...loader.Option) *Store {
	s := &Store{drv: drv}
	s.users = loader.NewLoader(kindUser, s.usersByID, opts...)
	return s
}

// arg returns the placeholder for the i-th statement argument (1-based) in
// the store's dialect.
func (s *Store) arg(i int) string {
	if s.drv.Dialect() == dialect.Postgres {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

// loadScoped runs fetch through the scope cache when one is attached, and
// directly otherwise. A store without a scope still works; it just does not
// deduplicate.
func loadScoped[V any](ctx context.Context, key loader.Key, fetch loader.FetchFunc[V]) (V, error) {
	if _, ok := loader.FromContext(ctx); !ok {
		return fetch(ctx)
	}
	return loader.Load(ctx, key, fetch)
}

func messageKey(id int64) (loader.Key, error) {
	return loader.Encode(loader.Entity{Kind: kindMessage, ID: id})
}

// ChatByID returns the chat with the given id. Within one scope, any number
// of concurrent resolvers asking for the same chat trigger exactly one
// query.
func (s *Store) ChatByID(ctx context.Context, id uuid.UUID) (*Chat, error) {
	stmt := fmt.Sprintf("SELECT id, title, created_at FROM chats WHERE id = %s", s.arg(1))
	key, err := loader.Encode(loader.Query{Statement: stmt, Args: []any{id.String()}})
	if err != nil {
		return nil, err
	}
	return loadScoped(ctx, key, func(ctx context.Context) (*Chat, error) {
		rows := &sql.Rows{}
		if err := s.drv.Query(ctx, stmt, []any{id.String()}, rows); err != nil {
			return nil, chatql.NewFetchError(kindChat, err)
		}
		defer rows.Close()
		if !rows.Next() {
			return nil, chatql.NewNotFoundErrorWithID("chat", id)
		}
		var (
			c     Chat
			rawID string
		)
		if err := rows.Scan(&rawID, &c.Title, &c.CreatedAt); err != nil {
			return nil, chatql.NewFetchError(kindChat, err)
		}
		if c.ID, err = uuid.Parse(rawID); err != nil {
			return nil, chatql.NewFetchError(kindChat, err)
		}
		return &c, rows.Err()
	})
}

// MessageByID returns a single message. Pages fetched in the same scope
// prime these keys, so resolving a message that was already delivered by a
// page costs no query.
func (s *Store) MessageByID(ctx context.Context, id int64) (*Message, error) {
	key, err := messageKey(id)
	if err != nil {
		return nil, err
	}
	stmt := fmt.Sprintf("SELECT id, chat_id, author_id, body, created_at FROM messages WHERE id = %s", s.arg(1))
	return loadScoped(ctx, key, func(ctx context.Context) (*Message, error) {
		rows := &sql.Rows{}
		if err := s.drv.Query(ctx, stmt, []any{id}, rows); err != nil {
			return nil, chatql.NewFetchError(kindMessage, err)
		}
		defer rows.Close()
		if !rows.Next() {
			return nil, chatql.NewNotFoundErrorWithID("message", id)
		}
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		return m, rows.Err()
	})
}

// UserByID returns a message author, batched: all user ids requested within
// one collection window of the same scope travel in a single IN query.
func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if _, ok := loader.FromContext(ctx); !ok {
		users, errs := s.usersByID(ctx, []uuid.UUID{id})
		if errs[0] != nil {
			return nil, errs[0]
		}
		return users[0], nil
	}
	return s.users.Load(ctx, id)
}

// UsersByID is the multi-key variant of UserByID. Results are id-aligned.
func (s *Store) UsersByID(ctx context.Context, ids []uuid.UUID) ([]*User, []error) {
	if _, ok := loader.FromContext(ctx); !ok {
		return s.usersByID(ctx, ids)
	}
	return s.users.LoadMany(ctx, ids)
}

// usersByID is the batch function behind the user loader.
func (s *Store) usersByID(ctx context.Context, ids []uuid.UUID) ([]*User, []error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var (
		b    strings.Builder
		args = make([]any, 0, len(ids))
	)
	b.WriteString("SELECT id, name FROM users WHERE id IN (")
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.arg(i + 1))
		args = append(args, id.String())
	}
	b.WriteString(")")
	rows := &sql.Rows{}
	if err := s.drv.Query(ctx, b.String(), args, rows); err != nil {
		return nil, []error{chatql.NewFetchError(kindUser, err)}
	}
	defer rows.Close()
	var users []*User
	for rows.Next() {
		var (
			u     User
			rawID string
		)
		if err := rows.Scan(&rawID, &u.Name); err != nil {
			return nil, []error{chatql.NewFetchError(kindUser, err)}
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, []error{chatql.NewFetchError(kindUser, err)}
		}
		u.ID = id
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, []error{chatql.NewFetchError(kindUser, err)}
	}
	return loader.OrderByKeys(kindUser, ids, users, func(u *User) uuid.UUID { return u.ID })
}

// CreateMessage appends a message to a chat. Writes never touch the scope
// cache; the freshly written row is primed into it instead, so readers in
// the same operation observe their own write.
func (s *Store) CreateMessage(ctx context.Context, chatID, authorID uuid.UUID, body string, at time.Time) (*Message, error) {
	if body == "" {
		return nil, chatql.NewInvalidArgumentError("body", "must not be empty")
	}
	m := &Message{
		ChatID:    chatID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: at.UnixMilli(),
	}
	args := []any{chatID.String(), authorID.String(), body, m.CreatedAt}
	switch s.drv.Dialect() {
	case dialect.Postgres:
		stmt := "INSERT INTO messages (chat_id, author_id, body, created_at) VALUES ($1, $2, $3, $4) RETURNING id"
		rows := &sql.Rows{}
		if err := s.drv.Query(ctx, stmt, args, rows); err != nil {
			return nil, chatql.NewFetchError(kindMessage, err)
		}
		defer rows.Close()
		if !rows.Next() {
			err := rows.Err()
			if err == nil {
				err = errors.New("no id returned")
			}
			return nil, chatql.NewFetchError(kindMessage, err)
		}
		if err := rows.Scan(&m.ID); err != nil {
			return nil, chatql.NewFetchError(kindMessage, err)
		}
	default:
		stmt := "INSERT INTO messages (chat_id, author_id, body, created_at) VALUES (?, ?, ?, ?)"
		var res sql.Result
		if err := s.drv.Exec(ctx, stmt, args, &res); err != nil {
			return nil, chatql.NewFetchError(kindMessage, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, chatql.NewFetchError(kindMessage, err)
		}
		m.ID = id
	}
	if scope, ok := loader.FromContext(ctx); ok {
		if key, err := messageKey(m.ID); err == nil {
			scope.Prime(key, m)
		}
	}
	return m, nil
}

// scanMessage reads one message row positioned by rows.Next.
func scanMessage(rows *sql.Rows) (*Message, error) {
	var (
		m         Message
		rawChat   string
		rawAuthor string
	)
	if err := rows.Scan(&m.ID, &rawChat, &rawAuthor, &m.Body, &m.CreatedAt); err != nil {
		return nil, chatql.NewFetchError(kindMessage, err)
	}
	chatID, err := uuid.Parse(rawChat)
	if err != nil {
		return nil, chatql.NewFetchError(kindMessage, err)
	}
	authorID, err := uuid.Parse(rawAuthor)
	if err != nil {
		return nil, chatql.NewFetchError(kindMessage, err)
	}
	m.ChatID, m.AuthorID = chatID, authorID
	return &m, nil
}
