package chat

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/syssam/chatql"
	sql "github.com/syssam/chatql/dialect/sql"
	"github.com/syssam/chatql/loader"
)

// Window describes the next page to fetch: up to Limit messages strictly
// older than After. A nil After starts from the most recent message.
type Window struct {
	After *Cursor
	Limit int
}

// Page is one fetched window of messages, newest first. Cursor points at
// the oldest item of the page and is nil when the page is empty. HasMore
// reports whether at least one older message exists beyond this page.
type Page struct {
	Items   []*Message `json:"items"`
	Cursor  *Cursor    `json:"cursor"`
	HasMore bool       `json:"hasMore"`
}

const messageColumns = "id, chat_id, author_id, body, created_at"

// MessagePage fetches one window of a chat's history. It issues exactly two
// statements: a bounded, ordered query for the page itself and, when the
// page is non-empty, a single-row existence probe for anything older - never
// a count or a re-scan.
//
// Each call is independent and idempotent given the same arguments, so it is
// safe to retry on the read path. When a loader scope is attached, the
// returned messages are primed into it by id, making follow-up MessageByID
// resolutions free.
func (s *Store) MessagePage(ctx context.Context, chatID uuid.UUID, w Window) (*Page, error) {
	if w.Limit <= 0 {
		return nil, chatql.NewInvalidArgumentError("limit", "must be positive")
	}
	if w.After != nil && w.After.ChatID != chatID {
		return nil, chatql.NewInvalidArgumentError("after", "cursor belongs to another chat")
	}

	var (
		b    strings.Builder
		args = []any{chatID.String()}
	)
	b.WriteString("SELECT ")
	b.WriteString(messageColumns)
	b.WriteString(" FROM messages WHERE chat_id = ")
	b.WriteString(s.arg(1))
	if w.After != nil {
		writeOlderThan(&b, s, 2)
		args = append(args, w.After.CreatedAt, w.After.CreatedAt, w.After.ID)
	}
	b.WriteString(" ORDER BY created_at DESC, id DESC LIMIT ")
	b.WriteString(s.arg(len(args) + 1))
	args = append(args, w.Limit)

	rows := &sql.Rows{}
	if err := s.drv.Query(ctx, b.String(), args, rows); err != nil {
		return nil, chatql.NewFetchError(kindMessage, err)
	}
	defer rows.Close()
	var items []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, chatql.NewFetchError(kindMessage, err)
	}

	page := &Page{Items: items}
	if len(items) == 0 {
		// The window points past the oldest row: nothing to return and
		// nothing older to probe for.
		return page, nil
	}

	last := items[len(items)-1]
	page.Cursor = &Cursor{ChatID: chatID, CreatedAt: last.CreatedAt, ID: last.ID}
	hasMore, err := s.olderExists(ctx, chatID, page.Cursor)
	if err != nil {
		return nil, err
	}
	page.HasMore = hasMore

	if scope, ok := loader.FromContext(ctx); ok {
		for _, m := range items {
			if key, err := messageKey(m.ID); err == nil {
				scope.Prime(key, m)
			}
		}
	}
	return page, nil
}

// olderExists probes for at least one message strictly older than the
// cursor. LIMIT 1 keeps it a bounded existence check.
func (s *Store) olderExists(ctx context.Context, chatID uuid.UUID, c *Cursor) (bool, error) {
	var b strings.Builder
	b.WriteString("SELECT 1 FROM messages WHERE chat_id = ")
	b.WriteString(s.arg(1))
	writeOlderThan(&b, s, 2)
	b.WriteString(" LIMIT 1")

	rows := &sql.Rows{}
	args := []any{chatID.String(), c.CreatedAt, c.CreatedAt, c.ID}
	if err := s.drv.Query(ctx, b.String(), args, rows); err != nil {
		return false, chatql.NewFetchError(kindMessage, err)
	}
	defer rows.Close()
	return rows.Next(), rows.Err()
}

// writeOlderThan appends the strictly-older-than-cursor predicate. The
// expanded form works on every supported dialect; row-value comparison does
// not.
func writeOlderThan(b *strings.Builder, s *Store, argIndex int) {
	b.WriteString(" AND (created_at < ")
	b.WriteString(s.arg(argIndex))
	b.WriteString(" OR (created_at = ")
	b.WriteString(s.arg(argIndex + 1))
	b.WriteString(" AND id < ")
	b.WriteString(s.arg(argIndex + 2))
	b.WriteString("))")
}
