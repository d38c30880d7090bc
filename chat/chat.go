package chat

import (
	"github.com/google/uuid"
)

// Message is one chat message. Messages are ordered newest-first by
// (CreatedAt, ID): CreatedAt carries the wall-clock order and the
// auto-incrementing row ID breaks ties, so the order is total even when two
// messages land in the same millisecond.
type Message struct {
	ID        int64     `json:"id"`
	ChatID    uuid.UUID `json:"chatId"`
	AuthorID  uuid.UUID `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt int64     `json:"createdAt"` // unix milliseconds
}

// Chat is one conversation, the partition messages are paginated within.
type Chat struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt int64     `json:"createdAt"`
}

// User is a message author.
type User struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
