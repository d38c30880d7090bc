package graphql

import (
	"github.com/syssam/chatql/chat"
)

// PageInfo is the Relay pagination descriptor.
type PageInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
}

// MessageEdge pairs a message with the cursor that resumes right after it.
type MessageEdge struct {
	Node   *chat.Message `json:"node"`
	Cursor string        `json:"cursor"`
}

// MessageConnection is the Relay connection shape for one fetched page of a
// chat's history, newest first.
type MessageConnection struct {
	Edges    []*MessageEdge `json:"edges"`
	PageInfo PageInfo       `json:"pageInfo"`
}

// MessageConnectionFromPage converts a store page into a connection. Every
// edge carries its own cursor, so clients may resume from any row of the
// page rather than only its end. The history is walked newest to oldest,
// which maps page.HasMore onto hasNextPage; hasPreviousPage reports whether
// the walk started somewhere below the newest message.
func MessageConnectionFromPage(page *chat.Page, after *chat.Cursor) *MessageConnection {
	conn := &MessageConnection{
		Edges: make([]*MessageEdge, 0, len(page.Items)),
		PageInfo: PageInfo{
			HasNextPage:     page.HasMore,
			HasPreviousPage: after != nil,
		},
	}
	for _, m := range page.Items {
		c := chat.Cursor{ChatID: m.ChatID, CreatedAt: m.CreatedAt, ID: m.ID}
		conn.Edges = append(conn.Edges, &MessageEdge{Node: m, Cursor: c.String()})
	}
	if n := len(conn.Edges); n > 0 {
		conn.PageInfo.StartCursor = &conn.Edges[0].Cursor
		conn.PageInfo.EndCursor = &conn.Edges[n-1].Cursor
	}
	return conn
}
