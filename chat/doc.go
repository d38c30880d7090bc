// Package chat implements the chat domain on top of a dialect.Driver:
// entities (Chat, Message, User), a Store whose reads go through the
// request-scoped loader cache, cursor-based backwards pagination over a
// chat's message history, and a Controller that tracks a client's position
// across pages.
//
// Pagination orders messages newest first by (created_at, id) and hands out
// opaque cursors. A cursor is bound to the chat it was issued for and a page
// fetch with someone else's cursor is rejected before any query runs.
package chat
