// Package chatql provides the request-scoped data access layer of a GraphQL
// chat backend: batch loading with deduplication, per-operation result
// caching, and cursor-based pagination over message history.
//
// The module is organized as follows:
//
//   - chatql (this package): the shared error taxonomy. Every error produced
//     by the module can be classified with errors.Is/errors.As against the
//     sentinels and types defined here.
//   - loader: request keys, the per-operation Scope cache, and the batched
//     and sequential load paths used by resolvers.
//   - chat: the message domain. Entities, the Store over a dialect.Driver,
//     the pagination engine, and the client-side window controller.
//   - dialect, dialect/sql: the database boundary. A thin driver over
//     database/sql that executes statements and returns rows, nothing more.
//   - contrib/graphql: gqlgen integration. One loader Scope per GraphQL
//     operation, plus error presentation and Relay-style connections.
//
// # Scopes
//
// All caching in chatql is scoped to a single logical operation, typically
// one incoming GraphQL request. A Scope is created when the operation starts,
// attached to the context, and discarded when the operation ends. There is no
// process-wide cache: two operations never observe each other's results.
//
//	scope := loader.NewScope()
//	defer scope.Close()
//	ctx = loader.WithScope(ctx, scope)
//
// Within one scope, any number of concurrent loads for the same key collapse
// into exactly one fetch against the store.
//
// # Pagination
//
// Message history is paginated newest-first with opaque cursors. A cursor
// pairs the creation timestamp with the row id, so two messages created in
// the same millisecond still have a total order and pages never skip or
// repeat rows.
//
//	page, err := store.MessagePage(ctx, chatID, chat.Window{Limit: 50})
//	next := chat.Window{After: page.Cursor, Limit: 50}
package chatql
