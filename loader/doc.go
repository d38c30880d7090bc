// Package loader turns the many logical reads of one operation into a
// minimal, correctly ordered set of physical reads.
//
// Three pieces cooperate:
//
//   - Request/Encode derive a canonical Key from a read request, either
//     statement-shaped (SQL text plus ordered parameters) or entity-shaped
//     (kind plus id).
//   - Scope owns the per-operation cache of pending-or-resolved results.
//     One scope per operation, discarded with it.
//   - Load and Loader are the two execution policies over that cache:
//     sequential (each distinct key fetched immediately and independently,
//     in first-request order) and batched (keys collected within a short
//     window and fetched in one multi-key call).
//
// # Wiring a scope
//
// The caller that owns the operation opens the scope; everything below it
// just uses the context:
//
//	scope := loader.NewScope()
//	defer scope.Close()
//	ctx = loader.WithScope(ctx, scope)
//
// For gqlgen servers, contrib/graphql does this once per GraphQL operation.
//
// # Sequential loads
//
//	key, err := loader.Encode(loader.Query{
//	    Statement: "SELECT id, title FROM chats WHERE id = ?",
//	    Args:      []any{chatID},
//	})
//	...
//	c, err := loader.Load(ctx, key, func(ctx context.Context) (*Chat, error) {
//	    // runs at most once per scope, no matter how many resolvers ask
//	})
//
// # Batched loads
//
//	users := loader.NewLoader("chat.user", func(ctx context.Context, ids []uuid.UUID) ([]*User, []error) {
//	    rows, err := queryUsers(ctx, ids)
//	    if err != nil {
//	        return nil, []error{err}
//	    }
//	    return loader.OrderByKeys("chat.user", ids, rows, func(u *User) uuid.UUID { return u.ID })
//	})
//	u, err := users.Load(ctx, authorID)
package loader
