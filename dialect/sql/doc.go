// Package sql provides the database/sql implementation of the dialect
// interfaces.
//
// The driver executes raw statements with ordered parameters and hands the
// rows back to the caller. It intentionally carries no query builder: the
// chat store composes its statements by hand and only needs a uniform way to
// run them against PostgreSQL, MySQL, or SQLite.
//
// # Opening a Driver
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// An existing *sql.DB can be wrapped as well, which is how the tests attach
// a sqlmock connection:
//
//	drv := sql.OpenDB(dialect.Postgres, db)
//
// # Executing Statements
//
// Query fills a *Rows with the result set; Exec optionally fills a *Result:
//
//	rows := &sql.Rows{}
//	err := drv.Query(ctx, "SELECT id, body FROM messages WHERE chat_id = $1", []any{id}, rows)
//
//	var res sql.Result
//	err := drv.Exec(ctx, "INSERT INTO messages (body) VALUES ($1)", []any{body}, &res)
//
// # Transactions
//
// Tx begins a transaction bound to a single connection, so statements inside
// it execute in the exact order they are issued:
//
//	tx, err := drv.Tx(ctx)
//	...
//	err = tx.Commit()
package sql
