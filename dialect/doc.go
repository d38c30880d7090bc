// Package dialect provides the database boundary for chatql.
//
// The package defines the interfaces and types used for database-specific
// operations, allowing chatql to run against multiple backends including
// PostgreSQL, MySQL, and SQLite.
//
// # Supported Dialects
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Driver Interface
//
// Driver is the only thing chatql asks of a database: execute a statement
// with ordered parameters and return the result or rows. Everything above
// this boundary (key derivation, scoped caching, pagination) treats the
// driver as an opaque query executor with no side effects on the read path.
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// Write statements go through Exec or a transaction, never through the
// scoped cache.
//
// # Transaction Interface
//
// The Tx interface extends ExecQuerier with Commit and Rollback. A
// transaction is scoped to a single connection, which gives multi-statement
// sequences the strict execution ordering that read-after-write requires.
//
// # Usage
//
// Opening a database connection:
//
//	import (
//	    "github.com/syssam/chatql/dialect"
//	    "github.com/syssam/chatql/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.SQLite, "file:chat.db?_pragma=foreign_keys(1)")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// Wrap a driver with Debug to log every outgoing statement:
//
//	drv = dialect.Debug(drv)
package dialect
