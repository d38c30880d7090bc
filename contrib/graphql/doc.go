// Package graphql glues chatql into a gqlgen server: a handler extension
// that opens one loader scope per GraphQL operation, an error presenter that
// maps the chatql error taxonomy onto response extensions, and Relay-style
// connection types built from chat pages.
package graphql
