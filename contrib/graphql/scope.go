package graphql

import (
	"context"

	"github.com/99designs/gqlgen/graphql"

	"github.com/syssam/chatql/loader"
)

// ScopeInjector is a gqlgen handler extension that attaches a fresh loader
// scope to every operation and tears it down when the response is written.
// All resolvers of one operation therefore share one cache, and nothing
// leaks into the next request.
//
//	srv := handler.New(es)
//	srv.Use(graphql.ScopeInjector{})
type ScopeInjector struct{}

var _ interface {
	graphql.HandlerExtension
	graphql.ResponseInterceptor
} = ScopeInjector{}

// ExtensionName implements graphql.HandlerExtension.
func (ScopeInjector) ExtensionName() string {
	return "ChatQLScopeInjector"
}

// Validate implements graphql.HandlerExtension.
func (ScopeInjector) Validate(graphql.ExecutableSchema) error {
	return nil
}

// InterceptResponse opens a scope for the operation and closes it after the
// response handler returns. For subscriptions this runs once per pushed
// response, so every event resolves against fresh data.
func (ScopeInjector) InterceptResponse(ctx context.Context, next graphql.ResponseHandler) *graphql.Response {
	scope := loader.NewScope()
	defer scope.Close()
	return next(loader.WithScope(ctx, scope))
}
