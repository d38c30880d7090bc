package graphql

import (
	"context"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/syssam/chatql"
)

// Error codes surfaced in the "code" response extension, so clients can
// branch on the class of failure without parsing messages.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeEncodingFailed  = "ENCODING_FAILED"
	CodeFetchFailed     = "FETCH_FAILED"
)

// ErrorPresenter classifies chatql errors into response extension codes.
// Errors outside the chatql taxonomy pass through the default presenter
// untouched.
//
//	srv.SetErrorPresenter(graphql.ErrorPresenter)
func ErrorPresenter(ctx context.Context, err error) *gqlerror.Error {
	presented := graphql.DefaultErrorPresenter(ctx, err)
	code := classify(err)
	if code == "" {
		return presented
	}
	if presented.Extensions == nil {
		presented.Extensions = make(map[string]any, 1)
	}
	presented.Extensions["code"] = code
	return presented
}

func classify(err error) string {
	switch {
	case chatql.IsNotFound(err):
		return CodeNotFound
	case chatql.IsInvalidArgument(err):
		return CodeInvalidArgument
	case chatql.IsEncodingError(err):
		return CodeEncodingFailed
	case chatql.IsFetchError(err):
		return CodeFetchFailed
	default:
		return ""
	}
}
