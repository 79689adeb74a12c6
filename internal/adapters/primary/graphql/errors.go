package graphql

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/domain"
)

const (
	CodeBadUserInput = "BAD_USER_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL"
)

// gqlError porte le code dans "extensions" de la réponse GraphQL.
type gqlError struct {
	message string
	code    string
}

func (e *gqlError) Error() string { return e.message }

func (e *gqlError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

// mapDomainError traduit les erreurs du domaine ; tout le reste (base, génération d'id)
// devient une erreur opaque, loggée ici une seule fois.
func mapDomainError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return &gqlError{message: err.Error(), code: CodeBadUserInput}
	case errors.Is(err, domain.ErrNotFound):
		return &gqlError{message: err.Error(), code: CodeNotFound}
	default:
		// Ne pas fuiter les détails techniques
		slog.ErrorContext(ctx, "resolver failed", "op", op, "error", err)
		return &gqlError{message: "internal server error", code: CodeInternal}
	}
}
