package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/domain"
)

// DefaultIDAttempts borne le nombre de tirages d'un id de post.
const DefaultIDAttempts = 5

func newUUID() string {
	return uuid.New().String()
}

// uniqueID tire au plus `attempts` candidats et renvoie le premier que `exists` déclare libre.
// Une erreur de `exists` interrompt immédiatement la boucle.
// La vérification n'est pas atomique avec la création : la contrainte d'unicité
// posée par EnsureSchema reste le dernier rempart.
func uniqueID(
	ctx context.Context,
	attempts int,
	generate func() string,
	exists func(ctx context.Context, id string) (bool, error),
) (string, error) {
	if attempts <= 0 {
		attempts = DefaultIDAttempts
	}
	for i := 1; i <= attempts; i++ {
		candidate := generate()
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check post id: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		slog.DebugContext(ctx, "post id collision", "attempt", i, "max_attempts", attempts)
	}
	return "", fmt.Errorf("%w after %d attempts", domain.ErrIDGenerationExhausted, attempts)
}
