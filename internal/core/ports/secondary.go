package ports

import (
	"context"
	"time"

	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/domain"
)

// --- CRITÈRES VALIDÉS (Service -> Repository) ---
// Tous les champs "structurels" sont déjà des valeurs des ensembles fermés.

type EntityCriteria struct {
	Labels []domain.EntityLabel // vide = tous
	ID     *string
	Name   *string
	Uname  *string
	Email  *string
	Active *bool
	Window domain.TimeWindow // sur e.creationDateTime
}

type RelatedCriteria struct {
	PrimaryID         string
	RelationshipTypes []domain.RelationshipType // vide = tous les types entre Entities
	DescriptorPattern *string
	Direction         domain.Direction
}

type PostCriteria struct {
	AuthorID string
	Types    []domain.PostType
	Window   domain.TimeWindow // sur r.creationDateTime (arête AUTHORED)
	Limit    int               // 0 = pas de limite
}

type NewTextPost struct {
	ID                   string
	AuthorID             string
	CreationDateTime     time.Time
	ActivationDateTime   time.Time
	DeactivationDateTime *time.Time
	Visibility           []domain.Visibility
	Content              string
}

type RelationshipSpec struct {
	SubjectID  string
	ObjectID   string
	Type       domain.RelationshipType
	Descriptor *string
}

// --- PERSISTANCE (Neo4j) ---

// GraphRepository est le port Driven (Database Neo4j).
// Chaque méthode ouvre et ferme sa propre session.
type GraphRepository interface {
	// EnsureSchema crée les contraintes d'unicité (Idempotent)
	EnsureSchema(ctx context.Context) error

	FindEntities(ctx context.Context, c EntityCriteria) ([]domain.Entity, error)
	FindRelatedEntities(ctx context.Context, c RelatedCriteria) ([]domain.RelatedEntity, error)
	FindPostsByAuthor(ctx context.Context, c PostCriteria) ([]domain.Post, error)
	PostExists(ctx context.Context, postID string) (bool, error)

	// CreateTextPost renvoie domain.ErrNotFound si l'auteur n'existe pas (aucun noeud créé).
	CreateTextPost(ctx context.Context, p NewTextPost) (*domain.Post, error)
	// MergeRelationship est idempotent ; domain.ErrNotFound si une extrémité manque.
	MergeRelationship(ctx context.Context, spec RelationshipSpec) (*domain.RelationshipPath, error)
}

// --- MESSAGERIE (BROKER) ---

// EventPublisher notifie les autres services (Feed, Notif) après une écriture réussie.
type EventPublisher interface {
	PublishPostAuthored(ctx context.Context, post *domain.Post) error
	PublishRelationshipEstablished(ctx context.Context, path *domain.RelationshipPath) error
}
