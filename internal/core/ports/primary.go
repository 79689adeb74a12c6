package ports

import (
	"context"
	"time"

	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/domain"
)

// --- INPUTS (Command / Query Pattern) ---
// Les valeurs arrivent "brutes" depuis la couche GraphQL : les ensembles fermés
// (labels, types, direction, visibilité) sont validés par le service.

type EntityLookupQuery struct {
	Labels []string // vide = tous les labels d'Entity
	ID     *string
	Name   *string
	Uname  *string // Person uniquement
	Email  *string // Person uniquement
	Active *bool
	Before *time.Time
	After  *time.Time
}

type RelatedEntitiesQuery struct {
	PrimaryID         string
	RelationshipTypes []string
	DescriptorSearch  *string // expression régulière sur r.descriptor
	Direction         *string // nil = BIDIRECTIONAL
}

type PostsByAuthorQuery struct {
	AuthorID string
	Types    []string
	Before   *time.Time
	After    *time.Time
	Limit    *int
}

type AuthorTextPostCmd struct {
	AuthorID             string // renseigné par l'adapter (argument ou identité de l'appelant)
	Content              string
	Visibility           []string
	ActivationDateTime   *time.Time // nil -> creationDateTime
	DeactivationDateTime *time.Time
}

type EstablishRelationshipCmd struct {
	SubjectID        string
	ObjectID         string
	RelationshipType string
	Descriptor       *string
}

// --- PORT PRIMAIRE (Driving) ---

// GraphService est l'API exposée à la couche GraphQL.
// Pluriel vide = slice vide ; singulier absent = nil sans erreur.
type GraphService interface {
	LookupPeople(ctx context.Context, q EntityLookupQuery) ([]domain.Entity, error)
	LookupEntities(ctx context.Context, q EntityLookupQuery) ([]domain.Entity, error)
	GetEntity(ctx context.Context, id string) (*domain.Entity, error)
	LookupRelatedEntities(ctx context.Context, q RelatedEntitiesQuery) ([]domain.RelatedEntity, error)
	PostsByAuthor(ctx context.Context, q PostsByAuthorQuery) ([]domain.Post, error)

	AuthorTextPost(ctx context.Context, cmd AuthorTextPostCmd) (*domain.Post, error)
	EstablishRelationship(ctx context.Context, cmd EstablishRelationshipCmd) (*domain.RelationshipPath, error)
}
