package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/jupiterclapton/cenackle/services/community-service/internal/adapters/secondary/repository/cypher"
	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/ports"
)

// Neo4jRepo implémente ports.GraphRepository.
// Il ne garde aucun état entre deux appels : une session par méthode.
type Neo4jRepo struct {
	tx txRunner
}

func NewNeo4jRepo(driver neo4j.DriverWithContext, database string) *Neo4jRepo {
	return &Neo4jRepo{tx: newDriverRunner(driver, database)}
}

var _ ports.GraphRepository = (*Neo4jRepo)(nil)

// EnsureSchema crée les contraintes d'unicité (une transaction par instruction)
func (r *Neo4jRepo) EnsureSchema(ctx context.Context) error {
	for _, stmt := range cypher.SchemaStatements() {
		if _, err := r.tx.write(ctx, cypher.Query{Text: stmt}); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (r *Neo4jRepo) FindEntities(ctx context.Context, c ports.EntityCriteria) ([]domain.Entity, error) {
	q, err := cypher.EntityLookup(c)
	if err != nil {
		return nil, err
	}
	records, err := r.tx.read(ctx, q)
	if err != nil {
		return nil, err
	}
	entities, err := mapEntities(records)
	if err != nil {
		return nil, err
	}
	// La base compare déjà ; on rejette aussi ce que le mapper a décodé hors fenêtre
	return filterWindow(entities, c.Window, func(e domain.Entity) time.Time { return e.CreationDateTime }), nil
}

func (r *Neo4jRepo) FindRelatedEntities(ctx context.Context, c ports.RelatedCriteria) ([]domain.RelatedEntity, error) {
	q, err := cypher.RelatedEntityLookup(c)
	if err != nil {
		return nil, err
	}
	records, err := r.tx.read(ctx, q)
	if err != nil {
		return nil, err
	}
	return mapRelated(records, c.Direction)
}

func (r *Neo4jRepo) FindPostsByAuthor(ctx context.Context, c ports.PostCriteria) ([]domain.Post, error) {
	q, err := cypher.PostsByAuthor(c)
	if err != nil {
		return nil, err
	}
	records, err := r.tx.read(ctx, q)
	if err != nil {
		return nil, err
	}
	posts, err := mapPosts(records, c.AuthorID)
	if err != nil {
		return nil, err
	}
	return filterWindow(posts, c.Window, func(p domain.Post) time.Time { return p.CreationDateTime }), nil
}

func (r *Neo4jRepo) PostExists(ctx context.Context, postID string) (bool, error) {
	records, err := r.tx.read(ctx, cypher.PostExists(postID))
	if err != nil {
		return false, err
	}
	return mapExists(records)
}

// CreateTextPost : CREATE non idempotent, donc transaction explicite jamais rejouée.
func (r *Neo4jRepo) CreateTextPost(ctx context.Context, p ports.NewTextPost) (*domain.Post, error) {
	q, err := cypher.AuthorTextPost(p)
	if err != nil {
		return nil, err
	}
	records, err := r.tx.writeOnce(ctx, q)
	if err != nil {
		return nil, err
	}
	return mapAuthoredPost(records, p.AuthorID)
}

// MergeRelationship : MERGE est idempotent, le driver peut rejouer la transaction.
func (r *Neo4jRepo) MergeRelationship(ctx context.Context, spec ports.RelationshipSpec) (*domain.RelationshipPath, error) {
	q, err := cypher.EstablishRelationship(spec)
	if err != nil {
		return nil, err
	}
	records, err := r.tx.write(ctx, q)
	if err != nil {
		return nil, err
	}
	return mapPath(records, spec.SubjectID, spec.ObjectID)
}

func filterWindow[T any](items []T, w domain.TimeWindow, created func(T) time.Time) []T {
	if w.Before == nil && w.After == nil {
		return items
	}
	out := items[:0]
	for _, item := range items {
		if w.Contains(created(item)) {
			out = append(out, item)
		}
	}
	return out
}
