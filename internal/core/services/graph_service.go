package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/ports"
)

type graphService struct {
	repo      ports.GraphRepository
	publisher ports.EventPublisher

	now        func() time.Time
	newID      func() string
	idAttempts int
}

type Option func(*graphService)

// WithClock remplace time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(s *graphService) { s.now = now }
}

// WithIDGenerator remplace le tirage UUID v4 (tests).
func WithIDGenerator(gen func() string) Option {
	return func(s *graphService) { s.newID = gen }
}

func WithIDAttempts(n int) Option {
	return func(s *graphService) { s.idAttempts = n }
}

func NewGraphService(repo ports.GraphRepository, pub ports.EventPublisher, opts ...Option) ports.GraphService {
	s := &graphService{
		repo:       repo,
		publisher:  pub,
		now:        time.Now,
		newID:      newUUID,
		idAttempts: DefaultIDAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// --- LECTURES ---

func (s *graphService) LookupPeople(ctx context.Context, q ports.EntityLookupQuery) ([]domain.Entity, error) {
	q.Labels = []string{string(domain.LabelPerson)}
	return s.LookupEntities(ctx, q)
}

func (s *graphService) LookupEntities(ctx context.Context, q ports.EntityLookupQuery) ([]domain.Entity, error) {
	labels, err := domain.ParseEntityLabels(q.Labels)
	if err != nil {
		return nil, err
	}
	return s.repo.FindEntities(ctx, ports.EntityCriteria{
		Labels: labels,
		ID:     q.ID,
		Name:   q.Name,
		Uname:  q.Uname,
		Email:  q.Email,
		Active: q.Active,
		Window: domain.TimeWindow{Before: q.Before, After: q.After},
	})
}

// GetEntity renvoie nil (sans erreur) si aucun noeud ne porte cet id.
func (s *graphService) GetEntity(ctx context.Context, id string) (*domain.Entity, error) {
	if err := required("id", id); err != nil {
		return nil, err
	}
	found, err := s.repo.FindEntities(ctx, ports.EntityCriteria{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (s *graphService) LookupRelatedEntities(ctx context.Context, q ports.RelatedEntitiesQuery) ([]domain.RelatedEntity, error) {
	if err := required("primaryId", q.PrimaryID); err != nil {
		return nil, err
	}
	types, err := domain.ParseEntityRelationshipTypes(q.RelationshipTypes)
	if err != nil {
		return nil, err
	}
	var rawDirection string
	if q.Direction != nil {
		rawDirection = *q.Direction
	}
	direction, err := domain.ParseDirection(rawDirection)
	if err != nil {
		return nil, err
	}

	var pattern *string
	if q.DescriptorSearch != nil && *q.DescriptorSearch != "" {
		pattern = q.DescriptorSearch
	}
	return s.repo.FindRelatedEntities(ctx, ports.RelatedCriteria{
		PrimaryID:         q.PrimaryID,
		RelationshipTypes: types,
		DescriptorPattern: pattern,
		Direction:         direction,
	})
}

func (s *graphService) PostsByAuthor(ctx context.Context, q ports.PostsByAuthorQuery) ([]domain.Post, error) {
	if err := required("authorId", q.AuthorID); err != nil {
		return nil, err
	}
	types, err := domain.ParsePostTypes(q.Types)
	if err != nil {
		return nil, err
	}
	limit := 0
	if q.Limit != nil {
		if *q.Limit < 0 {
			return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidArgument)
		}
		limit = *q.Limit
	}
	return s.repo.FindPostsByAuthor(ctx, ports.PostCriteria{
		AuthorID: q.AuthorID,
		Types:    types,
		Window:   domain.TimeWindow{Before: q.Before, After: q.After},
		Limit:    limit,
	})
}

// --- ÉCRITURES ---

func (s *graphService) AuthorTextPost(ctx context.Context, cmd ports.AuthorTextPostCmd) (*domain.Post, error) {
	// 1. Validation (avant toute requête)
	if err := required("authorId", cmd.AuthorID); err != nil {
		return nil, err
	}
	if err := required("content", cmd.Content); err != nil {
		return nil, err
	}
	visibility, err := domain.ParseVisibilities(cmd.Visibility)
	if err != nil {
		return nil, err
	}

	// 2. Horodatage : activation par défaut = création
	created := s.now().UTC()
	activation := created
	if cmd.ActivationDateTime != nil {
		activation = cmd.ActivationDateTime.UTC()
	}
	var deactivation *time.Time
	if cmd.DeactivationDateTime != nil {
		d := cmd.DeactivationDateTime.UTC()
		if !d.After(activation) {
			return nil, fmt.Errorf("%w: deactivationDateTime must be after activationDateTime", domain.ErrInvalidArgument)
		}
		deactivation = &d
	}

	// 3. Id unique (seule étape rejouée)
	id, err := uniqueID(ctx, s.idAttempts, s.newID, s.repo.PostExists)
	if err != nil {
		return nil, err
	}

	// 4. Post + arête AUTHORED dans une seule transaction
	post, err := s.repo.CreateTextPost(ctx, ports.NewTextPost{
		ID:                   id,
		AuthorID:             cmd.AuthorID,
		CreationDateTime:     created,
		ActivationDateTime:   activation,
		DeactivationDateTime: deactivation,
		Visibility:           visibility,
		Content:              cmd.Content,
	})
	if err != nil {
		return nil, err
	}

	// 5. Événement : la donnée est sauvée, un échec ici ne fait pas échouer la mutation
	if err := s.publisher.PublishPostAuthored(ctx, post); err != nil {
		slog.WarnContext(ctx, "publish post.authored failed", "post_id", post.ID, "error", err)
	}
	return post, nil
}

func (s *graphService) EstablishRelationship(ctx context.Context, cmd ports.EstablishRelationshipCmd) (*domain.RelationshipPath, error) {
	if err := required("subjectId", cmd.SubjectID); err != nil {
		return nil, err
	}
	if err := required("objectId", cmd.ObjectID); err != nil {
		return nil, err
	}
	relType, err := domain.ParseEntityRelationshipType(cmd.RelationshipType)
	if err != nil {
		return nil, err
	}

	path, err := s.repo.MergeRelationship(ctx, ports.RelationshipSpec{
		SubjectID:  cmd.SubjectID,
		ObjectID:   cmd.ObjectID,
		Type:       relType,
		Descriptor: cmd.Descriptor,
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishRelationshipEstablished(ctx, path); err != nil {
		slog.WarnContext(ctx, "publish relationship.established failed",
			"subject_id", cmd.SubjectID, "object_id", cmd.ObjectID, "error", err)
	}
	return path, nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", domain.ErrInvalidArgument, field)
	}
	return nil
}
