// Package graphql expose le GraphService via un schéma GraphQL (graph-gophers/graphql-go).
package graphql

import (
	"context"
	_ "embed"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/trace/otel"

	"github.com/jupiterclapton/cenackle/services/community-service/internal/auth"
	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/ports"
)

//go:embed schema.graphql
var Schema string

// Profondeur max d'une requête : bloque les traversées relatedEntities en cascade.
const maxDepth = 8

// Resolver est la racine Query/Mutation.
type Resolver struct {
	svc ports.GraphService
}

func NewSchema(svc ports.GraphService) (*graphql.Schema, error) {
	return graphql.ParseSchema(Schema, &Resolver{svc: svc},
		graphql.Tracer(otel.DefaultTracer()),
		graphql.MaxDepth(maxDepth),
	)
}

// --- QUERY ---

type peopleArgs struct {
	ID     *graphql.ID
	Name   *string
	Uname  *string
	Email  *string
	Active *bool
	Before *graphql.Time
	After  *graphql.Time
}

func (r *Resolver) People(ctx context.Context, args peopleArgs) ([]*entityResolver, error) {
	people, err := r.svc.LookupPeople(ctx, ports.EntityLookupQuery{
		ID:     idPtr(args.ID),
		Name:   args.Name,
		Uname:  args.Uname,
		Email:  args.Email,
		Active: args.Active,
		Before: timePtr(args.Before),
		After:  timePtr(args.After),
	})
	if err != nil {
		return nil, mapDomainError(ctx, "people", err)
	}
	return r.wrapEntities(people), nil
}

type entitiesArgs struct {
	Labels *[]string
	ID     *graphql.ID
	Name   *string
	Active *bool
	Before *graphql.Time
	After  *graphql.Time
}

func (r *Resolver) Entities(ctx context.Context, args entitiesArgs) ([]*entityResolver, error) {
	found, err := r.svc.LookupEntities(ctx, ports.EntityLookupQuery{
		Labels: list(args.Labels),
		ID:     idPtr(args.ID),
		Name:   args.Name,
		Active: args.Active,
		Before: timePtr(args.Before),
		After:  timePtr(args.After),
	})
	if err != nil {
		return nil, mapDomainError(ctx, "entities", err)
	}
	return r.wrapEntities(found), nil
}

func (r *Resolver) Entity(ctx context.Context, args struct{ ID graphql.ID }) (*entityResolver, error) {
	e, err := r.svc.GetEntity(ctx, string(args.ID))
	if err != nil {
		return nil, mapDomainError(ctx, "entity", err)
	}
	if e == nil {
		return nil, nil
	}
	return &entityResolver{e: *e, svc: r.svc}, nil
}

type postsArgs struct {
	AuthorID graphql.ID
	Types    *[]string
	Before   *graphql.Time
	After    *graphql.Time
	Limit    *int32
}

func (r *Resolver) Posts(ctx context.Context, args postsArgs) ([]*postResolver, error) {
	return postsByAuthor(ctx, r.svc, string(args.AuthorID), args.Types, args.Before, args.After, args.Limit)
}

// --- MUTATION ---

type authorTextPostArgs struct {
	AuthorID             *graphql.ID
	Content              string
	Visibility           []string
	ActivationDateTime   *graphql.Time
	DeactivationDateTime *graphql.Time
}

func (r *Resolver) AuthorTextPost(ctx context.Context, args authorTextPostArgs) (*postResolver, error) {
	authorID := auth.ForContext(ctx)
	if args.AuthorID != nil {
		authorID = string(*args.AuthorID)
	}

	post, err := r.svc.AuthorTextPost(ctx, ports.AuthorTextPostCmd{
		AuthorID:             authorID,
		Content:              args.Content,
		Visibility:           args.Visibility,
		ActivationDateTime:   timePtr(args.ActivationDateTime),
		DeactivationDateTime: timePtr(args.DeactivationDateTime),
	})
	if err != nil {
		return nil, mapDomainError(ctx, "authorTextPost", err)
	}
	return &postResolver{p: *post, svc: r.svc}, nil
}

type establishRelationshipArgs struct {
	SubjectID        graphql.ID
	ObjectID         graphql.ID
	RelationshipType string
	Descriptor       *string
}

func (r *Resolver) EstablishRelationship(ctx context.Context, args establishRelationshipArgs) (*relationshipPathResolver, error) {
	path, err := r.svc.EstablishRelationship(ctx, ports.EstablishRelationshipCmd{
		SubjectID:        string(args.SubjectID),
		ObjectID:         string(args.ObjectID),
		RelationshipType: args.RelationshipType,
		Descriptor:       args.Descriptor,
	})
	if err != nil {
		return nil, mapDomainError(ctx, "establishRelationship", err)
	}
	return &relationshipPathResolver{
		subject: &entityResolver{e: path.Subject, svc: r.svc},
		object:  &entityResolver{e: path.Object, svc: r.svc},
		rel:     path.Relationship,
	}, nil
}
