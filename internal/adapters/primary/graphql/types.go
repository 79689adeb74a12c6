package graphql

import (
	"context"
	"time"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/ports"
)

// --- ENTITY ---

// entityResolver sert l'interface Entity et chacune de ses variantes ;
// les méthodes To<Label> aiguillent sur le discriminant.
type entityResolver struct {
	e   domain.Entity
	svc ports.GraphService
}

func (r *Resolver) wrapEntities(in []domain.Entity) []*entityResolver {
	out := make([]*entityResolver, 0, len(in))
	for _, e := range in {
		out = append(out, &entityResolver{e: e, svc: r.svc})
	}
	return out
}

func (r *entityResolver) ID() graphql.ID                 { return graphql.ID(r.e.ID) }
func (r *entityResolver) Name() string                   { return r.e.Name }
func (r *entityResolver) CreationDateTime() graphql.Time { return graphql.Time{Time: r.e.CreationDateTime} }
func (r *entityResolver) Active() bool                   { return r.e.Active }
func (r *entityResolver) Description() *string           { return r.e.Description }

// Person
func (r *entityResolver) Uname() string  { return r.e.Uname }
func (r *entityResolver) Email() *string { return r.e.Email }
func (r *entityResolver) Role() *string  { return r.e.Role }

// Place
func (r *entityResolver) Address() *string { return r.e.Address }

// Thing
func (r *entityResolver) Kinds() []string {
	if r.e.Kinds == nil {
		return []string{}
	}
	return r.e.Kinds
}

type relatedEntitiesArgs struct {
	RelationshipTypes *[]string
	DescriptorSearch  *string
	Direction         *string
}

func (r *entityResolver) RelatedEntities(ctx context.Context, args relatedEntitiesArgs) ([]*relatedEntityResolver, error) {
	related, err := r.svc.LookupRelatedEntities(ctx, ports.RelatedEntitiesQuery{
		PrimaryID:         r.e.ID,
		RelationshipTypes: list(args.RelationshipTypes),
		DescriptorSearch:  args.DescriptorSearch,
		Direction:         args.Direction,
	})
	if err != nil {
		return nil, mapDomainError(ctx, "relatedEntities", err)
	}
	out := make([]*relatedEntityResolver, 0, len(related))
	for _, re := range related {
		out = append(out, &relatedEntityResolver{re: re, svc: r.svc})
	}
	return out, nil
}

type personPostsArgs struct {
	Types  *[]string
	Before *graphql.Time
	After  *graphql.Time
	Limit  *int32
}

func (r *entityResolver) Posts(ctx context.Context, args personPostsArgs) ([]*postResolver, error) {
	return postsByAuthor(ctx, r.svc, r.e.ID, args.Types, args.Before, args.After, args.Limit)
}

func (r *entityResolver) as(label domain.EntityLabel) (*entityResolver, bool) {
	return r, r.e.Label == label
}

func (r *entityResolver) ToPerson() (*entityResolver, bool)   { return r.as(domain.LabelPerson) }
func (r *entityResolver) ToPlace() (*entityResolver, bool)    { return r.as(domain.LabelPlace) }
func (r *entityResolver) ToThing() (*entityResolver, bool)    { return r.as(domain.LabelThing) }
func (r *entityResolver) ToBusiness() (*entityResolver, bool) { return r.as(domain.LabelBusiness) }
func (r *entityResolver) ToGroup() (*entityResolver, bool)    { return r.as(domain.LabelGroup) }
func (r *entityResolver) ToEvent() (*entityResolver, bool)    { return r.as(domain.LabelEvent) }

// --- RELATIONSHIPS ---

type relationshipResolver struct {
	rel domain.Relationship
}

func (r *relationshipResolver) Type() string                    { return string(r.rel.Type) }
func (r *relationshipResolver) Descriptor() *string             { return r.rel.Descriptor }
func (r *relationshipResolver) CreationDateTime() *graphql.Time { return gqlTime(r.rel.CreationDateTime) }

type relatedEntityResolver struct {
	re  domain.RelatedEntity
	svc ports.GraphService
}

func (r *relatedEntityResolver) Entity() *entityResolver {
	return &entityResolver{e: r.re.Entity, svc: r.svc}
}

func (r *relatedEntityResolver) Relationship() *relationshipResolver {
	return &relationshipResolver{rel: r.re.Relationship}
}

func (r *relatedEntityResolver) Direction() string { return string(r.re.Direction) }

type relationshipPathResolver struct {
	subject *entityResolver
	object  *entityResolver
	rel     domain.Relationship
}

func (r *relationshipPathResolver) Subject() *entityResolver { return r.subject }
func (r *relationshipPathResolver) Object() *entityResolver  { return r.object }

func (r *relationshipPathResolver) Relationship() *relationshipResolver {
	return &relationshipResolver{rel: r.rel}
}

func (r *relationshipPathResolver) Descriptor() *string { return r.rel.Descriptor }

// --- POSTS ---

type postResolver struct {
	p   domain.Post
	svc ports.GraphService
}

func postsByAuthor(
	ctx context.Context,
	svc ports.GraphService,
	authorID string,
	types *[]string,
	before, after *graphql.Time,
	limit *int32,
) ([]*postResolver, error) {
	q := ports.PostsByAuthorQuery{
		AuthorID: authorID,
		Types:    list(types),
		Before:   timePtr(before),
		After:    timePtr(after),
	}
	if limit != nil {
		n := int(*limit)
		q.Limit = &n
	}
	posts, err := svc.PostsByAuthor(ctx, q)
	if err != nil {
		return nil, mapDomainError(ctx, "posts", err)
	}
	out := make([]*postResolver, 0, len(posts))
	for _, p := range posts {
		out = append(out, &postResolver{p: p, svc: svc})
	}
	return out, nil
}

func (r *postResolver) ID() graphql.ID       { return graphql.ID(r.p.ID) }
func (r *postResolver) AuthorID() graphql.ID { return graphql.ID(r.p.AuthorID) }

func (r *postResolver) Author(ctx context.Context) (*entityResolver, error) {
	e, err := r.svc.GetEntity(ctx, r.p.AuthorID)
	if err != nil {
		return nil, mapDomainError(ctx, "author", err)
	}
	if e == nil || e.Label != domain.LabelPerson {
		return nil, nil
	}
	return &entityResolver{e: *e, svc: r.svc}, nil
}

func (r *postResolver) CreationDateTime() graphql.Time      { return graphql.Time{Time: r.p.CreationDateTime} }
func (r *postResolver) ActivationDateTime() *graphql.Time   { return gqlTime(r.p.ActivationDateTime) }
func (r *postResolver) DeactivationDateTime() *graphql.Time { return gqlTime(r.p.DeactivationDateTime) }

func (r *postResolver) Visibility() []string {
	out := make([]string, 0, len(r.p.Visibility))
	for _, v := range r.p.Visibility {
		out = append(out, string(v))
	}
	return out
}

func (r *postResolver) Content() string { return r.p.Content }
func (r *postResolver) URL() string     { return r.p.URL }

func (r *postResolver) as(t domain.PostType) (*postResolver, bool) {
	return r, r.p.Type == t
}

func (r *postResolver) ToTextPost() (*postResolver, bool)  { return r.as(domain.PostTypeText) }
func (r *postResolver) ToImagePost() (*postResolver, bool) { return r.as(domain.PostTypeImage) }
func (r *postResolver) ToAudioPost() (*postResolver, bool) { return r.as(domain.PostTypeAudio) }
func (r *postResolver) ToVideoPost() (*postResolver, bool) { return r.as(domain.PostTypeVideo) }
func (r *postResolver) ToLinkPost() (*postResolver, bool)  { return r.as(domain.PostTypeLink) }

// --- HELPERS ---

func idPtr(id *graphql.ID) *string {
	if id == nil {
		return nil
	}
	s := string(*id)
	return &s
}

func timePtr(t *graphql.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

func gqlTime(t *time.Time) *graphql.Time {
	if t == nil {
		return nil
	}
	return &graphql.Time{Time: *t}
}

func list(in *[]string) []string {
	if in == nil {
		return nil
	}
	return *in
}
