package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jupiterclapton/cenackle/services/community-service/internal/auth"
	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/ports"
)

type fakeService struct {
	entities []domain.Entity
	related  []domain.RelatedEntity
	posts    []domain.Post
	path     *domain.RelationshipPath
	err      error

	lookup      ports.EntityLookupQuery
	relatedQ    ports.RelatedEntitiesQuery
	postsQ      ports.PostsByAuthorQuery
	authorCmd   ports.AuthorTextPostCmd
	establishQ  ports.EstablishRelationshipCmd
	peopleCalls int
}

func (f *fakeService) LookupPeople(_ context.Context, q ports.EntityLookupQuery) ([]domain.Entity, error) {
	f.peopleCalls++
	f.lookup = q
	return f.entities, f.err
}

func (f *fakeService) LookupEntities(_ context.Context, q ports.EntityLookupQuery) ([]domain.Entity, error) {
	f.lookup = q
	return f.entities, f.err
}

func (f *fakeService) GetEntity(_ context.Context, id string) (*domain.Entity, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, e := range f.entities {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

func (f *fakeService) LookupRelatedEntities(_ context.Context, q ports.RelatedEntitiesQuery) ([]domain.RelatedEntity, error) {
	f.relatedQ = q
	return f.related, f.err
}

func (f *fakeService) PostsByAuthor(_ context.Context, q ports.PostsByAuthorQuery) ([]domain.Post, error) {
	f.postsQ = q
	return f.posts, f.err
}

func (f *fakeService) AuthorTextPost(_ context.Context, cmd ports.AuthorTextPostCmd) (*domain.Post, error) {
	f.authorCmd = cmd
	if f.err != nil {
		return nil, f.err
	}
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Post{
		ID: "post-1", Type: domain.PostTypeText, AuthorID: cmd.AuthorID,
		CreationDateTime: now, ActivationDateTime: &now,
		Visibility: []domain.Visibility{domain.VisibilityPublic}, Content: cmd.Content,
	}, nil
}

func (f *fakeService) EstablishRelationship(_ context.Context, cmd ports.EstablishRelationshipCmd) (*domain.RelationshipPath, error) {
	f.establishQ = cmd
	return f.path, f.err
}

var (
	created = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	alice   = domain.Entity{Label: domain.LabelPerson, ID: "u1", Name: "Alice", Uname: "alice", CreationDateTime: created, Active: true}
	louvre  = domain.Entity{Label: domain.LabelPlace, ID: "pl1", Name: "Louvre", CreationDateTime: created, Active: true}
)

func exec(t *testing.T, ctx context.Context, svc ports.GraphService, query string, vars map[string]interface{}) (map[string]any, []map[string]any) {
	t.Helper()
	schema, err := NewSchema(svc)
	require.NoError(t, err)

	resp := schema.Exec(ctx, query, "", vars)

	var errs []map[string]any
	for _, e := range resp.Errors {
		errs = append(errs, map[string]any{"message": e.Message, "extensions": e.Extensions})
	}
	var data map[string]any
	if len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, &data))
	}
	return data, errs
}

func TestSchemaParses(t *testing.T) {
	_, err := NewSchema(&fakeService{})
	require.NoError(t, err)
}

func TestEntities_Typename(t *testing.T) {
	svc := &fakeService{entities: []domain.Entity{alice, louvre}}

	data, errs := exec(t, context.Background(), svc, `
		query {
			entities(labels: [Person, Place]) {
				__typename
				id
				name
				... on Person { uname }
			}
		}`, nil)
	require.Empty(t, errs)

	items := data["entities"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Person", items[0].(map[string]any)["__typename"])
	assert.Equal(t, "alice", items[0].(map[string]any)["uname"])
	assert.Equal(t, "Place", items[1].(map[string]any)["__typename"])
	assert.Equal(t, []string{"Person", "Place"}, svc.lookup.Labels)
}

func TestPeople_EmptyList(t *testing.T) {
	svc := &fakeService{entities: []domain.Entity{}}

	data, errs := exec(t, context.Background(), svc,
		`query($name: String) { people(name: $name) { id } }`,
		map[string]interface{}{"name": "Alice"})
	require.Empty(t, errs)

	assert.Equal(t, []any{}, data["people"])
	assert.Equal(t, 1, svc.peopleCalls)
	assert.Equal(t, "Alice", *svc.lookup.Name)
	assert.Nil(t, svc.lookup.Before)
}

func TestEntity_NullWhenAbsent(t *testing.T) {
	data, errs := exec(t, context.Background(), &fakeService{}, `{ entity(id: "ghost") { id } }`, nil)
	require.Empty(t, errs)
	assert.Nil(t, data["entity"])
}

func TestRelatedEntities_Nested(t *testing.T) {
	svc := &fakeService{
		entities: []domain.Entity{alice},
		related: []domain.RelatedEntity{{
			Entity:       louvre,
			Relationship: domain.Relationship{Type: domain.RelFollow},
			Direction:    domain.DirectionOut,
		}},
	}

	data, errs := exec(t, context.Background(), svc, `{
		entity(id: "u1") {
			relatedEntities(relationshipTypes: [FOLLOW], direction: OUT) {
				direction
				relationship { type descriptor }
				entity { __typename id }
			}
		}
	}`, nil)
	require.Empty(t, errs)

	related := data["entity"].(map[string]any)["relatedEntities"].([]any)
	require.Len(t, related, 1)
	first := related[0].(map[string]any)
	assert.Equal(t, "OUT", first["direction"])
	assert.Equal(t, "Place", first["entity"].(map[string]any)["__typename"])
	assert.Equal(t, "FOLLOW", first["relationship"].(map[string]any)["type"])

	assert.Equal(t, "u1", svc.relatedQ.PrimaryID)
	assert.Equal(t, "OUT", *svc.relatedQ.Direction)
	assert.Equal(t, []string{"FOLLOW"}, svc.relatedQ.RelationshipTypes)
}

func TestPosts(t *testing.T) {
	svc := &fakeService{posts: []domain.Post{{
		ID: "post-1", Type: domain.PostTypeLink, AuthorID: "u1", CreationDateTime: created,
		Visibility: []domain.Visibility{domain.VisibilityFriends}, URL: "https://example.org",
	}}}

	data, errs := exec(t, context.Background(), svc, `
		query($before: Time) {
			posts(authorId: "u1", types: [LinkPost], before: $before, limit: 10) {
				__typename
				id
				visibility
				... on LinkPost { url }
			}
		}`, map[string]interface{}{"before": "2024-06-01T00:00:00Z"})
	require.Empty(t, errs)

	posts := data["posts"].([]any)
	require.Len(t, posts, 1)
	assert.Equal(t, "LinkPost", posts[0].(map[string]any)["__typename"])
	assert.Equal(t, "https://example.org", posts[0].(map[string]any)["url"])

	require.NotNil(t, svc.postsQ.Before)
	assert.True(t, svc.postsQ.Before.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, svc.postsQ.After)
	assert.Equal(t, 10, *svc.postsQ.Limit)
}

func TestAuthorTextPost_CallerIdentity(t *testing.T) {
	svc := &fakeService{}
	ctx := auth.WithCaller(context.Background(), "u1")

	data, errs := exec(t, ctx, svc, `mutation {
		authorTextPost(content: "hi", visibility: [PUBLIC]) { id authorId content }
	}`, nil)
	require.Empty(t, errs)
	assert.Equal(t, "u1", svc.authorCmd.AuthorID)
	assert.Equal(t, "post-1", data["authorTextPost"].(map[string]any)["id"])

	// un authorId explicite l'emporte
	_, errs = exec(t, ctx, svc, `mutation {
		authorTextPost(authorId: "u9", content: "hi", visibility: [PUBLIC]) { id }
	}`, nil)
	require.Empty(t, errs)
	assert.Equal(t, "u9", svc.authorCmd.AuthorID)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{name: "validation", err: domain.ErrInvalidArgument, wantCode: CodeBadUserInput, wantMessage: "invalid argument"},
		{name: "not found", err: domain.ErrNotFound, wantCode: CodeNotFound, wantMessage: "not found"},
		{name: "id exhaustion", err: domain.ErrIDGenerationExhausted, wantCode: CodeInternal, wantMessage: "internal server error"},
		{name: "database", err: errors.New("neo4j write: connection refused"), wantCode: CodeInternal, wantMessage: "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.err}
			_, errs := exec(t, context.Background(), svc, `mutation {
				establishRelationship(subjectId: "a", objectId: "b", relationshipType: AUTHORED) { descriptor }
			}`, nil)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0]["message"], tt.wantMessage)
			assert.Equal(t, tt.wantCode, errs[0]["extensions"].(map[string]interface{})["code"])
			assert.NotContains(t, errs[0]["message"], "neo4j")
		})
	}
}

func TestHandler_ForwardsCaller(t *testing.T) {
	svc := &fakeService{}
	schema, err := NewSchema(svc)
	require.NoError(t, err)

	body := `{"query":"mutation { authorTextPost(content: \"hi\", visibility: [PUBLIC]) { id } }"}`
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.CallerHeader, "u42")
	rec := httptest.NewRecorder()

	NewHandler(schema).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"post-1"`)
	assert.Equal(t, "u42", svc.authorCmd.AuthorID)
}
