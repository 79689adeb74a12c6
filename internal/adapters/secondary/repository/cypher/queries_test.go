package cypher

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/ports"
)

const allEntityLabels = "Person|Place|Thing|Business|Group|Event"

func ptr[T any](v T) *T { return &v }

func TestEntityLookup_PersonByName(t *testing.T) {
	q, err := EntityLookup(ports.EntityCriteria{
		Labels: []domain.EntityLabel{domain.LabelPerson},
		Name:   ptr("Alice"),
	})
	require.NoError(t, err)

	assert.Equal(t, "MATCH (e:Person)\nWHERE e.name = $name\nRETURN e", q.Text)
	assert.Equal(t, map[string]any{"name": "Alice"}, q.Params)
}

func TestEntityLookup_DefaultsToAllEntityLabels(t *testing.T) {
	q, err := EntityLookup(ports.EntityCriteria{})
	require.NoError(t, err)

	assert.Equal(t, "MATCH (e:"+allEntityLabels+")\nRETURN e", q.Text)
	assert.Empty(t, q.Params)
}

func TestEntityLookup_TimeWindow(t *testing.T) {
	before := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	after := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("both bounds", func(t *testing.T) {
		q, err := EntityLookup(ports.EntityCriteria{
			Active: ptr(true),
			Window: domain.TimeWindow{Before: &before, After: &after},
		})
		require.NoError(t, err)
		assert.Contains(t, q.Text, "WHERE e.active = $active AND "+asDateTime("e.creationDateTime")+" < $before AND "+asDateTime("e.creationDateTime")+" > $after")
		assert.Equal(t, before, q.Params["before"])
		assert.Equal(t, after, q.Params["after"])
		assert.Equal(t, true, q.Params["active"])
	})

	t.Run("only after", func(t *testing.T) {
		q, err := EntityLookup(ports.EntityCriteria{Window: domain.TimeWindow{After: &after}})
		require.NoError(t, err)
		assert.Contains(t, q.Text, "WHERE "+asDateTime("e.creationDateTime")+" > $after")
		assert.NotContains(t, q.Text, "$before")
		assert.NotContains(t, q.Params, "before")
	})
}

func TestAsDateTime_NormalisesLegacyValues(t *testing.T) {
	expr := asDateTime("r.creationDateTime")

	assert.True(t, strings.HasPrefix(expr, "CASE "))
	assert.True(t, strings.HasSuffix(expr, " ELSE r.creationDateTime END"))
	assert.Contains(t, expr, "WHEN r.creationDateTime IS :: INTEGER NOT NULL THEN datetime({epochMillis: r.creationDateTime})")
	assert.Contains(t, expr, "WHEN r.creationDateTime IS :: FLOAT NOT NULL THEN datetime({epochMillis: toInteger(r.creationDateTime)})")
	assert.Contains(t, expr, "WHEN r.creationDateTime IS :: LOCAL DATETIME NOT NULL THEN datetime({datetime: r.creationDateTime, timezone: 'UTC'})")
	assert.Contains(t, expr, "WHEN r.creationDateTime IS :: DATE NOT NULL THEN datetime({date: r.creationDateTime, timezone: 'UTC'})")
}

func TestEntityLookup_RejectsUnknownLabel(t *testing.T) {
	_, err := EntityLookup(ports.EntityCriteria{Labels: []domain.EntityLabel{"Person) DETACH DELETE (n"}})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestRelatedEntityLookup(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		q, err := RelatedEntityLookup(ports.RelatedCriteria{PrimaryID: "p1", Direction: domain.DirectionBidirectional})
		require.NoError(t, err)
		assert.Equal(t,
			"MATCH (p {id: $primaryId})-[r:FAMILY|FOLLOW|FRIEND|OWNERSHIP|EMPLOYMENT|MEMBERSHIP|AFFILIATION]-(s:"+allEntityLabels+")\n"+
				"RETURN (endNode(r) = s) AS relOut, r, s",
			q.Text)
		assert.Equal(t, map[string]any{"primaryId": "p1"}, q.Params)
	})

	t.Run("types and descriptor", func(t *testing.T) {
		q, err := RelatedEntityLookup(ports.RelatedCriteria{
			PrimaryID:         "p1",
			RelationshipTypes: []domain.RelationshipType{domain.RelFriend, domain.RelFamily, domain.RelFriend},
			DescriptorPattern: ptr("best.*"),
		})
		require.NoError(t, err)
		assert.Contains(t, q.Text, "-[r:FRIEND|FAMILY]-")
		assert.Contains(t, q.Text, "WHERE r.descriptor =~ $descriptorPattern")
		assert.Equal(t, "best.*", q.Params["descriptorPattern"])
	})

	t.Run("authored rejected", func(t *testing.T) {
		_, err := RelatedEntityLookup(ports.RelatedCriteria{
			PrimaryID:         "p1",
			RelationshipTypes: []domain.RelationshipType{domain.RelAuthored},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("primary id required", func(t *testing.T) {
		_, err := RelatedEntityLookup(ports.RelatedCriteria{})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}

func TestPostsByAuthor(t *testing.T) {
	before := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	q, err := PostsByAuthor(ports.PostCriteria{AuthorID: "u1"})
	require.NoError(t, err)
	assert.Equal(t,
		"MATCH (a {id: $authorId})-[r:AUTHORED]->(post:TextPost|ImagePost|AudioPost|VideoPost|LinkPost)\n"+
			"RETURN post, r\n"+
			"ORDER BY "+asDateTime("r.creationDateTime")+" DESC",
		q.Text)

	q, err = PostsByAuthor(ports.PostCriteria{
		AuthorID: "u1",
		Types:    []domain.PostType{domain.PostTypeText},
		Window:   domain.TimeWindow{Before: &before},
		Limit:    20,
	})
	require.NoError(t, err)
	assert.Contains(t, q.Text, "(post:TextPost)")
	// la fenêtre porte sur l'arête, pas sur le post
	assert.Contains(t, q.Text, "WHERE "+asDateTime("r.creationDateTime")+" < $before")
	assert.NotContains(t, q.Text, "post.creationDateTime")
	assert.True(t, strings.HasSuffix(q.Text, "LIMIT $limit"))
	assert.Equal(t, int64(20), q.Params["limit"])

	_, err = PostsByAuthor(ports.PostCriteria{AuthorID: "u1", Types: []domain.PostType{"Story"}})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestAuthorTextPost(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	q, err := AuthorTextPost(ports.NewTextPost{
		ID:                 "post-1",
		AuthorID:           "u1",
		CreationDateTime:   now,
		ActivationDateTime: now,
		Visibility:         []domain.Visibility{domain.VisibilityPublic},
		Content:            "hi",
	})
	require.NoError(t, err)

	assert.Equal(t,
		"MATCH (a:Person {id: $authorId})\n"+
			"CREATE (post:Post:TextPost {id: $postId, creationDateTime: $creationDateTime, activationDateTime: $activationDateTime, visibility: $visibility, content: $content})\n"+
			"CREATE (a)-[r:AUTHORED {creationDateTime: $creationDateTime}]->(post)\n"+
			"RETURN post, r",
		q.Text)
	assert.Equal(t, []string{"PUBLIC"}, q.Params["visibility"])
	assert.NotContains(t, q.Params, "deactivationDateTime")

	later := now.Add(time.Hour)
	q, err = AuthorTextPost(ports.NewTextPost{
		ID: "post-1", AuthorID: "u1", CreationDateTime: now, ActivationDateTime: now,
		DeactivationDateTime: &later, Visibility: []domain.Visibility{domain.VisibilityFriends},
	})
	require.NoError(t, err)
	assert.Contains(t, q.Text, "deactivationDateTime: $deactivationDateTime")
	assert.Equal(t, later, q.Params["deactivationDateTime"])
}

func TestEstablishRelationship(t *testing.T) {
	q, err := EstablishRelationship(ports.RelationshipSpec{SubjectID: "a", ObjectID: "b", Type: domain.RelFriend})
	require.NoError(t, err)
	assert.Equal(t,
		"MATCH (s:"+allEntityLabels+" {id: $subjectId})\n"+
			"MATCH (o:"+allEntityLabels+" {id: $objectId})\n"+
			"MERGE (s)-[r:FRIEND]->(o)\n"+
			"RETURN s, o, r",
		q.Text)
	assert.Equal(t, map[string]any{"subjectId": "a", "objectId": "b"}, q.Params)

	q, err = EstablishRelationship(ports.RelationshipSpec{SubjectID: "a", ObjectID: "b", Type: domain.RelEmployment, Descriptor: ptr("engineer")})
	require.NoError(t, err)
	assert.Contains(t, q.Text, "MERGE (s)-[r:EMPLOYMENT {descriptor: $descriptor}]->(o)")
	assert.NotContains(t, q.Text, "CREATE")
	assert.Equal(t, "engineer", q.Params["descriptor"])

	_, err = EstablishRelationship(ports.RelationshipSpec{SubjectID: "a", ObjectID: "b", Type: "FRIEND]->(o) DETACH DELETE o //"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = EstablishRelationship(ports.RelationshipSpec{SubjectID: "a", ObjectID: "b", Type: domain.RelAuthored})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = EstablishRelationship(ports.RelationshipSpec{SubjectID: " ", ObjectID: "b", Type: domain.RelFriend})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

// Aucune valeur fournie par l'appelant ne doit atteindre le texte de la requête.
func TestValuesNeverReachTemplate(t *testing.T) {
	const hostile = "x'}) DETACH DELETE n //"
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	queries := []func() (Query, error){
		func() (Query, error) {
			return EntityLookup(ports.EntityCriteria{
				ID: ptr(hostile), Name: ptr(hostile), Uname: ptr(hostile), Email: ptr(hostile),
			})
		},
		func() (Query, error) {
			return RelatedEntityLookup(ports.RelatedCriteria{PrimaryID: hostile, DescriptorPattern: ptr(hostile)})
		},
		func() (Query, error) { return PostsByAuthor(ports.PostCriteria{AuthorID: hostile}) },
		func() (Query, error) {
			return AuthorTextPost(ports.NewTextPost{
				ID: hostile, AuthorID: hostile, Content: hostile, CreationDateTime: ts, ActivationDateTime: ts,
				Visibility: []domain.Visibility{domain.VisibilityPublic},
			})
		},
		func() (Query, error) {
			return EstablishRelationship(ports.RelationshipSpec{
				SubjectID: hostile, ObjectID: hostile, Type: domain.RelFollow, Descriptor: ptr(hostile),
			})
		},
		func() (Query, error) { return PostExists(hostile), nil },
	}

	for i, build := range queries {
		q, err := build()
		require.NoError(t, err, "query %d", i)
		assert.NotContains(t, q.Text, hostile, "query %d", i)
		assert.NotContains(t, q.Text, "DETACH", "query %d", i)

		var found bool
		for _, v := range q.Params {
			if v == hostile {
				found = true
			}
		}
		assert.True(t, found, "query %d must carry the value as a parameter", i)
	}
}

func TestSchemaStatements(t *testing.T) {
	stmts := SchemaStatements()
	require.Len(t, stmts, len(domain.EntityLabels)+2)
	assert.Equal(t, "CREATE CONSTRAINT person_id_unique IF NOT EXISTS FOR (n:Person) REQUIRE n.id IS UNIQUE", stmts[0])
	assert.Contains(t, stmts, "CREATE CONSTRAINT post_id_unique IF NOT EXISTS FOR (n:Post) REQUIRE n.id IS UNIQUE")
	for _, s := range stmts {
		assert.Contains(t, s, "IF NOT EXISTS")
	}
}
