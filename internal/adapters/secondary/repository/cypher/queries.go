package cypher

import (
	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/ports"
)

// Variables de retour lues par le mapper.
const (
	VarEntity       = "e"
	VarPrimary      = "p"
	VarRelationship = "r"
	VarRelated      = "s"
	VarRelOut       = "relOut"
	VarPost         = "post"
	VarSubject      = "s"
	VarObject       = "o"
	VarFound        = "found"
)

// EntityLookup : MATCH sur les labels demandés + égalité sur chaque champ présent
// + bornes strictes optionnelles sur creationDateTime.
func EntityLookup(c ports.EntityCriteria) (Query, error) {
	labels, err := entityLabelExpr(c.Labels)
	if err != nil {
		return Query{}, err
	}

	b := newBuilder()
	b.clause("MATCH (%s%s)", VarEntity, labels)

	// Table fermée clé -> valeur : les clés sont des constantes, jamais des entrées client.
	equalities := []struct {
		key   string
		value any
		set   bool
	}{
		{"id", deref(c.ID), c.ID != nil},
		{"name", deref(c.Name), c.Name != nil},
		{"uname", deref(c.Uname), c.Uname != nil},
		{"email", deref(c.Email), c.Email != nil},
		{"active", derefBool(c.Active), c.Active != nil},
	}
	for _, eq := range equalities {
		if eq.set {
			b.filter("%s.%s = %s", VarEntity, eq.key, b.param(eq.key, eq.value))
		}
	}
	applyWindow(b, VarEntity, c.Window)

	b.finally("RETURN %s", VarEntity)
	return b.build(), nil
}

// RelatedEntityLookup : adjacence sans direction depuis le noeud primaire.
// relOut = endNode(r) = s permet de classer OUT / IN après la requête.
func RelatedEntityLookup(c ports.RelatedCriteria) (Query, error) {
	if err := requireID("primaryId", c.PrimaryID); err != nil {
		return Query{}, err
	}
	relTypes, err := entityRelTypeExpr(c.RelationshipTypes)
	if err != nil {
		return Query{}, err
	}
	labels, _ := entityLabelExpr(nil)

	b := newBuilder()
	b.clause("MATCH (%s {id: %s})-[%s%s]-(%s%s)",
		VarPrimary, b.param("primaryId", c.PrimaryID), VarRelationship, relTypes, VarRelated, labels)
	if c.DescriptorPattern != nil && *c.DescriptorPattern != "" {
		b.filter("%s.descriptor =~ %s", VarRelationship, b.param("descriptorPattern", *c.DescriptorPattern))
	}
	b.finally("RETURN (endNode(%s) = %s) AS %s, %s, %s", VarRelationship, VarRelated, VarRelOut, VarRelationship, VarRelated)
	return b.build(), nil
}

// PostsByAuthor : arêtes AUTHORED vers les sous-types demandés ; la fenêtre
// temporelle porte sur r.creationDateTime (l'arête), pas sur le post.
func PostsByAuthor(c ports.PostCriteria) (Query, error) {
	if err := requireID("authorId", c.AuthorID); err != nil {
		return Query{}, err
	}
	types, err := postTypeExpr(c.Types)
	if err != nil {
		return Query{}, err
	}

	b := newBuilder()
	b.clause("MATCH (a {id: %s})-[%s:%s]->(%s%s)",
		b.param("authorId", c.AuthorID), VarRelationship, domain.RelAuthored, VarPost, types)
	applyWindow(b, VarRelationship, c.Window)
	b.finally("RETURN %s, %s", VarPost, VarRelationship)
	b.finally("ORDER BY %s DESC", asDateTime(VarRelationship+".creationDateTime"))
	if c.Limit > 0 {
		b.finally("LIMIT %s", b.param("limit", int64(c.Limit)))
	}
	return b.build(), nil
}

// PostExists renvoie toujours exactement un enregistrement (found: bool).
func PostExists(postID string) Query {
	b := newBuilder()
	b.clause("OPTIONAL MATCH (%s:%s {id: %s})", VarPost, domain.PostLabel, b.param("postId", postID))
	b.finally("RETURN %s IS NOT NULL AS %s", VarPost, VarFound)
	return b.build()
}

// AuthorTextPost : MATCH de l'auteur puis CREATE du post et de l'arête AUTHORED,
// dans une seule requête. Auteur absent -> zéro enregistrement, rien n'est créé.
func AuthorTextPost(p ports.NewTextPost) (Query, error) {
	if err := requireID("authorId", p.AuthorID); err != nil {
		return Query{}, err
	}
	if err := requireID("postId", p.ID); err != nil {
		return Query{}, err
	}
	visibility := make([]string, 0, len(p.Visibility))
	for _, v := range p.Visibility {
		if !v.Valid() {
			return Query{}, invalid("visibility", string(v))
		}
		visibility = append(visibility, string(v))
	}

	b := newBuilder()
	b.clause("MATCH (a:%s {id: %s})", domain.LabelPerson, b.param("authorId", p.AuthorID))

	props := "id: " + b.param("postId", p.ID) +
		", creationDateTime: " + b.param("creationDateTime", p.CreationDateTime) +
		", activationDateTime: " + b.param("activationDateTime", p.ActivationDateTime) +
		", visibility: " + b.param("visibility", visibility) +
		", content: " + b.param("content", p.Content)
	if p.DeactivationDateTime != nil {
		props += ", deactivationDateTime: " + b.param("deactivationDateTime", *p.DeactivationDateTime)
	}

	b.clause("CREATE (%s:%s:%s {%s})", VarPost, domain.PostLabel, domain.PostTypeText, props)
	b.clause("CREATE (a)-[%s:%s {creationDateTime: $creationDateTime}]->(%s)", VarRelationship, domain.RelAuthored, VarPost)
	b.finally("RETURN %s, %s", VarPost, VarRelationship)
	return b.build(), nil
}

// EstablishRelationship : MATCH des deux extrémités puis MERGE d'une seule arête.
// MERGE (et non CREATE) rend l'appel idempotent.
func EstablishRelationship(s ports.RelationshipSpec) (Query, error) {
	if err := requireID("subjectId", s.SubjectID); err != nil {
		return Query{}, err
	}
	if err := requireID("objectId", s.ObjectID); err != nil {
		return Query{}, err
	}
	relType, err := entityRelTypeExpr([]domain.RelationshipType{s.Type})
	if err != nil {
		return Query{}, err
	}
	labels, _ := entityLabelExpr(nil)

	b := newBuilder()
	b.clause("MATCH (%s%s {id: %s})", VarSubject, labels, b.param("subjectId", s.SubjectID))
	b.clause("MATCH (%s%s {id: %s})", VarObject, labels, b.param("objectId", s.ObjectID))
	if s.Descriptor != nil {
		b.clause("MERGE (%s)-[%s%s {descriptor: %s}]->(%s)",
			VarSubject, VarRelationship, relType, b.param("descriptor", *s.Descriptor), VarObject)
	} else {
		b.clause("MERGE (%s)-[%s%s]->(%s)", VarSubject, VarRelationship, relType, VarObject)
	}
	b.finally("RETURN %s, %s, %s", VarSubject, VarObject, VarRelationship)
	return b.build(), nil
}

// SchemaStatements : contraintes d'unicité sur id (crée aussi les index) + index
// sur la date de l'arête AUTHORED utilisée par les fenêtres temporelles.
func SchemaStatements() []string {
	stmts := make([]string, 0, len(domain.EntityLabels)+2)
	for _, l := range domain.EntityLabels {
		stmts = append(stmts, "CREATE CONSTRAINT "+lower(string(l))+"_id_unique IF NOT EXISTS FOR (n:"+string(l)+") REQUIRE n.id IS UNIQUE")
	}
	stmts = append(stmts,
		"CREATE CONSTRAINT post_id_unique IF NOT EXISTS FOR (n:"+domain.PostLabel+") REQUIRE n.id IS UNIQUE",
		"CREATE INDEX authored_creation IF NOT EXISTS FOR ()-[r:"+string(domain.RelAuthored)+"]-() ON (r.creationDateTime)",
	)
	return stmts
}

// --- HELPERS ---

func applyWindow(b *builder, variable string, w domain.TimeWindow) {
	created := asDateTime(variable + ".creationDateTime")
	if w.Before != nil {
		b.filter("%s < %s", created, b.param("before", *w.Before))
	}
	if w.After != nil {
		b.filter("%s > %s", created, b.param("after", *w.After))
	}
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefBool(v *bool) any {
	if v == nil {
		return nil
	}
	return *v
}
