package repository

import (
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/jupiterclapton/cenackle/services/community-service/internal/adapters/secondary/repository/cypher"
	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/domain"
)

// --- ENREGISTREMENTS -> DOMAINE ---
// L'ordre renvoyé par la base est conservé tel quel.

func mapEntities(records []*neo4j.Record) ([]domain.Entity, error) {
	out := make([]domain.Entity, 0, len(records))
	for _, rec := range records {
		node, err := nodeAt(rec, cypher.VarEntity)
		if err != nil {
			return nil, err
		}
		e, err := toEntity(node)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// mapRelated classe chaque arête (OUT si elle termine sur l'entité liée, IN sinon)
// puis ne garde que celles admises par la direction demandée.
func mapRelated(records []*neo4j.Record, dir domain.Direction) ([]domain.RelatedEntity, error) {
	out := make([]domain.RelatedEntity, 0, len(records))
	for _, rec := range records {
		relOut, ok := rec.Get(cypher.VarRelOut)
		if !ok {
			return nil, missing(cypher.VarRelOut)
		}
		isOut, ok := relOut.(bool)
		if !ok {
			return nil, fmt.Errorf("record field %q: expected bool, got %T", cypher.VarRelOut, relOut)
		}
		edge := domain.DirectionIn
		if isOut {
			edge = domain.DirectionOut
		}
		if !dir.Includes(edge) {
			continue
		}

		rel, err := relationshipAt(rec, cypher.VarRelationship)
		if err != nil {
			return nil, err
		}
		node, err := nodeAt(rec, cypher.VarRelated)
		if err != nil {
			return nil, err
		}
		entity, err := toEntity(node)
		if err != nil {
			return nil, err
		}
		relationship, err := toRelationship(rel)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.RelatedEntity{Entity: entity, Relationship: relationship, Direction: edge})
	}
	return out, nil
}

func mapPosts(records []*neo4j.Record, authorID string) ([]domain.Post, error) {
	out := make([]domain.Post, 0, len(records))
	for _, rec := range records {
		p, err := toPost(rec, authorID)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// mapAuthoredPost : mutation unitaire, zéro enregistrement = auteur absent.
func mapAuthoredPost(records []*neo4j.Record, authorID string) (*domain.Post, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: author %q", domain.ErrNotFound, authorID)
	}
	return toPost(records[0], authorID)
}

// mapPath : mutation unitaire, zéro enregistrement = une extrémité manque.
func mapPath(records []*neo4j.Record, subjectID, objectID string) (*domain.RelationshipPath, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: subject %q or object %q", domain.ErrNotFound, subjectID, objectID)
	}
	rec := records[0]

	subjectNode, err := nodeAt(rec, cypher.VarSubject)
	if err != nil {
		return nil, err
	}
	objectNode, err := nodeAt(rec, cypher.VarObject)
	if err != nil {
		return nil, err
	}
	rel, err := relationshipAt(rec, cypher.VarRelationship)
	if err != nil {
		return nil, err
	}

	subject, err := toEntity(subjectNode)
	if err != nil {
		return nil, err
	}
	object, err := toEntity(objectNode)
	if err != nil {
		return nil, err
	}
	relationship, err := toRelationship(rel)
	if err != nil {
		return nil, err
	}
	return &domain.RelationshipPath{Subject: subject, Object: object, Relationship: relationship}, nil
}

func mapExists(records []*neo4j.Record) (bool, error) {
	if len(records) == 0 {
		return false, nil
	}
	v, ok := records[0].Get(cypher.VarFound)
	if !ok {
		return false, missing(cypher.VarFound)
	}
	found, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("record field %q: expected bool, got %T", cypher.VarFound, v)
	}
	return found, nil
}

// --- NOEUDS / ARÊTES ---

func toEntity(node neo4j.Node) (domain.Entity, error) {
	label, err := domain.ResolveEntityLabel(node.Labels)
	if err != nil {
		return domain.Entity{}, fmt.Errorf("node %s: %w", node.ElementId, err)
	}
	p := props(node.Props)

	e := domain.Entity{
		Label:       label,
		ID:          p.str("id"),
		Name:        p.str("name"),
		Active:      p.boolean("active"),
		Description: p.optStr("description"),
	}
	if t := p.timestamp("creationDateTime"); t != nil {
		e.CreationDateTime = *t
	}

	switch label {
	case domain.LabelPerson:
		e.Uname = p.str("uname")
		e.Email = p.optStr("email")
		e.Role = p.optStr("role")
	case domain.LabelPlace:
		e.Address = p.optStr("address")
	case domain.LabelThing:
		e.Kinds = p.strs("kinds")
	}
	return e, nil
}

func toRelationship(rel neo4j.Relationship) (domain.Relationship, error) {
	t := domain.RelationshipType(rel.Type)
	if !t.Valid() {
		return domain.Relationship{}, fmt.Errorf("relationship %s: %w: type %q", rel.ElementId, domain.ErrIndeterminateType, rel.Type)
	}
	p := props(rel.Props)
	return domain.Relationship{
		Type:             t,
		Descriptor:       p.optStr("descriptor"),
		CreationDateTime: p.timestamp("creationDateTime"),
	}, nil
}

// toPost lit le noeud post et son arête AUTHORED. La date de création vient de l'arête.
func toPost(rec *neo4j.Record, authorID string) (*domain.Post, error) {
	node, err := nodeAt(rec, cypher.VarPost)
	if err != nil {
		return nil, err
	}
	rel, err := relationshipAt(rec, cypher.VarRelationship)
	if err != nil {
		return nil, err
	}
	postType, err := domain.ResolvePostType(node.Labels)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", node.ElementId, err)
	}
	p := props(node.Props)

	created := props(rel.Props).timestamp("creationDateTime")
	if created == nil {
		created = p.timestamp("creationDateTime")
	}
	if created == nil {
		return nil, fmt.Errorf("post %s: missing creationDateTime", node.ElementId)
	}

	visibility := make([]domain.Visibility, 0)
	for _, s := range p.strs("visibility") {
		v := domain.Visibility(s)
		if !v.Valid() {
			return nil, fmt.Errorf("post %s: unknown visibility %q", node.ElementId, s)
		}
		visibility = append(visibility, v)
	}

	post := &domain.Post{
		ID:                   p.str("id"),
		Type:                 postType,
		AuthorID:             authorID,
		CreationDateTime:     *created,
		ActivationDateTime:   p.timestamp("activationDateTime"),
		DeactivationDateTime: p.timestamp("deactivationDateTime"),
		Visibility:           visibility,
	}
	if post.ActivationDateTime == nil {
		post.ActivationDateTime = created
	}
	if postType == domain.PostTypeText {
		post.Content = p.str("content")
	} else {
		post.URL = p.str("url")
	}
	return post, nil
}

func nodeAt(rec *neo4j.Record, key string) (neo4j.Node, error) {
	v, ok := rec.Get(key)
	if !ok {
		return neo4j.Node{}, missing(key)
	}
	node, ok := v.(neo4j.Node)
	if !ok {
		return neo4j.Node{}, fmt.Errorf("record field %q: expected node, got %T", key, v)
	}
	return node, nil
}

func relationshipAt(rec *neo4j.Record, key string) (neo4j.Relationship, error) {
	v, ok := rec.Get(key)
	if !ok {
		return neo4j.Relationship{}, missing(key)
	}
	rel, ok := v.(neo4j.Relationship)
	if !ok {
		return neo4j.Relationship{}, fmt.Errorf("record field %q: expected relationship, got %T", key, v)
	}
	return rel, nil
}

func missing(key string) error {
	return fmt.Errorf("record field %q missing", key)
}

// --- PROPRIÉTÉS ---

type props map[string]any

func (p props) str(key string) string {
	s, _ := p[key].(string)
	return s
}

func (p props) optStr(key string) *string {
	s, ok := p[key].(string)
	if !ok {
		return nil
	}
	return &s
}

func (p props) boolean(key string) bool {
	b, _ := p[key].(bool)
	return b
}

func (p props) strs(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// timestamp accepte les types temporels du driver et les anciens timestamps en millisecondes epoch.
func (p props) timestamp(key string) *time.Time {
	var t time.Time
	switch v := p[key].(type) {
	case time.Time:
		t = v
	case neo4j.LocalDateTime:
		t = v.Time()
	case neo4j.Date:
		t = v.Time()
	case int64:
		t = time.UnixMilli(v).UTC()
	case float64:
		t = time.UnixMilli(int64(v)).UTC()
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil
		}
		t = parsed
	default:
		return nil
	}
	return &t
}
