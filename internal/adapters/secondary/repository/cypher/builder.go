// Package cypher construit les requêtes Cypher paramétrées du graphe social.
//
// Seuls des fragments structurels issus des ensembles fermés du domaine
// (labels, types de relation, clés de propriété connues) entrent dans le
// texte de la requête ; toute valeur passe par la map de paramètres.
package cypher

import (
	"fmt"
	"strings"

	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/domain"
)

// Query est un template Cypher et ses paramètres nommés.
type Query struct {
	Text   string
	Params map[string]any
}

type builder struct {
	clauses []string
	where   []string
	tail    []string
	params  map[string]any
}

func newBuilder() *builder {
	return &builder{params: map[string]any{}}
}

// clause ajoute un fragment structurel (jamais une valeur client).
func (b *builder) clause(format string, args ...any) {
	b.clauses = append(b.clauses, fmt.Sprintf(format, args...))
}

// param enregistre une valeur et renvoie son placeholder.
func (b *builder) param(name string, value any) string {
	b.params[name] = value
	return "$" + name
}

func (b *builder) filter(format string, args ...any) {
	b.where = append(b.where, fmt.Sprintf(format, args...))
}

// finally ajoute les clauses RETURN / ORDER BY / LIMIT, après le WHERE.
func (b *builder) finally(format string, args ...any) {
	b.tail = append(b.tail, fmt.Sprintf(format, args...))
}

func (b *builder) build() Query {
	lines := append([]string{}, b.clauses...)
	if len(b.where) > 0 {
		lines = append(lines, "WHERE "+strings.Join(b.where, " AND "))
	}
	lines = append(lines, b.tail...)
	return Query{Text: strings.Join(lines, "\n"), Params: b.params}
}

// --- FRAGMENTS STRUCTURELS ---

// entityLabelExpr renvoie ":Person|Place|..." ; vide = tous les labels d'Entity.
func entityLabelExpr(labels []domain.EntityLabel) (string, error) {
	if len(labels) == 0 {
		labels = domain.EntityLabels
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		if !l.Valid() {
			return "", fmt.Errorf("%w: unknown entity label %q", domain.ErrInvalidArgument, l)
		}
		parts = append(parts, string(l))
	}
	return ":" + strings.Join(dedupe(parts), "|"), nil
}

func postTypeExpr(types []domain.PostType) (string, error) {
	if len(types) == 0 {
		types = domain.PostTypes
	}
	parts := make([]string, 0, len(types))
	for _, t := range types {
		if !t.Valid() {
			return "", fmt.Errorf("%w: unknown post type %q", domain.ErrInvalidArgument, t)
		}
		parts = append(parts, string(t))
	}
	return ":" + strings.Join(dedupe(parts), "|"), nil
}

// entityRelTypeExpr n'accepte que les types reliant deux Entities ; vide = tous.
func entityRelTypeExpr(types []domain.RelationshipType) (string, error) {
	if len(types) == 0 {
		for _, t := range domain.RelationshipTypes {
			if t.BetweenEntities() {
				types = append(types, t)
			}
		}
	}
	parts := make([]string, 0, len(types))
	for _, t := range types {
		if !t.BetweenEntities() {
			return "", fmt.Errorf("%w: unsupported relationship type %q", domain.ErrInvalidArgument, t)
		}
		parts = append(parts, string(t))
	}
	return ":" + strings.Join(dedupe(parts), "|"), nil
}

// asDateTime ramène une propriété temporelle à un DATETIME comparable :
// anciens timestamps epoch-ms (entier ou flottant), LOCAL DATETIME et DATE lus en UTC.
// Sans cela, une comparaison entier < datetime vaut null et la ligne disparaît.
func asDateTime(prop string) string {
	return fmt.Sprintf("CASE"+
		" WHEN %[1]s IS :: INTEGER NOT NULL THEN datetime({epochMillis: %[1]s})"+
		" WHEN %[1]s IS :: FLOAT NOT NULL THEN datetime({epochMillis: toInteger(%[1]s)})"+
		" WHEN %[1]s IS :: LOCAL DATETIME NOT NULL THEN datetime({datetime: %[1]s, timezone: 'UTC'})"+
		" WHEN %[1]s IS :: DATE NOT NULL THEN datetime({date: %[1]s, timezone: 'UTC'})"+
		" ELSE %[1]s END", prop)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func requireID(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", domain.ErrInvalidArgument, name)
	}
	return nil
}

func invalid(field, value string) error {
	return fmt.Errorf("%w: unknown %s %q", domain.ErrInvalidArgument, field, value)
}

func lower(s string) string {
	return strings.ToLower(s)
}
