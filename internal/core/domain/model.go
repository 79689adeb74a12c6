package domain

import "time"

// Entity est la variante étiquetée d'un noeud du graphe social.
// Label est le discriminant (__typename); les attributs spécifiques ne sont
// renseignés que pour la variante concernée.
type Entity struct {
	Label            EntityLabel
	ID               string
	Name             string
	CreationDateTime time.Time
	Active           bool
	Description      *string

	// Person
	Uname string
	Email *string
	Role  *string

	// Place
	Address *string

	// Thing
	Kinds []string
}

// Relationship représente une arête dirigée Subject -> Object.
type Relationship struct {
	Type       RelationshipType
	Descriptor *string
	// Uniquement pour AUTHORED (immuable, posé à la création)
	CreationDateTime *time.Time
}

// RelatedEntity est un résultat de traversée depuis un noeud primaire.
type RelatedEntity struct {
	Entity       Entity
	Relationship Relationship
	// OUT si l'arête termine sur l'entité liée, IN sinon
	Direction Direction
}

// RelationshipPath est la vue retournée par establishRelationship.
type RelationshipPath struct {
	Subject      Entity
	Object       Entity
	Relationship Relationship
}

// Post et ses sous-types. Le payload dépend de Type :
// TextPost -> Content ; Image/Audio/Video/LinkPost -> URL.
type Post struct {
	ID                   string
	Type                 PostType
	AuthorID             string
	CreationDateTime     time.Time
	ActivationDateTime   *time.Time
	DeactivationDateTime *time.Time
	Visibility           []Visibility

	Content string
	URL     string
}

// TimeWindow : bornes strictes optionnelles et indépendantes.
// nil = pas de contrainte (jamais de valeur par défaut).
type TimeWindow struct {
	Before *time.Time
	After  *time.Time
}

// Contains applique la même sémantique que la requête (strict < et >).
func (w TimeWindow) Contains(t time.Time) bool {
	if w.Before != nil && !t.Before(*w.Before) {
		return false
	}
	if w.After != nil && !t.After(*w.After) {
		return false
	}
	return true
}
