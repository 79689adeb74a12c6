package domain

import (
	"fmt"
	"strings"
)

// EntityLabel est le discriminant (__typename) d'une Entity.
type EntityLabel string

const (
	LabelPerson   EntityLabel = "Person"
	LabelPlace    EntityLabel = "Place"
	LabelThing    EntityLabel = "Thing"
	LabelBusiness EntityLabel = "Business"
	LabelGroup    EntityLabel = "Group"
	LabelEvent    EntityLabel = "Event"
)

// EntityLabels est l'ensemble fermé, dans un ordre stable (utilisé pour construire les requêtes).
var EntityLabels = []EntityLabel{LabelPerson, LabelPlace, LabelThing, LabelBusiness, LabelGroup, LabelEvent}

func (l EntityLabel) Valid() bool {
	for _, known := range EntityLabels {
		if l == known {
			return true
		}
	}
	return false
}

// PostType est le sous-type concret d'un Post. Tout noeud post porte aussi le label "Post".
type PostType string

const (
	PostTypeText  PostType = "TextPost"
	PostTypeImage PostType = "ImagePost"
	PostTypeAudio PostType = "AudioPost"
	PostTypeVideo PostType = "VideoPost"
	PostTypeLink  PostType = "LinkPost"

	// PostLabel est le label commun à tous les sous-types.
	PostLabel = "Post"
)

var PostTypes = []PostType{PostTypeText, PostTypeImage, PostTypeAudio, PostTypeVideo, PostTypeLink}

func (t PostType) Valid() bool {
	for _, known := range PostTypes {
		if t == known {
			return true
		}
	}
	return false
}

// RelationshipType est le type d'une arête dirigée.
type RelationshipType string

const (
	RelFamily      RelationshipType = "FAMILY"
	RelFollow      RelationshipType = "FOLLOW"
	RelFriend      RelationshipType = "FRIEND"
	RelOwnership   RelationshipType = "OWNERSHIP"
	RelEmployment  RelationshipType = "EMPLOYMENT"
	RelMembership  RelationshipType = "MEMBERSHIP"
	RelAffiliation RelationshipType = "AFFILIATION"
	RelAuthored    RelationshipType = "AUTHORED"
)

// RelationshipTypes contient l'ensemble fermé complet, AUTHORED inclus.
var RelationshipTypes = []RelationshipType{
	RelFamily, RelFollow, RelFriend, RelOwnership, RelEmployment, RelMembership, RelAffiliation, RelAuthored,
}

func (t RelationshipType) Valid() bool {
	for _, known := range RelationshipTypes {
		if t == known {
			return true
		}
	}
	return false
}

// BetweenEntities indique si le type relie deux Entities.
// AUTHORED est réservé au lien Person -> Post.
func (t RelationshipType) BetweenEntities() bool {
	return t.Valid() && t != RelAuthored
}

// Direction classe une arête vue depuis le noeud primaire.
type Direction string

const (
	DirectionOut           Direction = "OUT"
	DirectionIn            Direction = "IN"
	DirectionBidirectional Direction = "BIDIRECTIONAL"
)

func (d Direction) Valid() bool {
	switch d {
	case DirectionOut, DirectionIn, DirectionBidirectional:
		return true
	}
	return false
}

// Includes dit si une arête classée `edge` (OUT ou IN) passe le filtre `d`.
// BIDIRECTIONAL ne filtre rien.
func (d Direction) Includes(edge Direction) bool {
	if d == DirectionOut || d == DirectionIn {
		return edge == d
	}
	return true
}

// Visibility est une portée de visibilité d'un post.
type Visibility string

const (
	VisibilityPublic       Visibility = "PUBLIC"
	VisibilityFamily       Visibility = "FAMILY"
	VisibilityFriends      Visibility = "FRIENDS"
	VisibilityFollowers    Visibility = "FOLLOWERS"
	VisibilityMembers      Visibility = "MEMBERS"
	VisibilityAffiliations Visibility = "AFFILIATIONS"
)

var Visibilities = []Visibility{
	VisibilityPublic, VisibilityFamily, VisibilityFriends, VisibilityFollowers, VisibilityMembers, VisibilityAffiliations,
}

func (v Visibility) Valid() bool {
	for _, known := range Visibilities {
		if v == known {
			return true
		}
	}
	return false
}

// --- PARSING (valeurs client -> ensembles fermés) ---

func ParseEntityLabels(raw []string) ([]EntityLabel, error) {
	out := make([]EntityLabel, 0, len(raw))
	for _, s := range raw {
		l := EntityLabel(s)
		if !l.Valid() {
			return nil, fmt.Errorf("%w: unknown entity label %q", ErrInvalidArgument, s)
		}
		out = append(out, l)
	}
	return out, nil
}

func ParsePostTypes(raw []string) ([]PostType, error) {
	out := make([]PostType, 0, len(raw))
	for _, s := range raw {
		t := PostType(s)
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unknown post type %q", ErrInvalidArgument, s)
		}
		out = append(out, t)
	}
	return out, nil
}

// ParseEntityRelationshipTypes n'accepte que les types reliant deux Entities.
func ParseEntityRelationshipTypes(raw []string) ([]RelationshipType, error) {
	out := make([]RelationshipType, 0, len(raw))
	for _, s := range raw {
		t, err := ParseEntityRelationshipType(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func ParseEntityRelationshipType(s string) (RelationshipType, error) {
	t := RelationshipType(s)
	if !t.BetweenEntities() {
		return "", fmt.Errorf("%w: unsupported relationship type %q", ErrInvalidArgument, s)
	}
	return t, nil
}

// ParseDirection : chaîne vide = BIDIRECTIONAL.
func ParseDirection(s string) (Direction, error) {
	if s == "" {
		return DirectionBidirectional, nil
	}
	d := Direction(strings.ToUpper(s))
	if !d.Valid() {
		return "", fmt.Errorf("%w: unknown direction %q", ErrInvalidArgument, s)
	}
	return d, nil
}

func ParseVisibilities(raw []string) ([]Visibility, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: at least one visibility is required", ErrInvalidArgument)
	}
	out := make([]Visibility, 0, len(raw))
	for _, s := range raw {
		v := Visibility(s)
		if !v.Valid() {
			return nil, fmt.Errorf("%w: unknown visibility %q", ErrInvalidArgument, s)
		}
		out = append(out, v)
	}
	return out, nil
}

// --- RÉSOLUTION DU TYPE (labels du noeud -> variante) ---

// ResolveEntityLabel intersecte les labels d'un noeud avec l'ensemble fermé.
// Zéro ou plusieurs correspondances -> ErrIndeterminateType.
func ResolveEntityLabel(labels []string) (EntityLabel, error) {
	var found []EntityLabel
	for _, l := range labels {
		if el := EntityLabel(l); el.Valid() {
			found = append(found, el)
		}
	}
	if len(found) != 1 {
		return "", fmt.Errorf("%w: labels %v match %d entity labels", ErrIndeterminateType, labels, len(found))
	}
	return found[0], nil
}

// ResolvePostType fait de même pour les sous-types de Post (le label "Post" est ignoré).
func ResolvePostType(labels []string) (PostType, error) {
	var found []PostType
	for _, l := range labels {
		if pt := PostType(l); pt.Valid() {
			found = append(found, pt)
		}
	}
	if len(found) != 1 {
		return "", fmt.Errorf("%w: labels %v match %d post types", ErrIndeterminateType, labels, len(found))
	}
	return found[0], nil
}
