package domain

import "errors"

// --- ERREURS DU DOMAINE ---
var (
	// ErrInvalidArgument couvre toute valeur hors des ensembles fermés (label, type de relation, direction...)
	// ou un argument requis manquant. Rejetée AVANT toute requête.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound : une mutation unitaire n'a produit aucun enregistrement (auteur ou extrémité absente).
	ErrNotFound = errors.New("not found")

	// ErrIDGenerationExhausted : toutes les tentatives de génération d'un id de post ont collisionné.
	ErrIDGenerationExhausted = errors.New("post id generation exhausted")

	// ErrIndeterminateType : un noeud ne porte pas exactement un label de l'ensemble fermé.
	// C'est un défaut de données à remonter, jamais un type par défaut.
	ErrIndeterminateType = errors.New("indeterminate node type")
)
