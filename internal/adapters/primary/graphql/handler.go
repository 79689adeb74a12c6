package graphql

import (
	"net/http"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"github.com/jupiterclapton/cenackle/services/community-service/internal/auth"
)

// NewHandler monte le schéma sur HTTP (POST JSON) avec l'identité de l'appelant dans le contexte.
func NewHandler(schema *graphql.Schema) http.Handler {
	return auth.Middleware(&relay.Handler{Schema: schema})
}
