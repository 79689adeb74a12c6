package eventbroker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/ports"
)

const (
	SubjectPostAuthored            = "post.authored"
	SubjectRelationshipEstablished = "relationship.established"
)

// msgPublisher est la partie de *nats.Conn utilisée ici.
type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

type NatsPublisher struct {
	nc msgPublisher
}

func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return &NatsPublisher{nc: nc}
}

var _ ports.EventPublisher = (*NatsPublisher)(nil)

// Contrats implicites avec feed-service et notification-service
type PostAuthoredEvent struct {
	ID                 string    `json:"id"`
	AuthorID           string    `json:"author_id"`
	Type               string    `json:"type"`
	Visibility         []string  `json:"visibility"`
	CreatedAt          time.Time `json:"created_at"`
	ActivationDateTime time.Time `json:"activation_date_time"`
}

type RelationshipEstablishedEvent struct {
	SubjectID   string  `json:"subject_id"`
	SubjectType string  `json:"subject_type"`
	ObjectID    string  `json:"object_id"`
	ObjectType  string  `json:"object_type"`
	Type        string  `json:"type"`
	Descriptor  *string `json:"descriptor,omitempty"`
}

func (p *NatsPublisher) PublishPostAuthored(ctx context.Context, post *domain.Post) error {
	visibility := make([]string, 0, len(post.Visibility))
	for _, v := range post.Visibility {
		visibility = append(visibility, string(v))
	}
	event := PostAuthoredEvent{
		ID:         post.ID,
		AuthorID:   post.AuthorID,
		Type:       string(post.Type),
		Visibility: visibility,
		CreatedAt:  post.CreationDateTime,
	}
	if post.ActivationDateTime != nil {
		event.ActivationDateTime = *post.ActivationDateTime
	}
	return p.publish(ctx, SubjectPostAuthored, event, "post_id", post.ID)
}

func (p *NatsPublisher) PublishRelationshipEstablished(ctx context.Context, path *domain.RelationshipPath) error {
	event := RelationshipEstablishedEvent{
		SubjectID:   path.Subject.ID,
		SubjectType: string(path.Subject.Label),
		ObjectID:    path.Object.ID,
		ObjectType:  string(path.Object.Label),
		Type:        string(path.Relationship.Type),
		Descriptor:  path.Relationship.Descriptor,
	}
	return p.publish(ctx, SubjectRelationshipEstablished, event, "subject_id", path.Subject.ID)
}

func (p *NatsPublisher) publish(ctx context.Context, subject string, event any, logArgs ...any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling error: %w", err)
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{},
	}
	// 👇 Propagation du contexte de trace dans les headers NATS
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	slog.DebugContext(ctx, "📢 Publishing event", append([]any{"topic", subject}, logArgs...)...)
	return p.nc.PublishMsg(msg)
}

// NoopPublisher est utilisé quand NATS_URL est vide.
type NoopPublisher struct{}

func (NoopPublisher) PublishPostAuthored(context.Context, *domain.Post) error { return nil }

func (NoopPublisher) PublishRelationshipEstablished(context.Context, *domain.RelationshipPath) error {
	return nil
}
