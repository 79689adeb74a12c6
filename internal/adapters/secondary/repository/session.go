package repository

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/jupiterclapton/cenackle/services/community-service/internal/adapters/secondary/repository/cypher"
)

// txRunner exécute une requête dans sa propre session et renvoie tous les enregistrements.
// Chaque appel ouvre une session et la ferme avant de rendre la main.
type txRunner interface {
	// read : fonction de transaction en lecture, rejouée par le driver sur erreur transitoire.
	read(ctx context.Context, q cypher.Query) ([]*neo4j.Record, error)
	// write : fonction de transaction en écriture, rejouable. Réservée aux requêtes idempotentes (MERGE, schéma).
	write(ctx context.Context, q cypher.Query) ([]*neo4j.Record, error)
	// writeOnce : transaction explicite, jamais rejouée (CREATE).
	writeOnce(ctx context.Context, q cypher.Query) ([]*neo4j.Record, error)
}

type driverRunner struct {
	driver   neo4j.DriverWithContext
	database string
	tracer   trace.Tracer
}

func newDriverRunner(driver neo4j.DriverWithContext, database string) *driverRunner {
	return &driverRunner{
		driver:   driver,
		database: database,
		tracer:   otel.Tracer("community-service/neo4j"),
	}
}

func (d *driverRunner) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return d.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: d.database})
}

// collect est la fonction de transaction commune : Run puis lecture complète du curseur
// avant la fin de la transaction.
func collect(ctx context.Context, q cypher.Query) neo4j.ManagedTransactionWorkT[[]*neo4j.Record] {
	return func(tx neo4j.ManagedTransaction) ([]*neo4j.Record, error) {
		res, err := tx.Run(ctx, q.Text, q.Params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	}
}

func (d *driverRunner) read(ctx context.Context, q cypher.Query) ([]*neo4j.Record, error) {
	ctx, span := d.startSpan(ctx, "neo4j.read", q)
	defer span.End()

	session := d.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	records, err := neo4j.ExecuteRead(ctx, session, collect(ctx, q))
	return records, d.endSpan(span, "read", err)
}

func (d *driverRunner) write(ctx context.Context, q cypher.Query) ([]*neo4j.Record, error) {
	ctx, span := d.startSpan(ctx, "neo4j.write", q)
	defer span.End()

	session := d.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	records, err := neo4j.ExecuteWrite(ctx, session, collect(ctx, q))
	return records, d.endSpan(span, "write", err)
}

func (d *driverRunner) writeOnce(ctx context.Context, q cypher.Query) (records []*neo4j.Record, err error) {
	ctx, span := d.startSpan(ctx, "neo4j.write", q)
	defer span.End()
	defer func() { err = d.endSpan(span, "write", err) }()

	session := d.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}
	// Sans effet après un Commit réussi
	defer tx.Close(ctx)

	res, err := tx.Run(ctx, q.Text, q.Params)
	if err != nil {
		return nil, err
	}
	if records, err = res.Collect(ctx); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

// startSpan n'attache que le template : les valeurs restent hors des traces.
func (d *driverRunner) startSpan(ctx context.Context, name string, q cypher.Query) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		semconv.DBSystemNeo4j,
		semconv.DBStatementKey.String(q.Text),
	}
	if d.database != "" {
		attrs = append(attrs, semconv.DBNameKey.String(d.database))
	}
	return d.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

func (d *driverRunner) endSpan(span trace.Span, op string, err error) error {
	if err == nil {
		return nil
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return fmt.Errorf("neo4j %s: %w", op, err)
}
