package services

import (
	"context"
	"errors"
	"log"

	"campus-rms/internal/adapters/persistence/repositories"
	"campus-rms/internal/core/domain"
	"campus-rms/internal/core/graph"
)

// DocumentOp is the entity store half of a mutation. It receives the store
// bound to the current session and must use only that handle.
type DocumentOp func(ctx context.Context, store repositories.Store) error

// Coordinator applies a mutation to both stores. There is no shared
// transaction: whichever side is written first stays written when the second
// side fails, and the caller gets a write-phase error.
type Coordinator struct {
	graph    graph.Store
	entities repositories.Store
}

// NewCoordinator creates a new dual-write coordinator
func NewCoordinator(graphStore graph.Store, entityStore repositories.Store) *Coordinator {
	return &Coordinator{
		graph:    graphStore,
		entities: entityStore,
	}
}

// Apply runs every graph op in order inside one relationship store session,
// then, only if they all succeeded, runs doc inside one entity store session.
// A nil doc makes the mutation graph only.
func (c *Coordinator) Apply(ctx context.Context, name string, ops []graph.Op, doc DocumentOp) error {
	if err := c.applyGraph(ctx, name, ops); err != nil {
		return err
	}
	if doc == nil {
		return nil
	}

	if err := c.entities.WithSession(ctx, doc); err != nil {
		if len(ops) > 0 {
			log.Printf("❌ %s: document write failed, graph left ahead of documents: %v", name, err)
		}
		return domain.DocumentWriteFailed(name, err)
	}
	return nil
}

// ApplyDocumentFirst is used by deletes: the entity store record goes first,
// then the graph ops. A graph failure leaves a node without a document.
func (c *Coordinator) ApplyDocumentFirst(ctx context.Context, name string, doc DocumentOp, ops []graph.Op) error {
	if err := c.entities.WithSession(ctx, doc); err != nil {
		return domain.DocumentWriteFailed(name, err)
	}
	if err := c.applyGraph(ctx, name, ops); err != nil {
		log.Printf("❌ %s: graph write failed, documents already removed: %v", name, err)
		return err
	}
	return nil
}

func (c *Coordinator) applyGraph(ctx context.Context, name string, ops []graph.Op) (err error) {
	if len(ops) == 0 {
		return nil
	}

	session, err := c.graph.Session(ctx)
	if err != nil {
		return domain.Unavailable("relationship store", err)
	}
	defer func() {
		if cerr := session.Close(ctx); cerr != nil {
			log.Printf("⚠️ %s: failed to close graph session: %v", name, cerr)
		}
	}()

	for i, op := range ops {
		if err := session.Apply(ctx, op); err != nil {
			if i > 0 {
				log.Printf("⚠️ %s: %d of %d graph ops applied before %q failed", name, i, len(ops), op.Name())
			}
			return domain.GraphWriteFailed(op.Name(), err)
		}
	}
	return nil
}

// readErr converts an entity store read failure into the error taxonomy
func readErr(err error, format string, args ...any) error {
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return domain.NotFound(format, args...)
	}
	return domain.Unavailable("entity store", err)
}

// graphReadErr converts a relationship store read failure
func graphReadErr(err error) error {
	return domain.Unavailable("relationship store", err)
}
