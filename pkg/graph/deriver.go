package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JayKakadiya/ui-plugin-samples/pkg/common"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// Messages attached to graphs that have nothing, or only part, to show.
const (
	MessageNoFocus       = "Entity details not available to load connections"
	MessageNoConnections = "Entity does not have any connections"
	MessageSchemaFailed  = "Relationship model could not be loaded for this entity type"
	MessageEntityFailed  = "Entity details could not be loaded, showing relationship types only"
	MessageEntityMissing = "Entity could not be found, showing relationship types only"
)

// DefaultTimeout bounds one derivation, both fetches included.
const DefaultTimeout = 30 * time.Second

// SchemaSource returns the relationship definitions of an entity type keyed by
// relationship-type name. Candidates of a type must be in schema order: the
// first owned candidate provides the label.
type SchemaSource interface {
	RelationshipModels(ctx context.Context, qc common.QueryContext, entityType string) (*common.RelationshipModels, error)
}

// EntitySource fetches one entity restricted to entityType with the given
// relationship types. A lookup the data-access layer answers without success
// is reported through EntityFetch.Success; errors are transport faults.
type EntitySource interface {
	GetEntity(ctx context.Context, qc common.QueryContext, id, entityType string, relTypes []string) (common.EntityFetch, error)
}

// GraphDeriver derives the connections graph of an entity.
//
// Concurrent derivations of the same focus share one in-flight run.
type GraphDeriver struct {
	schema   SchemaSource
	entities EntitySource
	timeout  time.Duration
	group    singleflight.Group
}

// NewGraphDeriverParams defines the sources and limits of a GraphDeriver.
//
// Timeout bounds one derivation; zero means DefaultTimeout.
type NewGraphDeriverParams struct {
	Schema   SchemaSource
	Entities EntitySource
	Timeout  time.Duration
}

// NewGraphDeriver creates a GraphDeriver. Both sources are required.
func NewGraphDeriver(params NewGraphDeriverParams) (*GraphDeriver, error) {
	if params.Schema == nil || params.Entities == nil {
		return nil, errors.New("graph deriver needs a schema source and an entity source")
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GraphDeriver{
		schema:   params.Schema,
		entities: params.Entities,
		timeout:  timeout,
	}, nil
}

// Derive builds the connections graph of the focus entity.
//
// The returned graph is never nil. A non-nil error reports a transport fault;
// the graph then holds whatever could be derived and a message saying so.
// Callers sharing an in-flight derivation receive the same graph and must not
// modify it.
func (d *GraphDeriver) Derive(ctx context.Context, focus common.Focus) (*common.Graph, error) {
	if focus.IsEmpty() {
		return common.NewEmptyGraph(MessageNoFocus), nil
	}

	ch := d.group.DoChan(focus.Key(), func() (any, error) {
		// The run is shared, so it must outlive the first caller.
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		return d.derive(runCtx, focus)
	})

	select {
	case <-ctx.Done():
		return common.NewEmptyGraph(MessageEntityFailed), ctx.Err()
	case res := <-ch:
		graph, _ := res.Val.(*common.Graph)
		if graph == nil {
			graph = common.NewEmptyGraph(MessageEntityFailed)
		}
		if res.Shared {
			logger.Debug("[Graph] Shared in-flight derivation", "entity_id", focus.EntityID)
		}
		return graph, res.Err
	}
}

func (d *GraphDeriver) derive(ctx context.Context, focus common.Focus) (*common.Graph, error) {
	start := time.Now()

	models, err := d.schema.RelationshipModels(ctx, focus.Query, focus.EntityType)
	if err != nil {
		logger.Warn("[Graph] Relationship models unavailable", "entity_type", focus.EntityType, "err", err)
		return common.NewEmptyGraph(MessageSchemaFailed), fmt.Errorf("loading relationship models of %s: %w", focus.EntityType, err)
	}

	relTypes := DeriveRelationshipTypeNodes(focus.EntityID, models)

	related, err := d.DeriveRelatedEntityNodes(ctx, focus, relTypes)
	if err != nil {
		logger.Warn("[Graph] Entity snapshot unavailable", "entity_id", focus.EntityID, "err", err)
		graph := Assemble(relTypes, related)
		graph.Message = MessageEntityFailed
		return graph, err
	}

	graph := Assemble(relTypes, related)
	switch {
	case related.IsEmpty() && len(relTypes.Nodes) == 0:
		graph.Message = MessageNoConnections
	case related.IsEmpty():
		graph.Message = MessageEntityMissing
	case len(graph.Edges) == 0:
		graph.Message = MessageNoConnections
	}

	logger.Debug("[Graph] Derived connections",
		"entity_id", focus.EntityID,
		"entity_type", focus.EntityType,
		"nodes", len(graph.Nodes),
		"edges", len(graph.Edges),
		"took", time.Since(start),
	)
	return graph, nil
}
