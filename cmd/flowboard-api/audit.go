package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flowboard/flowboard/pkg/eventbus"
	"github.com/flowboard/flowboard/pkg/events"
)

var auditedEvents = []events.EventType{
	events.WorkflowCreatedEvent,
	events.WorkflowEditedEvent,
	events.WorkflowSavedEvent,
	events.WorkflowDeletedEvent,
}

// subscribeAuditLog writes one log line per lifecycle event seen on the bus.
// With a Kafka bus every instance joins the same consumer group, so each one
// logs only the events on the partitions assigned to it.
func subscribeAuditLog(ctx context.Context, bus eventbus.EventSubscriber, logger *slog.Logger) error {
	audit := logger.With("component", "audit")

	for _, eventType := range auditedEvents {
		err := bus.Handle(eventType, func(ctx context.Context, event any) error {
			audit.InfoContext(ctx, "workflow lifecycle event", auditAttrs(event)...)

			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to register %s handler: %w", eventType, err)
		}
	}

	if err := bus.Subscribe(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to workflow events: %w", err)
	}

	return nil
}

func auditAttrs(event any) []any {
	switch e := event.(type) {
	case *events.WorkflowCreated:
		return []any{"event_type", e.Type, "workflow_id", e.WorkflowID, "template", e.Template, "nodes", e.NodeCount}
	case *events.WorkflowEdited:
		return []any{"event_type", e.Type, "workflow_id", e.WorkflowID, "edit", e.Edit, "node_id", e.NodeID, "edge_id", e.EdgeID}
	case *events.WorkflowSaved:
		return []any{"event_type", e.Type, "workflow_id", e.WorkflowID, "nodes", e.NodeCount, "edges", e.EdgeCount}
	case *events.WorkflowDeleted:
		return []any{"event_type", e.Type, "workflow_id", e.WorkflowID}
	default:
		return []any{"event", fmt.Sprintf("%T", event)}
	}
}
