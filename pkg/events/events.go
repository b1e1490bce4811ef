// Package events defines the lifecycle notifications published when workflow
// definitions are created, edited, saved or deleted.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic carries every workflow lifecycle event.
const Topic = "flowboard.workflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowCreatedEvent EventType = "workflow.created"
	WorkflowEditedEvent  EventType = "workflow.edited"
	WorkflowSavedEvent   EventType = "workflow.saved"
	WorkflowDeletedEvent EventType = "workflow.deleted"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// WorkflowCreated is published once a new definition has been stored.
type WorkflowCreated struct {
	BaseEvent

	Name      string `json:"name"`
	Template  string `json:"template,omitempty"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (w WorkflowCreated) GetType() EventType {
	return WorkflowCreatedEvent
}

// WorkflowEdited is published for every edit applied to an open session.
// The change is not persisted until a WorkflowSaved follows.
type WorkflowEdited struct {
	BaseEvent

	Edit   string `json:"edit"`
	NodeID string `json:"node_id,omitempty"`
	EdgeID string `json:"edge_id,omitempty"`
}

func (w WorkflowEdited) GetType() EventType {
	return WorkflowEditedEvent
}

type WorkflowSaved struct {
	BaseEvent

	Name      string `json:"name"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (w WorkflowSaved) GetType() EventType {
	return WorkflowSavedEvent
}

type WorkflowDeleted struct {
	BaseEvent
}

func (w WorkflowDeleted) GetType() EventType {
	return WorkflowDeletedEvent
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		Metadata:   make(map[string]any),
	}
}
