package domain

import (
	"context"
	"time"
)

// EventType defines the category of a store event.
type EventType string

const (
	EventFlowSaved   EventType = "flow_saved"
	EventFlowDeleted EventType = "flow_deleted"
)

// FlowEvent describes a change persisted by a flow store.
type FlowEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	FlowUUID  string    `json:"flow_uuid"`
	Revision  int       `json:"revision,omitempty"`
	Diff      *FlowDiff `json:"diff,omitempty"`
}

// LifecycleHooks defines callbacks for store observability.
type LifecycleHooks struct {
	OnFlowSaved   func(context.Context, *FlowEvent)
	OnFlowDeleted func(context.Context, *FlowEvent)
}

// CombineHooks returns hooks that call each of hooks in order.
func CombineHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnFlowSaved: func(ctx context.Context, e *FlowEvent) {
			for _, h := range hooks {
				if h.OnFlowSaved != nil {
					h.OnFlowSaved(ctx, e)
				}
			}
		},
		OnFlowDeleted: func(ctx context.Context, e *FlowEvent) {
			for _, h := range hooks {
				if h.OnFlowDeleted != nil {
					h.OnFlowDeleted(ctx, e)
				}
			}
		},
	}
}
