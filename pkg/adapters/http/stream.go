package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/flowgraph/internal/logging"
	"github.com/aretw0/flowgraph/pkg/domain"
)

// StreamManager fans flow events out to SSE subscribers, keyed by flow
// uuid.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager. A nil logger discards.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for flowUUID. The returned func
// unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(flowUUID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[flowUUID]; !ok {
		sm.subscribers[flowUUID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[flowUUID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[flowUUID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, flowUUID)
			}
		}
	}
}

// Subscribers returns the number of active subscribers for flowUUID.
func (sm *StreamManager) Subscribers(flowUUID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[flowUUID])
}

// Broadcast sends msg to every subscriber of flowUUID. Slow subscribers
// miss messages instead of blocking the sender.
func (sm *StreamManager) Broadcast(flowUUID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[flowUUID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message", "flow_uuid", flowUUID)
		}
	}
}

// Hooks publishes every flow event to the flow's subscribers.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	publish := func(_ context.Context, e *domain.FlowEvent) {
		data, err := json.Marshal(e)
		if err != nil {
			sm.logger.Error("SSE: failed to encode event", "flow_uuid", e.FlowUUID, "err", err)
			return
		}
		sm.Broadcast(e.FlowUUID, string(data))
	}
	return domain.LifecycleHooks{
		OnFlowSaved:   publish,
		OnFlowDeleted: publish,
	}
}
