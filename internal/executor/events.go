package executor

import "time"

// Event is a progress notification pushed to subscribers. NodeID is empty
// for run-level status changes.
type Event struct {
	ExecutionID string    `json:"execution_id"`
	NodeID      string    `json:"node_id,omitempty"`
	Status      string    `json:"status"`
	Progress    float64   `json:"progress"`
	Timestamp   time.Time `json:"timestamp"`
}

const eventBuffer = 64

// Subscribe registers a listener for progress events. The returned cancel
// function must be called to release the subscription; after cancel the
// channel is closed. Slow subscribers drop events rather than stall the
// run loop.
func (e *Execution) Subscribe() (<-chan Event, func()) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	e.subSeq++
	id := e.subSeq
	ch := make(chan Event, eventBuffer)
	e.subs[id] = ch
	return ch, func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		if c, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(c)
		}
	}
}

// publishRun emits a run-level event.
func (e *Execution) publishRun() {
	e.mu.Lock()
	status := e.status
	e.mu.Unlock()
	e.publish(Event{
		ExecutionID: e.cfg.ExecutionID,
		Status:      string(status),
		Progress:    e.Progress(),
		Timestamp:   time.Now(),
	})
}

// publishNode emits an event for one node's state or progress change.
func (e *Execution) publishNode(id string) {
	e.mu.Lock()
	ns := e.nodes[id]
	status := ns.state
	e.mu.Unlock()
	e.publish(Event{
		ExecutionID: e.cfg.ExecutionID,
		NodeID:      id,
		Status:      string(status),
		Progress:    e.Progress(),
		Timestamp:   time.Now(),
	})
}

func (e *Execution) publish(ev Event) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
