package domain

// WaitType names the kind of external event a suspended node waits for.
type WaitType string

const (
	WaitMsg        WaitType = "msg"
	WaitExpression WaitType = "exp"
	WaitFlow       WaitType = "flow"
	WaitGroup      WaitType = "group"
	WaitWebhook    WaitType = "webhook"
)

// Valid reports whether w is a known wait type.
func (w WaitType) Valid() bool {
	switch w {
	case WaitMsg, WaitExpression, WaitFlow, WaitGroup, WaitWebhook:
		return true
	}
	return false
}

// Wait annotates a node that suspends until an event of Type arrives.
// A nil Timeout means no timeout key at all; the engine interprets the
// value, this package only carries it.
type Wait struct {
	Type    WaitType `json:"type"`
	Timeout *int     `json:"timeout,omitempty"`
}
