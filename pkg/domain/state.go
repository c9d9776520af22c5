package domain

// StateKind discriminates the variants of ConversionState.
type StateKind string

const (
	StateIdle    StateKind = "idle"
	StateLoading StateKind = "loading"
	StateSuccess StateKind = "success"
	StateError   StateKind = "error"
)

// ConversionState is the tagged result published to the UI. Exactly one
// variant is live at a time; per request the transitions are monotonic
// (Loading then Success or Error), while a new request always re-enters
// Loading.
type ConversionState interface {
	Kind() StateKind
}

// Idle is the state before any conversion has been requested.
type Idle struct{}

func (Idle) Kind() StateKind { return StateIdle }

// Loading is published while a resolution is in flight. Initial is true only
// for the first resolution of a controller's lifetime.
type Loading struct {
	Initial bool `json:"initial"`
}

func (Loading) Kind() StateKind { return StateLoading }

// Success carries a completed conversion.
type Success struct {
	FromAmount float64      `json:"from_amount"`
	ToAmount   float64      `json:"to_amount"`
	Rate       ExchangeRate `json:"rate"`
}

func (Success) Kind() StateKind { return StateSuccess }

// Error carries a failed conversion. It replaces any prior Success outright.
type Error struct {
	Message string `json:"message"`
}

func (Error) Kind() StateKind { return StateError }
