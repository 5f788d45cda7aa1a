package types

import "time"

type IntentType string

const (
	// IntentTypeEnter tells the broker to open a position
	IntentTypeEnter IntentType = "enter"
	// IntentTypeExit tells the broker to close the open position
	IntentTypeExit IntentType = "exit"
	// IntentTypeHold tells the broker to take no action
	IntentTypeHold IntentType = "hold"
)

// Intent is the decision a strategy emits for a single bar. It is a pure
// value; all temporal state lives in the indicator engine.
type Intent struct {
	// Time is the time of the bar the decision was made on
	Time time.Time
	// Type is the type of the intent
	Type IntentType
	// Reason is a human readable explanation for the decision
	Reason string
	// Symbol is the instrument the intent applies to
	Symbol string
}

// Hold returns a hold intent for the given bar.
func Hold(bar Bar) Intent {
	return Intent{
		Time:   bar.Time,
		Type:   IntentTypeHold,
		Reason: "",
		Symbol: bar.Symbol,
	}
}
