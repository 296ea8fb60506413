package reference

import (
	"polycopy/model"
)

// Transaction phases reported through OnTransaction.
const (
	PhaseExecuted = "executed"
	PhaseFilled   = "filled"
)

// Notifier receives best-effort event hooks from the engine. Hook failures
// never abort the copy pipeline.
type Notifier interface {
	Notify(string)
	OnLeadFound(event model.TradeEvent, rule model.CopyRule)
	OnTransaction(trade model.CopyTrade, phase string)
	OnError(err error)
}
