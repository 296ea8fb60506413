package types

// RuleStatus asks the bot to pause or resume copying for one trader.
type RuleStatus struct {
	TraderAddress string
	Active        bool
}

var RuleStatusChan = make(chan RuleStatus, 10)
