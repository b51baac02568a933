package bot

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Stats are the process-wide counters owned by the machine. They are
// mutated only inside Tick and read through Machine.Stats.
type Stats struct {
	FishCaught uint64
	ClicksSent uint64
}

func (s Stats) String() string {
	return statsPrinter.Sprintf("fish caught: %d, clicks sent: %d", s.FishCaught, s.ClicksSent)
}

// Report is the shutdown summary printed when the frame loop ends.
func (s Stats) Report() string {
	return statsPrinter.Sprintf("final stats: %d fish caught, %d clicks sent", s.FishCaught, s.ClicksSent)
}

var statsPrinter = message.NewPrinter(language.English)
