package monitor

import "time"

// Status is the last observed state of every probed dependency.
type Status struct {
	Dependencies map[string]bool `json:"dependencies"`
	Online       bool            `json:"online"`
	JournalSize  int             `json:"journal_size"`
	LastCheck    time.Time       `json:"last_check"`
}

// Label renders a dependency flag for the health payload.
func Label(up bool) string {
	if up {
		return "up"
	}
	return "down"
}
