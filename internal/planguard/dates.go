package planguard

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// InclusiveDayCount returns the number of calendar days in [start, end],
// both given as YYYY-MM-DD. Dates are read as UTC midnights so daylight-saving
// shifts cannot move the result. A reversed range yields a value below 1.
func InclusiveDayCount(start, end string) (int, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return 0, fmt.Errorf("parse start date %q: %w", start, err)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return 0, fmt.Errorf("parse end date %q: %w", end, err)
	}
	days := e.Sub(s) / (24 * time.Hour)
	return int(days) + 1, nil
}
