package planguard

import (
	"fmt"
	"strings"
)

// RepairInstruction builds the corrective message sent back to the agent
// after a failed check. The same inputs always give the same text.
func RepairInstruction(reason Reason, targetDays int) string {
	lines := []string{
		"REVISE STRICTLY:",
		"- Output ONLY a single JSON object that matches the Output Contract in the system prompt.",
		"- For intent='trip_plan', include 'precheck' with authoritative citations and 'seen_ist' timestamps.",
		"- If precheck.ok_to_plan=true, include a day-wise itinerary in 'cards'.",
	}

	switch reason {
	case ReasonNotJSON, ReasonSchemaMismatch:
		lines = append(lines, "- Your previous output was not valid JSON. Regenerate as valid JSON only.")
	case ReasonMissingPrecheck, ReasonMissingTripDates:
		lines = append(lines, "- Include 'precheck' with 'trip_dates.start' and 'trip_dates.end' filled (exact or auto-resolved).")
	case ReasonBadTripDates:
		lines = append(lines, "- Fix 'precheck.trip_dates' to a valid inclusive range (start <= end).")
	case ReasonWrongItinCount, ReasonMissingDayCard:
		lines = append(lines,
			fmt.Sprintf("- Include exactly %d itinerary cards titled 'Day 1' … 'Day %d'.", targetDays, targetDays),
			"- Each itinerary card SHOULD include morning/afternoon/evening fields.",
		)
	}

	lines = append(lines, "- Do NOT add any prose outside the JSON.")
	return strings.Join(lines, "\n")
}
