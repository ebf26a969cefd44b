package response_models

import (
	"bytes"
	"encoding/json"
)

const (
	IntentFlightSearch = "flight_search"
	IntentHotelSearch  = "hotel_search"
	IntentCarSearch    = "car_search"
	IntentTripPlan     = "trip_plan"
	IntentPolicyHelp   = "policy_help"
	IntentGeneralHelp  = "general_help"
)

// KnownIntents lists every intent the assistant may emit.
var KnownIntents = []string{
	IntentFlightSearch,
	IntentHotelSearch,
	IntentCarSearch,
	IntentTripPlan,
	IntentPolicyHelp,
	IntentGeneralHelp,
}

// TripPlanResponse is the JSON object the assistant returns for every turn.
// Pointer fields distinguish "absent" from "zero" so the validator can tell
// a missing field from an empty one.
type TripPlanResponse struct {
	Intent    *string         `json:"intent"`
	Markdown  *string         `json:"markdown"`
	Precheck  *Precheck       `json:"precheck,omitempty"`
	Cards     []Card          `json:"cards,omitempty"`
	CTA       json.RawMessage `json:"cta,omitempty"`
	Citations json.RawMessage `json:"citations,omitempty"`
}

type Precheck struct {
	Timezone     *string           `json:"timezone"`
	TripDates    *TripDates        `json:"trip_dates"`
	Destinations []json.RawMessage `json:"destinations"`
	OKToPlan     *bool             `json:"ok_to_plan"`
	Notes        *string           `json:"notes,omitempty"`
	DerivedDates *bool             `json:"derived_dates,omitempty"`
	Assumptions  *string           `json:"assumptions,omitempty"`
}

// TripDates is an inclusive YYYY-MM-DD range.
type TripDates struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// IntentValue returns the intent or "" when absent.
func (r *TripPlanResponse) IntentValue() string {
	if r == nil || r.Intent == nil {
		return ""
	}
	return *r.Intent
}

// MarkdownValue returns the markdown body or "" when absent.
func (r *TripPlanResponse) MarkdownValue() string {
	if r == nil || r.Markdown == nil {
		return ""
	}
	return *r.Markdown
}

// ItineraryCards returns the cards of kind itinerary in their original order.
func (r *TripPlanResponse) ItineraryCards() []*ItineraryCard {
	var out []*ItineraryCard
	for i := range r.Cards {
		if r.Cards[i].Kind == CardItinerary && r.Cards[i].Itinerary != nil {
			out = append(out, r.Cards[i].Itinerary)
		}
	}
	return out
}

type CardKind string

const (
	CardItinerary         CardKind = "itinerary"
	CardDestinationOption CardKind = "destination_option"
	CardFlightOption      CardKind = "flight_option"
	CardHotelOption       CardKind = "hotel_option"
	CardCarOption         CardKind = "car_option"
)

// Card is a tagged variant discriminated by its "type" field. Only itinerary
// cards are decoded further; every other kind, and any element that is not an
// object at all, is kept as its raw payload.
type Card struct {
	Kind      CardKind
	Itinerary *ItineraryCard
	Raw       json.RawMessage
}

// ItineraryCard is one day of a plan, titled "Day <n>".
type ItineraryCard struct {
	Title     string
	HasTitle  bool
	Morning   string
	Afternoon string
	Evening   string
	// Extra holds any other string-valued fields, e.g. "tips".
	Extra map[string]string
}

func (c *Card) UnmarshalJSON(data []byte) error {
	c.Raw = append(json.RawMessage(nil), data...)
	c.Kind = ""
	c.Itinerary = nil

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil
	}

	var kind string
	if raw, ok := obj["type"]; ok {
		_ = json.Unmarshal(raw, &kind)
	}
	c.Kind = CardKind(kind)
	if c.Kind != CardItinerary {
		return nil
	}

	itin := &ItineraryCard{}
	if raw, ok := obj["title"]; ok {
		if err := json.Unmarshal(raw, &itin.Title); err == nil && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			itin.HasTitle = true
		}
	}
	if raw, ok := obj["fields"]; ok {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err == nil {
			for key, value := range fields {
				var s string
				if json.Unmarshal(value, &s) != nil {
					continue
				}
				switch key {
				case "morning":
					itin.Morning = s
				case "afternoon":
					itin.Afternoon = s
				case "evening":
					itin.Evening = s
				default:
					if itin.Extra == nil {
						itin.Extra = make(map[string]string)
					}
					itin.Extra[key] = s
				}
			}
		}
	}
	c.Itinerary = itin
	return nil
}

func (c Card) MarshalJSON() ([]byte, error) {
	if len(c.Raw) == 0 {
		return []byte("null"), nil
	}
	return c.Raw, nil
}

// Citation is a source reference surfaced next to an answer.
type Citation struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

// CitationList decodes the loosely shaped "citations" field, which may hold
// plain URL strings or {title,url} objects. Entries without a URL are dropped.
func (r *TripPlanResponse) CitationList() []Citation {
	if r == nil || len(r.Citations) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(r.Citations, &items); err != nil {
		return nil
	}
	var out []Citation
	for _, item := range items {
		var url string
		if json.Unmarshal(item, &url) == nil {
			if url != "" {
				out = append(out, Citation{URL: url})
			}
			continue
		}
		var c Citation
		if json.Unmarshal(item, &c) == nil && c.URL != "" {
			out = append(out, c)
		}
	}
	return out
}
