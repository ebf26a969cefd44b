package request_models

// Tool arguments as sent by the model. Zero-valued counts are filled with
// defaults before decoding, so an omitted field keeps its default.

type FlightSearchRequest struct {
	From   string  `json:"from" validate:"required,min=3"`
	To     string  `json:"to" validate:"required,min=3"`
	Depart string  `json:"depart" validate:"required,datetime=2006-01-02"`
	Ret    *string `json:"ret" validate:"omitempty,datetime=2006-01-02"`
	Adults int     `json:"adults" validate:"gt=0"`
}

type HotelSearchRequest struct {
	City     string `json:"city" validate:"required"`
	CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Rooms    int    `json:"rooms" validate:"gt=0"`
	Guests   int    `json:"guests" validate:"gt=0"`
}

type CarSearchRequest struct {
	City        string `json:"city" validate:"required,min=2"`
	PickupDate  string `json:"pickup_date" validate:"required,datetime=2006-01-02"`
	DropoffDate string `json:"dropoff_date" validate:"required,datetime=2006-01-02"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}
