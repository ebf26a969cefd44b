package response_models

const CurrencyINR = "INR"

type FlightOption struct {
	ID       string `json:"id"`
	Carrier  string `json:"carrier"`
	From     string `json:"from"`
	To       string `json:"to"`
	Depart   string `json:"depart"`
	Arrive   string `json:"arrive"`
	Stops    int    `json:"stops"`
	Duration string `json:"duration"`
	Fare     int    `json:"fare"`
}

type FlightSearchResult struct {
	Currency   string         `json:"currency"`
	Results    []FlightOption `json:"results"`
	Passengers int            `json:"passengers"`
	Ret        *string        `json:"ret"`
	Disclaimer string         `json:"disclaimer"`
}

type HotelOption struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	City             string  `json:"city"`
	Area             string  `json:"area"`
	Rating           float64 `json:"rating"`
	PricePerNight    int     `json:"price_per_night"`
	FreeCancellation bool    `json:"free_cancellation"`
}

type HotelSearchResult struct {
	Currency   string        `json:"currency"`
	Results    []HotelOption `json:"results"`
	CheckIn    string        `json:"check_in"`
	CheckOut   string        `json:"check_out"`
	Rooms      int           `json:"rooms"`
	Guests     int           `json:"guests"`
	Disclaimer string        `json:"disclaimer"`
}

type CarOption struct {
	ID          string `json:"id"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Class       string `json:"class"`
	PricePerDay int    `json:"price_per_day"`
}

type CarSearchResult struct {
	Currency    string      `json:"currency"`
	Results     []CarOption `json:"results"`
	City        string      `json:"city"`
	PickupDate  string      `json:"pickup_date"`
	DropoffDate string      `json:"dropoff_date"`
	Disclaimer  string      `json:"disclaimer"`
}
