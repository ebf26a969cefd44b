package tools

import (
	"context"
	"encoding/json"

	"tripmate/internal/models/request_models"
	"tripmate/internal/models/response_models"
)

// The CheapoAir tools return fixed demo data shaped like live results.

type FlightSearchTool struct{}

func NewFlightSearchTool() *FlightSearchTool { return &FlightSearchTool{} }

func (t *FlightSearchTool) Name() string { return "search_flights_cheapoair" }

func (t *FlightSearchTool) Description() string {
	return "Return flight options via CheapoAir. Call when intent is 'flight_search' or 'trip_plan'."
}

func (t *FlightSearchTool) Params() []Param {
	return []Param{
		{Name: "from", Type: TypeString, Description: "Origin (IATA or city)", Required: true},
		{Name: "to", Type: TypeString, Description: "Destination (IATA or city)", Required: true},
		{Name: "depart", Type: TypeString, Description: "YYYY-MM-DD", Required: true},
		{Name: "ret", Type: TypeString, Description: "YYYY-MM-DD (optional)", Nullable: true},
		{Name: "adults", Type: TypeInteger, Description: "Passenger count", Default: 1},
	}
}

func (t *FlightSearchTool) Execute(_ context.Context, args json.RawMessage) (interface{}, error) {
	req := request_models.FlightSearchRequest{Adults: 1}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return &response_models.FlightSearchResult{
		Currency: response_models.CurrencyINR,
		Results: []response_models.FlightOption{
			{ID: "AF225", Carrier: "Air France", From: req.From, To: req.To,
				Depart: req.Depart + "T09:25+05:30", Arrive: req.Depart + "T18:45+01:00",
				Stops: 1, Duration: "12h 50m", Fare: 58900},
			{ID: "LH761", Carrier: "Lufthansa", From: req.From, To: req.To,
				Depart: req.Depart + "T02:50+05:30", Arrive: req.Depart + "T12:35+01:00",
				Stops: 1, Duration: "12h 15m", Fare: 61250},
		},
		Passengers: req.Adults,
		Ret:        req.Ret,
		Disclaimer: "Static demo data, not live pricing.",
	}, nil
}

type HotelSearchTool struct{}

func NewHotelSearchTool() *HotelSearchTool { return &HotelSearchTool{} }

func (t *HotelSearchTool) Name() string { return "search_hotels_cheapoair" }

func (t *HotelSearchTool) Description() string {
	return "Return hotel options via CheapoAir. Call when intent is 'hotel_search' or 'trip_plan'."
}

func (t *HotelSearchTool) Params() []Param {
	return []Param{
		{Name: "city", Type: TypeString, Required: true},
		{Name: "check_in", Type: TypeString, Description: "YYYY-MM-DD", Required: true},
		{Name: "check_out", Type: TypeString, Description: "YYYY-MM-DD", Required: true},
		{Name: "rooms", Type: TypeInteger, Default: 1},
		{Name: "guests", Type: TypeInteger, Default: 2},
	}
}

func (t *HotelSearchTool) Execute(_ context.Context, args json.RawMessage) (interface{}, error) {
	req := request_models.HotelSearchRequest{Rooms: 1, Guests: 2}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return &response_models.HotelSearchResult{
		Currency: response_models.CurrencyINR,
		Results: []response_models.HotelOption{
			{ID: "HTL-1", Name: "Riviera Central", City: req.City, Area: "City Center",
				Rating: 4.4, PricePerNight: 9800, FreeCancellation: true},
			{ID: "HTL-2", Name: "Grand Parkview", City: req.City, Area: "Near Museum District",
				Rating: 4.2, PricePerNight: 8200, FreeCancellation: false},
		},
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Rooms:      req.Rooms,
		Guests:     req.Guests,
		Disclaimer: "Static demo data, not live availability.",
	}, nil
}

type CarSearchTool struct{}

func NewCarSearchTool() *CarSearchTool { return &CarSearchTool{} }

func (t *CarSearchTool) Name() string { return "search_cars_cheapoair" }

func (t *CarSearchTool) Description() string {
	return "Return car rental options via CheapoAir. Call when intent is 'car_search'."
}

func (t *CarSearchTool) Params() []Param {
	return []Param{
		{Name: "city", Type: TypeString, Required: true},
		{Name: "pickup_date", Type: TypeString, Description: "YYYY-MM-DD", Required: true},
		{Name: "dropoff_date", Type: TypeString, Description: "YYYY-MM-DD", Required: true},
	}
}

func (t *CarSearchTool) Execute(_ context.Context, args json.RawMessage) (interface{}, error) {
	var req request_models.CarSearchRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return &response_models.CarSearchResult{
		Currency: response_models.CurrencyINR,
		Results: []response_models.CarOption{
			{ID: "CAR-ECON", Brand: "Toyota", Model: "Yaris", Class: "Economy", PricePerDay: 2100},
			{ID: "CAR-SUV", Brand: "Hyundai", Model: "Creta", Class: "SUV", PricePerDay: 3900},
		},
		City:        req.City,
		PickupDate:  req.PickupDate,
		DropoffDate: req.DropoffDate,
		Disclaimer:  "Static demo data, not live inventory.",
	}, nil
}
