package wholesale

import (
	"fmt"
	"time"
)

// Response mirrors the France power exchanges payload of the wholesale
// market API.
type Response struct {
	FrancePowerExchanges []struct {
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
		UpdatedDate string `json:"updated_date"`
		Values      []struct {
			StartDate string  `json:"start_date"`
			EndDate   string  `json:"end_date"`
			Value     float64 `json:"value"`
			Price     float64 `json:"price"`
		} `json:"values"`
	} `json:"france_power_exchanges"`
}

// HourPrice is one hourly price point in €/MWh.
type HourPrice struct {
	Start time.Time
	Price float64
}

// Prices flattens the response into hourly points, in payload order.
func (r *Response) Prices() ([]HourPrice, error) {
	var out []HourPrice
	for _, exchange := range r.FrancePowerExchanges {
		for _, v := range exchange.Values {
			start, err := time.Parse(time.RFC3339, v.StartDate)
			if err != nil {
				return nil, fmt.Errorf("failed to parse time %q: %w", v.StartDate, err)
			}
			out = append(out, HourPrice{Start: start.UTC(), Price: v.Price})
		}
	}
	return out, nil
}
