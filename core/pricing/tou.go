package pricing

import "time"

// TimeOfUse prices each hour from a three-band tariff. Super-peak hours take
// precedence over peak hours. Weekend prices are scaled by WeekendMultiplier
// when it is non-zero.
type TimeOfUse struct {
	OffPeak            float64 `json:"off_peak"`
	Peak               float64 `json:"peak"`
	SuperPeak          float64 `json:"super_peak"`
	PeakStartHour      int     `json:"peak_start_hour"`
	PeakEndHour        int     `json:"peak_end_hour"`
	SuperPeakStartHour int     `json:"super_peak_start_hour"`
	SuperPeakEndHour   int     `json:"super_peak_end_hour"`
	WeekendMultiplier  float64 `json:"weekend_multiplier"`
}

// DefaultTimeOfUse returns an evening-peak tariff inside the stub price range.
func DefaultTimeOfUse() TimeOfUse {
	return TimeOfUse{
		OffPeak:            0.08,
		Peak:               0.15,
		SuperPeak:          0.20,
		PeakStartHour:      17,
		PeakEndHour:        21,
		SuperPeakStartHour: 18,
		SuperPeakEndHour:   20,
		WeekendMultiplier:  0.8,
	}
}

// NextPrice implements PriceSource.
func (t TimeOfUse) NextPrice(at time.Time) float64 {
	h := at.Hour()
	price := t.OffPeak
	switch {
	case inBand(h, t.SuperPeakStartHour, t.SuperPeakEndHour):
		price = t.SuperPeak
	case inBand(h, t.PeakStartHour, t.PeakEndHour):
		price = t.Peak
	}
	if wd := at.Weekday(); (wd == time.Saturday || wd == time.Sunday) && t.WeekendMultiplier > 0 {
		price *= t.WeekendMultiplier
	}
	return price
}

// inBand reports whether h lies in [start, end). Bands may wrap midnight.
func inBand(h, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return h >= start && h < end
	}
	return h >= start || h < end
}
