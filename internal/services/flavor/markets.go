package flavor

import (
	"time"

	"CosmicClock/internal/domain/models"
)

// Market is an exchange with local trading hours encoded as HHMM.
type Market struct {
	Code     string
	Name     string
	Timezone string
	Open     int
	Close    int
	Weekend  []time.Weekday
}

var weekend = []time.Weekday{time.Sunday, time.Saturday}

// DefaultMarkets are the exchanges shown on the clock page.
var DefaultMarkets = []Market{
	{Code: "NYSE", Name: "NYSE (New York)", Timezone: "America/New_York", Open: 930, Close: 1600, Weekend: weekend},
	{Code: "LSE", Name: "LSE (London)", Timezone: "Europe/London", Open: 800, Close: 1630, Weekend: weekend},
	{Code: "TSE", Name: "TSE (Tokyo)", Timezone: "Asia/Tokyo", Open: 900, Close: 1530, Weekend: weekend},
	{Code: "SSE", Name: "SSE (Shanghai)", Timezone: "Asia/Shanghai", Open: 930, Close: 1500, Weekend: weekend},
	{Code: "HKE", Name: "HKE (Hong Kong)", Timezone: "Asia/Hong_Kong", Open: 930, Close: 1600, Weekend: weekend},
}

// MarketStatus reports whether m trades at t. Both bounds are inclusive.
func MarketStatus(t time.Time, m Market) models.MarketState {
	st := models.MarketState{Code: m.Code, Name: m.Name, Timezone: m.Timezone, Status: "Closed"}

	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		st.Reason = "Unknown Timezone"
		return st
	}
	local := t.In(loc)
	st.LocalTime = local.Format("15:04")

	for _, d := range m.Weekend {
		if local.Weekday() == d {
			st.Reason = "Weekend"
			return st
		}
	}

	v := local.Hour()*100 + local.Minute()
	if v >= m.Open && v <= m.Close {
		st.Open = true
		st.Status = "Open"
		st.Reason = "Trading"
		return st
	}
	st.Reason = "Outside Trading Hours"
	return st
}
