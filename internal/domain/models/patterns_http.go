package models

// Requests for pattern HTTP endpoints.

type DetectRequest struct {
	At string `query:"at" json:"at"`
	TZ string `query:"tz" json:"tz" default:"UTC"`
}

type PredictRequest struct {
	At      string `query:"at" json:"at"`
	TZ      string `query:"tz" json:"tz" default:"UTC"`
	Horizon string `query:"horizon" json:"horizon" default:"24h" validate:"maxduration=168h"`
	Cap     int    `query:"cap" json:"cap" default:"10" validate:"gte=1,lte=10"`
	Per     int    `query:"per" json:"per" default:"3" validate:"gte=1,lte=10"`
	IDs     string `query:"ids" json:"ids"`
}

type ClockRequest struct {
	At string `query:"at" json:"at"`
	TZ string `query:"tz" json:"tz" default:"UTC"`
}

type ArchiveStatsRequest struct {
	From        string `query:"from" json:"from"`
	To          string `query:"to" json:"to"`
	Granularity string `query:"granularity" json:"granularity" default:"1h" validate:"oneof=1m 1h 1d"`
}

// CatalogEntry is the public view of a pattern definition.
type CatalogEntry struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Family   string   `json:"family"`
}
