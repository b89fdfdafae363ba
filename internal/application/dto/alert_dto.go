package dto

// AlertListQuery query string de GET /api/alerts. Listas separadas por coma.
type AlertListQuery struct {
	ItemID     string `query:"item_id"`
	LocationID string `query:"location_id"`
	Kinds      string `query:"kind"`
	States     string `query:"state"`
	Severity   string `query:"severity"`
	PageRequest
}
