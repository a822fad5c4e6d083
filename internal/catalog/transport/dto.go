package transport

// CatalogStatsResponse reports dataset health for the admin surface.
type CatalogStatsResponse struct {
	Properties int `json:"properties"`
}
