package models

// GeoPoint is a resolved geographic coordinate for a normalized address.
// It is immutable once produced by the geocoding pipeline.
type GeoPoint struct {
	Lat               float64 `json:"lat"`
	Lon               float64 `json:"lon"`
	NormalizedAddress string  `json:"address_normalized"`
}
