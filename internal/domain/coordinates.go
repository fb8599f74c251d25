package domain

// Coordinates is a WGS84 point in decimal degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Valid checks that the point lies within the WGS84 bounds.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}
