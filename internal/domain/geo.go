package domain

import "strings"

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Valid checks latitude and longitude ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Address is a postal address with its coordinates.
type Address struct {
	Street      string
	City        string
	State       string
	Zip         string
	Coordinates Point
}

// Line returns "street, city" for waypoint labels.
func (a Address) Line() string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(a.Street); s != "" {
		parts = append(parts, s)
	}
	if c := strings.TrimSpace(a.City); c != "" {
		parts = append(parts, c)
	}
	return strings.Join(parts, ", ")
}
