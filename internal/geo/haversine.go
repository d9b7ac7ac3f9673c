package geo

import (
	"math"

	"service-dispatch/internal/domain"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// DistanceKm returns the haversine great-circle distance between a and b.
func DistanceKm(a, b domain.Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Box is a lat/lng rectangle that contains every point within a radius of its center.
// It is a cheap prefilter for stores; callers must still check DistanceKm.
// A box crossing the antimeridian has MinLng > MaxLng and covers [MinLng, 180] and [-180, MaxLng].
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBox returns a box around center covering radiusKm.
func BoundingBox(center domain.Point, radiusKm float64) Box {
	dLat := radiusKm / EarthRadiusKm * 180 / math.Pi

	cos := math.Cos(toRadians(center.Lat))
	dLng := 180.0
	// near the poles every longitude is close
	if cos > 1e-6 {
		dLng = math.Min(180, dLat/cos)
	}

	box := Box{
		MinLat: math.Max(-90, center.Lat-dLat),
		MaxLat: math.Min(90, center.Lat+dLat),
		MinLng: -180,
		MaxLng: 180,
	}
	if dLng >= 180 {
		return box
	}

	box.MinLng = center.Lng - dLng
	if box.MinLng < -180 {
		box.MinLng += 360
	}
	box.MaxLng = center.Lng + dLng
	if box.MaxLng > 180 {
		box.MaxLng -= 360
	}
	return box
}

// Wraps reports whether the box crosses the antimeridian.
func (b Box) Wraps() bool {
	return b.MinLng > b.MaxLng
}

// Contains reports whether p lies inside the box.
func (b Box) Contains(p domain.Point) bool {
	if p.Lat < b.MinLat || p.Lat > b.MaxLat {
		return false
	}
	if b.Wraps() {
		return p.Lng >= b.MinLng || p.Lng <= b.MaxLng
	}
	return p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}
