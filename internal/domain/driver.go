package domain

import "time"

// LocationSample is a point-in-time location report from a driver device.
type LocationSample struct {
	Point
	AccuracyM  float64
	Speed      *float64 // km/h
	Heading    *float64 // degrees
	RecordedAt time.Time
}

// Driver is the dispatch view of a driver: availability plus the last known location.
type Driver struct {
	ID        string
	Name      string
	Rating    float64
	Status    DriverStatus
	Location  *LocationSample
	UpdatedAt time.Time
}

// Candidate is an online driver near a pickup point.
type Candidate struct {
	DriverID   string
	Rating     float64
	DistanceKm float64
	Location   Point
}
