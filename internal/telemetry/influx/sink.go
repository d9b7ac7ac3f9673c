// Package influx writes driver location samples to InfluxDB for trip replay.
package influx

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
)

const Measurement = "driver_location"

// LocationSink writes one point per accepted location sample.
type LocationSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	logger   logx.Logger
}

// NewLocationSink creates a sink for the given InfluxDB endpoint.
func NewLocationSink(url, token, org, bucket string, logger logx.Logger) *LocationSink {
	if logger == nil {
		logger = logx.Nop()
	}
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &LocationSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		logger:   logger,
	}
}

// Ping checks the instance health.
func (s *LocationSink) Ping(ctx context.Context) error {
	_, err := s.client.Ping(ctx)
	return err
}

// Point builds the line-protocol point for a sample.
func Point(driverID string, sample domain.LocationSample) *write.Point {
	p := write.NewPointWithMeasurement(Measurement).
		AddTag("driver_id", driverID).
		AddField("lat", sample.Lat).
		AddField("lng", sample.Lng).
		AddField("accuracy_m", sample.AccuracyM)
	if sample.Speed != nil {
		p = p.AddField("speed_kmh", *sample.Speed)
	}
	if sample.Heading != nil {
		p = p.AddField("heading", *sample.Heading)
	}
	return p.SetTime(sample.RecordedAt)
}

// Record writes the sample.
func (s *LocationSink) Record(ctx context.Context, driverID string, sample domain.LocationSample) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, Point(driverID, sample))
}

// Close releases the HTTP client.
func (s *LocationSink) Close() {
	s.client.Close()
}
