// Package extract turns JMA documents into normalized observation and forecast records.
//
// Fetch failures and empty bodies are expected ("no data this run") and come back as a nil
// record with a nil error. Malformed documents come back as errors wrapping jma.ErrParseFailure.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/jma-weather-collector/internal/client"
	"github.com/kjstillabower/jma-weather-collector/internal/jma"
	"github.com/kjstillabower/jma-weather-collector/internal/models"
	"github.com/kjstillabower/jma-weather-collector/internal/observability"
)

// Extractor fetches and normalizes JMA documents. Calls are sequential.
type Extractor struct {
	fetcher client.Fetcher
	urls    client.URLs
	logger  *zap.Logger
}

// New creates an Extractor reading from fetcher with URLs built by urls.
func New(fetcher client.Fetcher, urls client.URLs, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{fetcher: fetcher, urls: urls, logger: logger}
}

// LatestObservation returns the newest AMeDAS entry for stationID.
// It returns (nil, nil) when a fetch fails, a body is empty or the station is absent or null
// in the snapshot.
func (e *Extractor) LatestObservation(ctx context.Context, stationID int) (*models.ObservationRecord, error) {
	logger := e.logger.With(zap.Int("station_id", stationID))

	body, err := e.fetcher.Fetch(ctx, e.urls.LatestTime())
	if err != nil {
		return nil, e.absorb(logger, "observation", "latest time", err)
	}
	if isEmpty(body) {
		return nil, e.noText(logger, "observation", "latest time")
	}
	latest, err := jma.ParseLatestTime(body)
	if err != nil {
		return nil, fmt.Errorf("observation %d: %w", stationID, err)
	}

	body, err = e.fetcher.Fetch(ctx, e.urls.Snapshot(jma.SnapshotStamp(latest)))
	if err != nil {
		return nil, e.absorb(logger, "observation", "snapshot", err)
	}
	if isEmpty(body) {
		return nil, e.noText(logger, "observation", "snapshot")
	}
	snapshot, err := jma.ParseSnapshot(body)
	if err != nil {
		return nil, fmt.Errorf("observation %d: %w", stationID, err)
	}

	entry, ok := snapshot.Station(stationID)
	if !ok {
		logger.Warn("station not in snapshot", zap.Time("latest", latest))
		observability.RecordsExtractedTotal.WithLabelValues("observation", "missing").Inc()
		return nil, nil
	}

	rec := entry.Record(models.FormatDateKey(latest))
	observability.RecordsExtractedTotal.WithLabelValues("observation", "ok").Inc()
	logger.Info("observation extracted", zap.String("timestamp", rec.Timestamp))
	return &rec, nil
}

// TomorrowForecast returns the summary for the JST day after now.
// It returns (nil, nil) only when the forecast document cannot be fetched or is empty; sections missing
// from the document leave their fields empty.
func (e *Extractor) TomorrowForecast(ctx context.Context, now time.Time, officeCode, tempAreaCode, weatherAreaCode int) (*models.ForecastDayRecord, error) {
	target := jma.Tomorrow(now)
	logger := e.logger.With(zap.Int("office_code", officeCode), zap.String("target", models.FormatDateKey(target)))

	body, err := e.fetcher.Fetch(ctx, e.urls.Forecast(officeCode))
	if err != nil {
		return nil, e.absorb(logger, "forecast", "forecast document", err)
	}
	if isEmpty(body) {
		return nil, e.noText(logger, "forecast", "forecast document")
	}
	doc, err := jma.ParseForecastDocument(body)
	if err != nil {
		return nil, fmt.Errorf("forecast %d: %w", officeCode, err)
	}

	rec, missing := Summarize(doc, target, tempAreaCode, weatherAreaCode)
	result := "ok"
	if len(missing) > 0 {
		result = "partial"
		logger.Warn("forecast sections missing",
			zap.Strings("sections", missing),
			zap.Int("temp_area_code", tempAreaCode),
			zap.Int("weather_area_code", weatherAreaCode))
	}
	observability.RecordsExtractedTotal.WithLabelValues("forecast", result).Inc()
	logger.Info("forecast extracted", zap.String("date", rec.Date), zap.String("result", result))
	return &rec, nil
}

// absorb turns fetch failures into "no data this run" and passes anything else through.
func (e *Extractor) absorb(logger *zap.Logger, kind, what string, err error) error {
	if errors.Is(err, client.ErrFetchFailure) {
		logger.Warn(what+" unavailable", zap.Error(err), zap.String("category", string(client.CategorizeError(err))))
		observability.RecordsExtractedTotal.WithLabelValues(kind, "missing").Inc()
		return nil
	}
	return fmt.Errorf("%s %s: %w", kind, what, err)
}

// noText records a 200 response with nothing in it as "no data this run".
func (e *Extractor) noText(logger *zap.Logger, kind, what string) error {
	logger.Warn(what + " empty")
	observability.RecordsExtractedTotal.WithLabelValues(kind, "missing").Inc()
	return nil
}

func isEmpty(body []byte) bool {
	return len(bytes.TrimSpace(body)) == 0
}
