// Package collector drives one fetch-and-transform run: latest observation, tomorrow's
// forecast, then either stdout or the store.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kjstillabower/jma-weather-collector/internal/extract"
	"github.com/kjstillabower/jma-weather-collector/internal/lifecycle"
	"github.com/kjstillabower/jma-weather-collector/internal/models"
	"github.com/kjstillabower/jma-weather-collector/internal/observability"
	"github.com/kjstillabower/jma-weather-collector/internal/store"
)

// Output modes accepted by Options.Mode.
const (
	ModeStdout = "stdout"
	ModeStore  = "store"
)

// Options selects what to collect and where results go.
type Options struct {
	StationID       int
	OfficeCode      int
	TempAreaCode    int
	WeatherAreaCode int

	Mode     string
	StoreDir string
}

// Result holds one run's records. A nil field means no data this run.
type Result struct {
	Observation *models.ObservationRecord `json:"observation"`
	Forecast    *models.ForecastDayRecord `json:"forecast"`
}

// Collector runs the extractors sequentially and emits their records.
type Collector struct {
	extractor *extract.Extractor
	opts      Options
	out       io.Writer
	logger    *zap.Logger
}

// New creates a Collector. out receives stdout-mode output.
func New(extractor *extract.Extractor, opts Options, out io.Writer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{extractor: extractor, opts: opts, out: out, logger: logger}
}

// Collect fetches the latest observation and tomorrow's forecast relative to now.
// Parse failures abort the run; unavailable documents leave the matching field nil.
func (c *Collector) Collect(ctx context.Context, now time.Time) (Result, error) {
	var res Result

	obs, err := c.extractor.LatestObservation(ctx, c.opts.StationID)
	if err != nil {
		return res, err
	}
	res.Observation = obs

	fc, err := c.extractor.TomorrowForecast(ctx, now, c.opts.OfficeCode, c.opts.TempAreaCode, c.opts.WeatherAreaCode)
	if err != nil {
		return res, err
	}
	res.Forecast = fc
	return res, nil
}

// Run performs one collection and writes the result according to Options.Mode.
// The outcome is recorded in collector metrics.
func (c *Collector) Run(ctx context.Context, now time.Time) (err error) {
	end := lifecycle.BeginRun()
	defer end()

	runID := uuid.New().String()
	logger := c.logger.With(zap.String("run_id", runID), zap.String("mode", c.opts.Mode))
	start := time.Now()
	defer func() {
		observability.RecordRun(err, time.Now())
		if err != nil {
			logger.Error("collector run failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
			return
		}
		logger.Info("collector run finished", zap.Duration("duration", time.Since(start)))
	}()

	res, err := c.Collect(ctx, now)
	if err != nil {
		return err
	}

	switch c.opts.Mode {
	case ModeStore:
		return c.persist(res, now, logger)
	case ModeStdout, "":
		return c.print(res)
	default:
		return fmt.Errorf("unknown output mode %q", c.opts.Mode)
	}
}

func (c *Collector) print(res Result) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

func (c *Collector) persist(res Result, now time.Time, logger *zap.Logger) error {
	if res.Observation != nil {
		s := store.New[models.ObservationRecord](c.opts.StoreDir, store.CategoryObservations, logger)
		if err := s.Reconcile([]models.ObservationRecord{*res.Observation}, now); err != nil {
			return fmt.Errorf("reconcile observations: %w", err)
		}
	} else {
		logger.Info("no observation this run, store untouched", zap.String("category", store.CategoryObservations))
	}

	if res.Forecast != nil {
		s := store.New[models.ForecastDayRecord](c.opts.StoreDir, store.CategoryForecasts, logger)
		if err := s.Reconcile([]models.ForecastDayRecord{*res.Forecast}, now); err != nil {
			return fmt.Errorf("reconcile forecasts: %w", err)
		}
	} else {
		logger.Info("no forecast this run, store untouched", zap.String("category", store.CategoryForecasts))
	}
	return nil
}
