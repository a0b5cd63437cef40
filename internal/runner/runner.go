package runner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"IBDownloader/internal/calculator"
	"IBDownloader/internal/collector"
	"IBDownloader/internal/exporter"
	"IBDownloader/internal/model"
	"IBDownloader/internal/recorder"
)

// Settings select what a run downloads and where it writes.
type Settings struct {
	Timeframe string
	Days      *int
	Start     string
	Location  *time.Location
	OutputDir string
}

// Summary reports what a run produced.
type Summary struct {
	RunID    string
	Duration calculator.Duration
	BarSize  model.BarSize
	Files    []string
	NoData   []string
}

// Runner downloads symbols one after another over a single gateway session.
type Runner struct {
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Settings  Settings
	Log       logrus.FieldLogger
	Now       func() time.Time
}

// NewRunner creates a new Runner.
func NewRunner(col *collector.Collector, rec recorder.Recorder, settings Settings, log logrus.FieldLogger) *Runner {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &Runner{
		Collector: col,
		Recorder:  rec,
		Settings:  settings,
		Log:       log,
		Now:       time.Now,
	}
}

// Run resolves the bar size and lookback, connects once and downloads every
// symbol in order. A symbol without data is skipped; any other error stops
// the run.
func (r *Runner) Run(ctx context.Context, symbols []string) (*Summary, error) {
	barSize, err := model.LookupBarSize(r.Settings.Timeframe)
	if err != nil {
		return nil, err
	}
	now := r.Now().In(r.Settings.Location)
	duration, err := calculator.Lookback(r.Settings.Days, r.Settings.Start, now, r.Settings.Location)
	if err != nil {
		return nil, errors.Wrap(err, "lookback")
	}

	sum := &Summary{RunID: uuid.NewString(), Duration: duration, BarSize: barSize}
	log := r.Log.WithField("run", sum.RunID)
	log.WithFields(logrus.Fields{
		"symbols":  len(symbols),
		"duration": duration.String(),
		"bar_size": string(barSize),
	}).Info("starting download")

	gw := r.Collector.Gateway
	if err := gw.Connect(ctx); err != nil {
		return nil, errors.Wrapf(err, "connect %s", gw.Name())
	}
	defer func() {
		if err := gw.Close(); err != nil {
			log.Warnf("close %s: %v", gw.Name(), err)
		}
	}()

	for _, sym := range symbols {
		if err := r.download(ctx, log, sum, sym); err != nil {
			return sum, err
		}
	}

	log.WithFields(logrus.Fields{
		"written": len(sum.Files),
		"no_data": len(sum.NoData),
	}).Info("download finished")
	return sum, nil
}

func (r *Runner) download(ctx context.Context, log logrus.FieldLogger, sum *Summary, sym string) error {
	log = log.WithField("symbol", sym)
	started := r.Now()
	evt := &recorder.DownloadEvent{
		RunID:    sum.RunID,
		Symbol:   sym,
		Contract: model.ParseSymbol(sym).Contract().String(),
		BarSize:  string(sum.BarSize),
		Duration: sum.Duration.String(),
		Started:  started,
	}

	bars, err := r.Collector.Fetch(ctx, sym, sum.Duration, sum.BarSize)
	if errors.Is(err, collector.ErrNoData) {
		log.Warn("no data")
		sum.NoData = append(sum.NoData, sym)
		evt.Status = recorder.StatusNoData
		r.record(log, evt, started)
		return nil
	}
	if err != nil {
		evt.Status = recorder.StatusFailed
		evt.Error = err.Error()
		r.record(log, evt, started)
		return err
	}

	path, err := exporter.WriteCSV(r.Settings.OutputDir, sym, sum.BarSize, bars)
	if err != nil {
		evt.Status = recorder.StatusFailed
		evt.Error = err.Error()
		r.record(log, evt, started)
		return err
	}
	log.Infof("wrote %d lines to %s", len(bars), path)
	sum.Files = append(sum.Files, path)

	evt.Status = recorder.StatusOK
	evt.Bars = len(bars)
	evt.Path = path
	r.record(log, evt, started)
	return nil
}

func (r *Runner) record(log logrus.FieldLogger, evt *recorder.DownloadEvent, started time.Time) {
	evt.Elapsed = r.Now().Sub(started)
	if err := r.Recorder.RecordDownload(evt); err != nil {
		log.Errorf("record download: %v", err)
	}
}
