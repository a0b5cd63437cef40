package recorder

import "time"

// Download outcomes.
const (
	StatusOK     = "OK"
	StatusNoData = "NO_DATA"
	StatusFailed = "FAILED"
)

// DownloadEvent records the outcome of one symbol in a run.
type DownloadEvent struct {
	RunID    string
	Symbol   string
	Contract string
	BarSize  string
	Duration string
	Status   string
	Bars     int
	Path     string
	Error    string
	Started  time.Time
	Elapsed  time.Duration
}

// Recorder persists the download history for later inspection.
type Recorder interface {
	RecordDownload(evt *DownloadEvent) error
	Close() error
}
