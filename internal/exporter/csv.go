package exporter

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"IBDownloader/internal/model"
)

// Header is the fixed column set of every exported file.
var Header = []string{"Date", "Open", "High", "Low", "Close", "Volume"}

const (
	dateLayout     = "2006-01-02"
	intradayLayout = "2006-01-02 15:04:05-07:00"
)

// Path returns the file a symbol is exported to.
func Path(dir, symbol string) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, symbol+".csv")
}

// WriteCSV writes bars to <dir>/<symbol>.csv, one row per bar in order.
func WriteCSV(dir, symbol string, barSize model.BarSize, bars []model.Bar) (string, error) {
	path := Path(dir, symbol)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrap(err, "create output dir")
	}
	err := writeFile(path, func(w io.Writer) error {
		return Write(w, barSize, bars)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// writeFile creates path and fills it with write. A failed write leaves no
// file behind.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return errors.Wrapf(err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return errors.Wrapf(err, "close %s", path)
	}
	return nil
}

// Write encodes bars as CSV with the fixed header. Intraday times are
// rendered in UTC; daily and longer bars use the date in the bar's own
// location, the exchange's trading day.
func Write(out io.Writer, barSize model.BarSize, bars []model.Bar) error {
	w := csv.NewWriter(out)
	if err := w.Write(Header); err != nil {
		return err
	}
	for _, b := range bars {
		if err := w.Write([]string{
			formatTime(b.Time, barSize),
			b.Open.String(),
			b.High.String(),
			b.Low.String(),
			b.Close.String(),
			strconv.FormatInt(b.Volume, 10),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatTime(t time.Time, barSize model.BarSize) string {
	if barSize.Daily() {
		return t.Format(dateLayout)
	}
	return t.UTC().Format(intradayLayout)
}
