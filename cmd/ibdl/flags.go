package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"IBDownloader/internal/config"
	"IBDownloader/internal/model"
)

// options are the command-line flags. Only flags given explicitly override
// the loaded configuration.
type options struct {
	configPath string
	envFile    string
	verbose    bool

	fs *flag.FlagSet
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("ibdl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	o := &options{fs: fs}

	fs.StringVar(&o.configPath, "config", "configs/config.yaml", "YAML config file")
	fs.StringVar(&o.envFile, "env-file", ".env", "dotenv file with IBDL_* overrides")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")

	fs.String("symbols", "SPY", "comma separated list of symbols")
	fs.String("file", "", "read symbols from file, one per line, '#' starts a comment")
	fs.String("timeframe", "5min", fmt.Sprintf("bar size, one of %v", model.TimeframeCodes()))
	fs.String("days", "", "lookback in days")
	fs.String("start", "", "lookback start, YYYYMMDD HH:MM:SS in --tz")
	fs.String("tz", "America/New_York", "time zone of --start")
	fs.Int("id", 0, "client id, only logged: the REST gateway session has none")
	fs.String("host", "127.0.0.1", "gateway host")
	fs.Int("port", 7498, "gateway port")
	fs.String("output-dir", ".", "directory for <symbol>.csv files")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

// apply copies explicitly set flags onto cfg. --days and --start replace
// whichever lookback the configuration had.
func (o *options) apply(cfg *config.Config) error {
	set := map[string]bool{}
	o.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["days"] && set["start"] {
		return errors.New("--days and --start are mutually exclusive")
	}

	var err error
	o.fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		v := f.Value.String()
		switch f.Name {
		case "symbols":
			cfg.Download.Symbols = v
		case "file":
			cfg.Download.SymbolFile = v
		case "timeframe":
			cfg.Download.Timeframe = v
		case "days":
			var d int
			if d, err = strconv.Atoi(v); err != nil {
				err = errors.Wrap(err, "--days")
				return
			}
			cfg.Download.Days = &d
			cfg.Download.Start = ""
		case "start":
			cfg.Download.Start = v
			cfg.Download.Days = nil
		case "tz":
			cfg.Download.TZ = v
		case "id":
			cfg.Gateway.ClientID, err = strconv.Atoi(v)
			err = errors.Wrap(err, "--id")
		case "host":
			cfg.Gateway.Host = v
		case "port":
			cfg.Gateway.Port, err = strconv.Atoi(v)
			err = errors.Wrap(err, "--port")
		case "output-dir":
			cfg.Output.Dir = v
		}
	})
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	return err
}
