package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"IBDownloader/internal/collector"
	"IBDownloader/internal/config"
	"IBDownloader/internal/recorder"
	"IBDownloader/internal/runner"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfgPath := opts.configPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath, opts.envFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := opts.apply(cfg); err != nil {
		log.Fatalf("flags: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	} else {
		log.Warnf("unknown log level %q, using info", cfg.LogLevel)
	}

	if err := run(cfg, log); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	symbols, err := cfg.SymbolList()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return errors.Wrap(err, "time zone")
	}

	gw := collector.NewIBGateway(collector.GatewayConfig{
		Host:               cfg.Gateway.Host,
		Port:               cfg.Gateway.Port,
		ClientID:           cfg.Gateway.ClientID,
		BasePath:           cfg.Gateway.BasePath,
		TLS:                !cfg.Gateway.PlainHTTP,
		InsecureSkipVerify: !cfg.Gateway.VerifyTLS,
		Timeout:            cfg.Gateway.Timeout,
	}, log)
	col := collector.NewCollector(gw, collector.Options{
		WhatToShow: cfg.Download.WhatToShow,
		UseRTH:     !cfg.Download.OutsideRTH,
	}, log)

	var rec recorder.Recorder
	if cfg.Journal.Path != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Journal.Path, log)
		if err != nil {
			log.Warnf("init sqlite journal failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := runner.NewRunner(col, rec, runner.Settings{
		Timeframe: cfg.Download.Timeframe,
		Days:      cfg.Download.Days,
		Start:     cfg.Download.Start,
		Location:  loc,
		OutputDir: cfg.Output.Dir,
	}, log)
	_, err = r.Run(ctx, symbols)
	return err
}
