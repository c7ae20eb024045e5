// Package app runs a complete simulated fly scan from a YAML configuration:
// it wires the simulated hardware into a flyer, executes the kickoff,
// complete and collect sequence, and persists the drained records to a
// SQLite run database.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/prjemian/flyscan/device"
	"github.com/prjemian/flyscan/flyer"
	"github.com/prjemian/flyscan/logger"
	"github.com/prjemian/flyscan/runstore"
)

// Run executes one fly scan per the configuration and stores the result.
func Run(ctx context.Context, config *Config, log logger.Logger) error {
	motor := device.NewSimMotor(
		device.WithInitialPosition(config.Motor.InitialPosition),
		device.WithVelocity(config.Motor.Velocity),
	)
	det := device.NewSimDetector(config.Detector.Name,
		device.WithDataDir(config.Detector.DataDirectory),
		device.WithFramePeriod(time.Duration(config.Detector.FramePeriod)),
		device.WithWriteLatency(time.Duration(config.Detector.WriteLatency)),
	)
	busy := device.NewSimBusy()

	f, err := flyer.New(ctx, motor, det, busy,
		flyer.WithPreStart(config.Scan.PreStart),
		flyer.WithScanRange(config.Scan.StartPosition, config.Scan.FinishPosition),
		flyer.WithNumSpins(config.Scan.NumSpins),
		flyer.WithMaxFrames(config.Scan.MaxFrames),
		flyer.WithPollInterval(time.Duration(config.Scan.PollInterval)),
		flyer.WithStreamName(config.Scan.StreamName),
		flyer.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("creating flyer: %w", err)
	}

	log.Info("starting fly scan",
		"startPosition", config.Scan.StartPosition,
		"finishPosition", config.Scan.FinishPosition,
		"numSpins", config.Scan.NumSpins,
	)

	status, err := f.Kickoff()
	if err != nil {
		return fmt.Errorf("kickoff: %w", err)
	}

	if _, err = f.Complete(ctx); err != nil {
		return fmt.Errorf("complete: %w", err)
	}

	if err = status.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for acquisition: %w", err)
	}

	it, err := f.Collect()
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	records := it.Drain()
	log.Info("fly scan finished", "records", len(records))

	reportFiles(config, records, log)

	return storeRun(ctx, config, records, log)
}

// reportFiles logs the size of each result file produced by the detector.
func reportFiles(config *Config, records []flyer.Record, log logger.Logger) {
	fileField := config.Detector.Name + "_full_file_name"

	for _, rec := range records {
		path, ok := rec.Data[fileField].(string)
		if !ok {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			log.Warn("result file missing", "spin", rec.SeqNum, "path", path, "error", err)
			continue
		}

		log.Info("result file written",
			"spin", rec.SeqNum,
			"path", path,
			"size", humanize.Bytes(uint64(info.Size())),
		)
	}
}

func storeRun(ctx context.Context, config *Config, records []flyer.Record, log logger.Logger) error {
	store := runstore.NewStore(config.Storage.DatabasePath)
	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Warn("closing run database", "error", cerr)
		}
	}()

	runID, err := store.CreateRun(ctx, config.Scan.StreamName, config.Scan)
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}

	if err = store.StoreRecords(ctx, runID, records); err != nil {
		return fmt.Errorf("storing records: %w", err)
	}

	log.Info("run stored", "runID", runID, "database", config.Storage.DatabasePath)

	return nil
}
