// Package app wires configuration, storage, and the run catalog around the
// conversion primitives. The cmd binaries are thin shells over this package.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/atfconv/atfconv/internal/adapter"
	"github.com/atfconv/atfconv/internal/atfio"
	"github.com/atfconv/atfconv/internal/catalog"
	"github.com/atfconv/atfconv/internal/config"
	"github.com/atfconv/atfconv/internal/format"
	"github.com/atfconv/atfconv/internal/remap"
	"github.com/atfconv/atfconv/internal/storage"
)

// App holds the shared resources for a toolkit invocation.
type App struct {
	cfg   *config.Config
	log   *zap.Logger
	store storage.ObjectStorage
	cat   catalog.Catalog
}

// New creates an App from a resolved configuration.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	a := &App{cfg: cfg, log: logger}

	var err error
	switch cfg.Storage.Type {
	case "s3":
		a.store, err = storage.NewS3Storage(ctx, cfg.Storage.S3.Bucket, storage.S3Config{
			Region:   cfg.Storage.S3.Region,
			Endpoint: cfg.Storage.S3.Endpoint,
		})
	default:
		a.store, err = storage.NewLocalStorage(cfg.Storage.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}

	if cfg.Catalog.Enabled {
		a.cat, err = catalog.Open(cfg.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("open run catalog: %w", err)
		}
	}

	return a, nil
}

// Close releases the App's resources.
func (a *App) Close() error {
	if a.cat != nil {
		return a.cat.Close()
	}
	return nil
}

// ConvertFile converts one local source file into sourcePath + ".atf".
// The output is written through a temporary file and renamed into place on
// success, so a failed run leaves no partial output behind.
func (a *App) ConvertFile(ctx context.Context, sourcePath, formatID string) (*catalog.Run, error) {
	spec, err := format.Lookup(formatID)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	src, err := atfio.OpenSource(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sourcePath, err)
	}
	defer src.Close()

	out, err := atfio.CreateFile(atfio.OutputPath(sourcePath), a.cfg.Output.Snappy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sourcePath, err)
	}
	defer out.Close()

	if a.cfg.Output.Header {
		if err := out.WriteHeader(); err != nil {
			return nil, fmt.Errorf("%s: %w", sourcePath, err)
		}
	}

	stats, err := adapter.Convert(spec, src, out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sourcePath, err)
	}
	if err := out.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", sourcePath, err)
	}

	run := &catalog.Run{
		Kind:          catalog.KindConvert,
		Source:        sourcePath,
		Output:        out.Path(),
		Format:        formatID,
		RowsRead:      stats.RowsRead,
		EventsEmitted: stats.EventsEmitted,
		RowsSkipped:   stats.ShortRowsSkipped,
		OriginResets:  int64(stats.OriginResets),
		Duration:      time.Since(start),
	}
	a.record(ctx, run)

	a.log.Info("converted trace",
		zap.String("source", sourcePath),
		zap.String("output", run.Output),
		zap.String("format", formatID),
		zap.Int64("rows_read", stats.RowsRead),
		zap.Int64("events_emitted", stats.EventsEmitted),
		zap.Int64("rows_skipped", stats.ShortRowsSkipped),
		zap.Int("origin_resets", stats.OriginResets),
		zap.Bool("terminator_seen", stats.TerminatorSeen),
		zap.Duration("duration", run.Duration),
	)
	return run, nil
}

// ConvertObject fetches an object from trace storage into the scratch
// directory, converts it, and publishes the output back under the object
// key + ".atf".
func (a *App) ConvertObject(ctx context.Context, objectKey, formatID string) (*catalog.Run, error) {
	scratch := filepath.Join(a.cfg.ScratchDir, filepath.Base(objectKey))
	if err := a.store.Download(ctx, objectKey, scratch); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", objectKey, err)
	}
	defer os.Remove(scratch)

	run, err := a.ConvertFile(ctx, scratch, formatID)
	if err != nil {
		return nil, err
	}
	defer os.Remove(run.Output)

	outputKey := objectKey + atfio.OutputSuffix
	if a.cfg.Output.Snappy {
		outputKey += atfio.SnappySuffix
	}
	if err := a.store.Upload(ctx, run.Output, outputKey); err != nil {
		return nil, fmt.Errorf("publish %s: %w", outputKey, err)
	}

	a.log.Info("published converted trace",
		zap.String("object", objectKey),
		zap.String("output_object", outputKey),
	)

	run.Source = objectKey
	run.Output = outputKey
	return run, nil
}

// RemapFile compresses the address space of an ATF-like CSV file, writing
// the remapped copy to sourcePath + ".atf". Two full passes run against the
// same file; if its address column changes between them the run fails
// rather than emitting silently corrupt output.
func (a *App) RemapFile(ctx context.Context, sourcePath string) (*catalog.Run, error) {
	start := time.Now()

	buildSrc, err := atfio.OpenSource(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sourcePath, err)
	}
	m, err := remap.Build(buildSrc)
	buildSrc.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sourcePath, err)
	}

	applySrc, err := atfio.OpenSource(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sourcePath, err)
	}
	defer applySrc.Close()

	outPath := atfio.OutputPath(sourcePath)
	tmp, err := os.CreateTemp(filepath.Dir(outPath), "."+filepath.Base(outPath)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sourcePath, err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := remap.Apply(applySrc, m, tmp); err != nil {
		return nil, fmt.Errorf("%s: %w", sourcePath, err)
	}
	if err := tmp.Sync(); err != nil {
		return nil, fmt.Errorf("%s: %w", sourcePath, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", sourcePath, err)
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return nil, fmt.Errorf("%s: %w", sourcePath, err)
	}

	run := &catalog.Run{
		Kind:     catalog.KindRemap,
		Source:   sourcePath,
		Output:   outPath,
		Format:   format.ATF,
		RowsRead: int64(m.Len()),
		Duration: time.Since(start),
	}
	a.record(ctx, run)

	a.log.Info("remapped trace addresses",
		zap.String("source", sourcePath),
		zap.String("output", outPath),
		zap.Int("distinct_addresses", m.Len()),
		zap.Duration("duration", run.Duration),
	)
	return run, nil
}

// record writes a run to the catalog when one is configured. Catalog
// failures are logged, not fatal; the converted output already exists.
func (a *App) record(ctx context.Context, run *catalog.Run) {
	if a.cat == nil {
		return
	}
	if err := a.cat.RecordRun(ctx, run); err != nil {
		a.log.Warn("failed to record run", zap.Error(err))
	}
}
