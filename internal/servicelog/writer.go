package servicelog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sirosfoundation/go-emandates/internal/config"
)

const defaultPattern = config.DefaultServiceLogPattern

// Writer keeps raw messages. It satisfies communicator.MessageLog.
type Writer interface {
	Write(ctx context.Context, data []byte) error
	Close(ctx context.Context) error
}

// Option configures a writer
type Option func(*options)

type options struct {
	now    func() time.Time
	logger *slog.Logger
}

func newOptions(opts []Option) *options {
	o := &options{now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithClock replaces time.Now when naming entries
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New returns the writer the configuration asks for: GridFS when a MongoDB
// URI is set, a directory otherwise. It returns nil when service logs are
// disabled.
func New(ctx context.Context, cfg *config.ServiceLogsConfig, opts ...Option) (Writer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.Mongo.URI != "" {
		w, err := NewGridFSWriter(ctx, &GridFSConfig{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			BucketName:     cfg.Mongo.BucketName,
			ChunkSizeBytes: cfg.Mongo.ChunkSizeBytes,
			Pattern:        cfg.Pattern,
		}, opts...)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	w, err := NewDirWriter(cfg.Location, cfg.Pattern, opts...)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// DirWriter writes each message to its own file below a directory
type DirWriter struct {
	location string
	pattern  string
	opts     *options
}

// NewDirWriter creates location if needed
func NewDirWriter(location, pattern string, opts ...Option) (*DirWriter, error) {
	if location == "" {
		return nil, fmt.Errorf("service log location is required")
	}
	if err := os.MkdirAll(location, 0o750); err != nil {
		return nil, fmt.Errorf("creating service log location: %w", err)
	}
	if pattern == "" {
		pattern = defaultPattern
	}
	return &DirWriter{location: location, pattern: pattern, opts: newOptions(opts)}, nil
}

// Write stores data under a name expanded from the pattern. Missing
// directories are created.
func (w *DirWriter) Write(_ context.Context, data []byte) error {
	name, err := RelativePath(Expand(w.pattern, w.opts.now(), Action(data)))
	if err != nil {
		return err
	}
	path := filepath.Join(w.location, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating service log directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("writing service log: %w", err)
	}
	w.opts.logger.Debug("service log written", "path", path)
	return nil
}

// Close is a no-op
func (w *DirWriter) Close(context.Context) error {
	return nil
}
