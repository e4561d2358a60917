// Package watch follows a growing file and compacts the tracebacks written
// to it.
//
// It implements "tail -f" like functionality on top of traceback.Stream:
// ordinary lines are passed through as they arrive, traceback lines are held
// until the traceback completes and then replaced by its summary.
package watch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/bimmerbailey/tracecompact/internal/traceback"
)

// ErrFileRotated is returned when the followed file is removed or renamed
// and rotation following is off.
var ErrFileRotated = errors.New("file rotated")

// DefaultRotateTimeout bounds the wait for a rotated file to reappear.
const DefaultRotateTimeout = 10 * time.Second

// Options configures the follower behavior.
type Options struct {
	FilePath      string                   // Path to the file
	FromStart     bool                     // Compact the existing content before following
	Follow        bool                     // Whether to follow the file for new content
	FollowRotate  bool                     // Whether to follow through rotations
	RotateTimeout time.Duration            // How long to wait for a rotated file; 0 means DefaultRotateTimeout
	IdleFlush     time.Duration            // Release a held-back partial traceback after this much quiet; 0 disables
	OutputFunc    func(chunk string) error // Called for each output line or summary, without a line break
	Logger        *zap.Logger
}

// Follower compacts tracebacks in a file as it grows.
type Follower struct {
	opts      Options
	stream    *traceback.Stream
	logger    *zap.Logger
	file      *os.File
	offset    int64
	partial   []byte
	lastWrite time.Time
	watcher   *fsnotify.Watcher
}

// New creates a new Follower that compacts with c.
func New(c *traceback.Compactor, opts Options) *Follower {
	if opts.RotateTimeout <= 0 {
		opts.RotateTimeout = DefaultRotateTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Follower{
		opts:   opts,
		stream: c.NewStream(opts.OutputFunc),
		logger: logger,
	}
}

// Run starts following. It blocks until ctx is cancelled, the file rotates
// without FollowRotate, or an error occurs. Held-back lines are released
// before Run returns.
func (f *Follower) Run(ctx context.Context) (err error) {
	if err := f.openFile(); err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.close()
	defer func() {
		if ferr := f.finish(); err == nil {
			err = ferr
		}
	}()

	if f.opts.FromStart || !f.opts.Follow {
		if err := f.readNewContent(); err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
	}

	if !f.opts.Follow {
		return nil
	}

	if err := f.setupWatcher(); err != nil {
		return fmt.Errorf("failed to setup watcher: %w", err)
	}

	return f.watch(ctx)
}

// openFile opens the file and, when following from the end, records its size.
func (f *Follower) openFile() error {
	file, err := os.Open(f.opts.FilePath)
	if err != nil {
		return err
	}
	f.file = file
	f.offset = 0

	if f.opts.Follow && !f.opts.FromStart {
		stat, err := file.Stat()
		if err != nil {
			return err
		}
		f.offset = stat.Size()
	}

	return nil
}

// setupWatcher initializes the fsnotify watcher.
func (f *Follower) setupWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	f.watcher = watcher

	return watcher.Add(f.opts.FilePath)
}

// watch monitors the file for changes and outputs new content.
func (f *Follower) watch(ctx context.Context) error {
	var idle <-chan time.Time
	if f.opts.IdleFlush > 0 {
		ticker := time.NewTicker(f.opts.IdleFlush / 2)
		defer ticker.Stop()
		idle = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-f.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}
			if err := f.handleEvent(ctx, event); err != nil {
				return err
			}

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			return fmt.Errorf("watcher error: %w", err)

		case <-idle:
			if f.stream.Pending() && time.Since(f.lastWrite) >= f.opts.IdleFlush {
				f.logger.Debug("Releasing idle partial traceback")
				if err := f.stream.Flush(); err != nil {
					return err
				}
			}
		}
	}
}

// handleEvent processes a file system event.
func (f *Follower) handleEvent(ctx context.Context, event fsnotify.Event) error {
	switch {
	case event.Has(fsnotify.Write):
		return f.readNewContent()

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename), event.Has(fsnotify.Chmod):
		// On Linux a removed file that is still open reports Chmod, and
		// its Remove only arrives once we close it.
		if f.rotated() {
			return f.handleRotation(ctx)
		}
	}

	return nil
}

// rotated reports whether the path no longer names the open file.
func (f *Follower) rotated() bool {
	if f.file == nil {
		return true
	}
	current, err := os.Stat(f.opts.FilePath)
	if err != nil {
		return true
	}
	open, err := f.file.Stat()
	if err != nil {
		return true
	}
	return !os.SameFile(open, current)
}

// readNewContent feeds every complete line appended since the last read to
// the stream. An unterminated final line is kept until its line break
// arrives.
func (f *Follower) readNewContent() error {
	stat, err := f.file.Stat()
	if err != nil {
		return err
	}
	if stat.Size() < f.offset {
		f.logger.Debug("File truncated, reading from start",
			zap.String("file", f.opts.FilePath),
			zap.Int64("offset", f.offset),
			zap.Int64("size", stat.Size()))
		f.offset = 0
		f.partial = f.partial[:0]
	}

	if _, err := f.file.Seek(f.offset, io.SeekStart); err != nil {
		return err
	}
	data, err := io.ReadAll(f.file)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	f.offset += int64(len(data))
	f.lastWrite = time.Now()

	data = append(f.partial, data...)
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSuffix(string(data[:i]), "\r")
		if err := f.stream.WriteLine(line); err != nil {
			return err
		}
		data = data[i+1:]
	}
	f.partial = append(f.partial[:0], data...)

	return nil
}

// handleRotation handles file rotation.
func (f *Follower) handleRotation(ctx context.Context) error {
	if !f.opts.FollowRotate {
		f.logger.Warn("File rotated; use --follow-rotate to follow through rotations",
			zap.String("file", f.opts.FilePath))
		return ErrFileRotated
	}

	// Tracebacks do not span files.
	if err := f.finish(); err != nil {
		return err
	}

	if f.file != nil {
		f.file.Close()
		f.file = nil
	}

	timeout := time.After(f.opts.RotateTimeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timeout:
			return fmt.Errorf("timeout waiting for rotated file to reappear")
		case <-ticker.C:
			file, err := os.Open(f.opts.FilePath)
			if err != nil {
				continue
			}
			f.file = file
			f.offset = 0

			if err := f.watcher.Add(f.opts.FilePath); err != nil {
				return fmt.Errorf("failed to watch rotated file: %w", err)
			}

			f.logger.Info("File rotated, following new file",
				zap.String("file", f.opts.FilePath))
			return f.readNewContent()
		}
	}
}

// finish feeds an unterminated final line and releases held-back lines.
func (f *Follower) finish() error {
	if len(f.partial) > 0 {
		line := strings.TrimSuffix(string(f.partial), "\r")
		f.partial = f.partial[:0]
		if err := f.stream.WriteLine(line); err != nil {
			return err
		}
	}
	return f.stream.Flush()
}

// close closes all resources.
func (f *Follower) close() {
	if f.file != nil {
		f.file.Close()
	}
	if f.watcher != nil {
		f.watcher.Close()
	}
}
