// Package watch runs the pipeline over audio files dropped into a directory.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/snarg/moodscribe/internal/audio"
	"github.com/snarg/moodscribe/internal/pipeline"
	"github.com/snarg/moodscribe/internal/render"
)

const defaultDebounce = 500 * time.Millisecond

// Runner executes one transcription request.
type Runner interface {
	Run(ctx context.Context, audioPath string, mode render.Mode) (*pipeline.Result, error)
}

// ResultFunc receives the outcome of each processed file. Exactly one of
// res and err is non-nil.
type ResultFunc func(path string, res *pipeline.Result, err error)

// Options configures a Watcher.
type Options struct {
	Dir  string
	Mode render.Mode
	// Backfill processes audio files already present when the watcher starts.
	Backfill bool
	// Debounce is the quiet period after the last write before a file is
	// processed. Zero means 500ms.
	Debounce time.Duration
	OnResult ResultFunc
	Log      zerolog.Logger
}

// Status is a point-in-time snapshot of the watcher.
type Status struct {
	Status         string `json:"status"` // "starting", "backfilling", "watching", "stopped"
	WatchDir       string `json:"watch_dir"`
	FilesProcessed int64  `json:"files_processed"`
	FilesFailed    int64  `json:"files_failed"`
}

// Watcher monitors a directory tree for new audio files and submits each one
// to the pipeline as an independent request. Files are processed one at a
// time in arrival order.
type Watcher struct {
	runner   Runner
	dir      string
	mode     render.Mode
	backfill bool
	debounce time.Duration
	onResult ResultFunc
	log      zerolog.Logger

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	queue   chan string
	wg      sync.WaitGroup

	// Debounce: coalesce rapid Create+Write events on the same file.
	debounceMu     sync.Mutex
	debounceTimers map[string]*time.Timer

	// Stats
	filesProcessed atomic.Int64
	filesFailed    atomic.Int64
	status         atomic.Value // string
}

// New creates a watcher. Call Start to begin watching.
func New(runner Runner, opts Options) *Watcher {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	mode := opts.Mode
	if mode == "" {
		mode = render.DefaultMode
	}
	w := &Watcher{
		runner:         runner,
		dir:            opts.Dir,
		mode:           mode,
		backfill:       opts.Backfill,
		debounce:       debounce,
		onResult:       opts.OnResult,
		log:            opts.Log.With().Str("component", "watcher").Logger(),
		queue:          make(chan string, 64),
		debounceTimers: make(map[string]*time.Timer),
	}
	w.status.Store("starting")
	return w
}

// Start initializes the fsnotify watcher, adds all existing directories, and
// begins watching for new files. Processing stops when ctx is cancelled or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = fw

	// Walk the directory tree and add all directories to fsnotify.
	dirCount := 0
	var existing []string
	err = filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Warn().Err(err).Str("path", path).Msg("error walking directory")
			return nil // continue walking
		}
		if d.IsDir() {
			if addErr := fw.Add(path); addErr != nil {
				w.log.Warn().Err(addErr).Str("path", path).Msg("failed to watch directory")
			} else {
				dirCount++
			}
			return nil
		}
		if audio.IsAudioFile(path) {
			existing = append(existing, path)
		}
		return nil
	})
	if err == nil && dirCount == 0 {
		err = &fs.PathError{Op: "watch", Path: w.dir, Err: fs.ErrNotExist}
	}
	if err != nil {
		fw.Close()
		return err
	}

	w.log.Info().
		Int("directories", dirCount).
		Str("watch_dir", w.dir).
		Str("mode", string(w.mode)).
		Msg("file watcher initialized")

	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(2)
	go w.watchLoop(ctx)
	go w.processLoop(ctx)

	if w.backfill && len(existing) > 0 {
		w.status.Store("backfilling")
		sort.Strings(existing)
		w.log.Info().Int("files", len(existing)).Msg("backfill starting")
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for _, path := range existing {
				select {
				case <-ctx.Done():
					return
				case w.queue <- path:
				}
			}
			w.status.CompareAndSwap("backfilling", "watching")
		}()
	} else {
		w.status.Store("watching")
	}

	return nil
}

// Stop closes the fsnotify watcher and waits for the file in progress to finish.
func (w *Watcher) Stop() {
	w.status.Store("stopped")
	if w.cancel != nil {
		w.cancel()
	}
	if w.watcher != nil {
		w.watcher.Close()
	}

	w.debounceMu.Lock()
	for path, t := range w.debounceTimers {
		t.Stop()
		delete(w.debounceTimers, path)
	}
	w.debounceMu.Unlock()

	w.wg.Wait()
	w.log.Info().
		Int64("files_processed", w.filesProcessed.Load()).
		Int64("files_failed", w.filesFailed.Load()).
		Msg("file watcher stopped")
}

// Status returns the current watcher status.
func (w *Watcher) Status() Status {
	s, _ := w.status.Load().(string)
	return Status{
		Status:         s,
		WatchDir:       w.dir,
		FilesProcessed: w.filesProcessed.Load(),
		FilesFailed:    w.filesFailed.Load(),
	}
}

// watchLoop is the main event loop that processes fsnotify events.
func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			// New directory: add it to the watch set.
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if err := w.watcher.Add(event.Name); err != nil {
					w.log.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new directory")
				} else {
					w.log.Debug().Str("path", event.Name).Msg("watching new directory")
				}
				continue
			}

			if !audio.IsAudioFile(event.Name) {
				continue
			}

			w.scheduleProcess(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("fsnotify error")
		}
	}
}

// scheduleProcess debounces file processing. This coalesces rapid
// Create+Write events and lets the writer finish before the file is read.
func (w *Watcher) scheduleProcess(ctx context.Context, path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if t, ok := w.debounceTimers[path]; ok {
		t.Reset(w.debounce)
		return
	}

	w.debounceTimers[path] = time.AfterFunc(w.debounce, func() {
		w.debounceMu.Lock()
		delete(w.debounceTimers, path)
		w.debounceMu.Unlock()

		select {
		case <-ctx.Done():
		case w.queue <- path:
		}
	})
}

// processLoop runs queued files through the pipeline one at a time.
func (w *Watcher) processLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.queue:
			w.process(ctx, path)
		}
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	res, err := w.runner.Run(ctx, path, w.mode)
	if err != nil {
		w.filesFailed.Add(1)
		w.log.Warn().Err(err).Str("path", path).Msg("failed to process watched file")
	} else {
		w.filesProcessed.Add(1)
		w.log.Debug().Str("path", path).Str("language", res.Language).Msg("processed watched file")
	}
	if w.onResult != nil {
		w.onResult(path, res, err)
	}
}
