// Package watch reports batches of changed files under a set of roots.
package watch

import (
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

type Options struct {
	Roots    []string
	Debounce time.Duration
	// Match filters file events. nil accepts every non-hidden file.
	Match func(path string) bool
	// SkipDir filters directories by base name. Roots are always watched.
	SkipDir func(name string) bool
	// OnChange receives the sorted, deduplicated paths changed within one
	// debounce window. It runs on the watcher goroutine.
	OnChange func(paths []string)
	Logger   *log.Logger
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Start watches opts.Roots recursively until the returned closer is closed.
func Start(opts Options) (io.Closer, error) {
	if len(opts.Roots) == 0 {
		return nil, errors.New("watch: no roots")
	}
	if opts.OnChange == nil {
		return nil, errors.New("watch: OnChange is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 200 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, root := range opts.Roots {
		if err := addWatchRecursive(watcher, root, opts.SkipDir); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}

	stopCh := make(chan struct{})
	doneCh := make(chan struct{})

	go func() {
		defer close(doneCh)
		var (
			timer   *time.Timer
			timerC  <-chan time.Time
			pending = map[string]struct{}{}
		)
		resetTimer := func() {
			if timer == nil {
				timer = time.NewTimer(opts.Debounce)
				timerC = timer.C
				return
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(opts.Debounce)
			timerC = timer.C
		}
		flush := func() {
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			sort.Strings(paths)
			opts.OnChange(paths)
		}

		for {
			select {
			case <-stopCh:
				if timer != nil {
					timer.Stop()
				}
				return
			case <-timerC:
				timerC = nil
				if len(pending) > 0 {
					flush()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Printf("directify: watcher error: %v", err)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&fsnotify.Create != 0 {
					if fi, statErr := os.Stat(evt.Name); statErr == nil && fi.IsDir() {
						if opts.SkipDir == nil || !opts.SkipDir(filepath.Base(evt.Name)) {
							if addErr := addWatchRecursive(watcher, evt.Name, opts.SkipDir); addErr != nil {
								logger.Printf("directify: watch add failed: path=%q err=%v", evt.Name, addErr)
							}
						}
						continue
					}
				}
				if !shouldTrigger(evt) {
					continue
				}
				if opts.Match != nil && !opts.Match(evt.Name) {
					continue
				}
				pending[evt.Name] = struct{}{}
				resetTimer()
			}
		}
	}()

	logger.Printf("directify: watching: roots=%q debounce_ms=%d", opts.Roots, opts.Debounce.Milliseconds())
	return closerFunc(func() error {
		close(stopCh)
		err := watcher.Close()
		<-doneCh
		return err
	}), nil
}

func shouldTrigger(evt fsnotify.Event) bool {
	if strings.TrimSpace(evt.Name) == "" {
		return false
	}
	if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(evt.Name)
	return !strings.HasPrefix(base, ".") && !strings.HasSuffix(base, "~")
}

func addWatchRecursive(watcher *fsnotify.Watcher, root string, skip func(string) bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skip != nil && skip(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
