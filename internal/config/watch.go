package config

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"dynamic-reflections/internal/utils"
)

// Watcher reloads a config file when it changes on disk.
// Reloads are delivered on Updates and applied by the frame loop between frames.
type Watcher struct {
	path     string
	fsnotify *fsnotify.Watcher
	updates  chan Config
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
	settle   time.Duration
}

// Watch starts watching path. The parent directory is watched so editors
// that replace the file on save are picked up too. A reload happens once
// writes have been quiet for settle; zero means 100ms.
func Watch(path string, settle time.Duration) (*Watcher, error) {
	if settle <= 0 {
		settle = 100 * time.Millisecond
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsWatch.Close()
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		fsnotify: fsWatch,
		updates:  make(chan Config, 1),
		done:     make(chan struct{}),
		settle:   settle,
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) Updates() <-chan Config { return w.updates }

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsnotify.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) && !e.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.settle)
			} else {
				timer.Reset(w.settle)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			if !errors.Is(err, fsnotify.ErrEventOverflow) {
				utils.Warn("Config: watcher error: %v", err)
			}

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		utils.Warn("Config: reload failed, keeping previous settings: %v", err)
		return
	}
	utils.Info("Config: reloaded %s", w.path)

	// Only the newest config matters.
	select {
	case <-w.updates:
	default:
	}
	select {
	case w.updates <- cfg:
	case <-w.done:
	}
}
