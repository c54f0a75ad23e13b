package pkg

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Watcher reloads a file into a session every time it changes on disk
type Watcher struct {
	session  *Session
	ingestor IIngestor
	path     string
	delay    time.Duration

	// OnLoad, when set, is called after every reload attempt
	OnLoad func(*Result, error)
}

func NewWatcher(session *Session, ingestor IIngestor, filePath string, delay time.Duration) *Watcher {
	return &Watcher{
		session:  session,
		ingestor: ingestor,
		path:     filepath.Clean(filePath),
		delay:    delay,
	}
}

// Run loads the file once, then keeps reloading it until ctx is done. Bursts of change events
// closer than the watcher delay trigger a single reload. Run returns once every reload it
// started has finished.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer func() { _ = fsw.Close() }()

	// editors often replace files instead of writing them, so the directory is watched
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return errors.Wrapf(err, "watching %s", w.path)
	}

	var reloads sync.WaitGroup
	defer reloads.Wait()

	w.reload(ctx)
	// the debounce timer may fire after Run returned, so it only signals
	trigger := make(chan struct{}, 1)
	debounced := debounce.New(w.delay)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
			reloads.Add(1)
			go func() {
				defer reloads.Done()
				w.reload(ctx)
			}()
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				debounced(func() {
					select {
					case trigger <- struct{}{}:
					default:
					}
				})
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			glog.Warningf("watch %s: %v", w.path, err)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	res, err := w.session.LoadFile(ctx, w.ingestor, w.path)
	switch {
	case errors.Is(err, ErrSuperseded):
		glog.V(1).Infof("reload of %s superseded", w.path)
	case err != nil:
		glog.Errorf("reload of %s failed, keeping previous model: %v", w.path, err)
	default:
		glog.Infof("reloaded %s: %d points", w.path, res.Model.TotalPoints())
	}
	if w.OnLoad != nil {
		w.OnLoad(res, err)
	}
}
