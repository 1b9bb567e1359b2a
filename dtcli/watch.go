package dtcli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/exp/slices"

	"oss.terrastruct.com/drawtex/lib/xmain"
)

type watcher struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	ms *xmain.State
	renderOpts

	renderCh chan struct{}

	fw        *fsnotify.Watcher
	closeOnce sync.Once

	errMu sync.Mutex
	err   error
}

func newWatcher(ctx context.Context, ms *xmain.State, opts renderOpts) (*watcher, error) {
	ctx, cancel := context.WithCancel(ctx)

	w := &watcher{
		ctx:    ctx,
		cancel: cancel,

		ms:         ms,
		renderOpts: opts,

		renderCh: make(chan struct{}, 1),
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		cancel()
		return nil, err
	}
	w.fw = fw
	return w, nil
}

func (w *watcher) run() error {
	defer w.close()

	w.goFunc(w.watchLoop)
	w.goFunc(w.renderLoop)

	w.wg.Wait()
	w.close()
	return w.err
}

func (w *watcher) close() {
	w.closeOnce.Do(func() {
		w.cancel()
		err := w.fw.Close()
		w.setErr(err)
	})
}

func (w *watcher) setErr(err error) {
	w.errMu.Lock()
	if w.err == nil {
		w.err = err
	}
	w.errMu.Unlock()
}

func (w *watcher) goFunc(fn func(context.Context) error) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.cancel()

		err := fn(w.ctx)
		w.setErr(err)
	}()
}

// watchLoop requests a render whenever the input changes. Editors often
// write a file as a burst of events so events are batched until 16ms pass
// without another. The watch is re-established on every event since some
// editors replace the file instead of writing it in place.
func (w *watcher) watchLoop(ctx context.Context) error {
	lastModified := make(map[string]time.Time)

	mt, err := w.ensureAddWatch(ctx, w.inputPath)
	if err != nil {
		return err
	}
	lastModified[w.inputPath] = mt
	w.ms.Log.Info.Printf("rendering %v...", w.ms.HumanPath(w.inputPath))
	w.requestRender()

	eatBurstTimer := time.NewTimer(0)
	<-eatBurstTimer.C
	pollTicker := time.NewTicker(time.Second * 10)
	defer pollTicker.Stop()

	changed := make(map[string]struct{})

	for {
		select {
		case <-pollTicker.C:
			// Catches changes whose events were dropped.
			missedChanges := false
			for _, watched := range w.fw.WatchList() {
				mt, err := w.ensureAddWatch(ctx, watched)
				if err != nil {
					return err
				}
				if mt2, ok := lastModified[watched]; !ok || !mt.Equal(mt2) {
					missedChanges = true
					lastModified[watched] = mt
				}
			}
			if missedChanges {
				w.requestRender()
			}
		case ev, ok := <-w.fw.Events:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			w.ms.Log.Debug.Printf("received file system event %v", ev)
			mt, err := w.ensureAddWatch(ctx, ev.Name)
			if err != nil {
				return err
			}
			if ev.Op == fsnotify.Chmod {
				if mt.Equal(lastModified[ev.Name]) {
					// Benign Chmod.
					continue
				}
			}
			lastModified[ev.Name] = mt
			changed[ev.Name] = struct{}{}
			eatBurstTimer.Reset(time.Millisecond * 16)
		case <-eatBurstTimer.C:
			var changedList []string
			for k := range changed {
				changedList = append(changedList, k)
				delete(changed, k)
			}
			if len(changedList) == 0 {
				continue
			}
			slices.Sort(changedList)
			changedStr := w.ms.HumanPath(changedList[0])
			for i := 1; i < len(changedList); i++ {
				changedStr += fmt.Sprintf(", %s", w.ms.HumanPath(changedList[i]))
			}
			w.ms.Log.Info.Printf("detected change in %s: re-rendering...", changedStr)
			w.requestRender()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			w.ms.Log.Error.Printf("fsnotify error: %v", err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *watcher) requestRender() {
	select {
	case w.renderCh <- struct{}{}:
	default:
	}
}

// ensureAddWatch retries with backoff until path can be watched, as while a
// file is being replaced it briefly does not exist.
func (w *watcher) ensureAddWatch(ctx context.Context, path string) (time.Time, error) {
	interval := time.Millisecond * 16
	tc := time.NewTimer(0)
	<-tc.C
	for {
		mt, err := w.addWatch(path)
		if err == nil {
			return mt, nil
		}
		if interval >= time.Second {
			w.ms.Log.Error.Printf("failed to watch %q: %v (retrying in %v)", w.ms.HumanPath(path), err, interval)
		}

		tc.Reset(interval)
		select {
		case <-tc.C:
			if interval < time.Second {
				interval = time.Second
			}
			if interval < time.Second*16 {
				interval *= 2
			}
		case <-ctx.Done():
			return time.Time{}, ctx.Err()
		}
	}
}

func (w *watcher) addWatch(path string) (time.Time, error) {
	err := w.fw.Add(path)
	if err != nil {
		return time.Time{}, err
	}
	d, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return d.ModTime(), nil
}

// renderLoop renders once per request. Render errors are logged and the
// loop keeps going so a broken script can be fixed in place.
func (w *watcher) renderLoop(ctx context.Context) error {
	firstRender := true
	for {
		select {
		case <-w.renderCh:
		case <-ctx.Done():
			return ctx.Err()
		}

		prefix := ""
		if !firstRender {
			prefix = "re-"
		}
		firstRender = false

		err := render(ctx, w.ms, w.renderOpts)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			w.ms.Log.Error.Printf("failed to %srender: %v", prefix, err)
		}
	}
}
