package store

import (
	"context"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reports external changes to the documents folder (another process
// or an editor touching the .md files) on the returned channel, coalescing
// event bursts with a short debounce. The channel closes when ctx is done
// or the watcher fails.
//
// Notifications are edge-triggered "something changed" signals; callers
// re-list rather than interpreting individual events.
func (s *FileStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer watcher.Close()

		const quiet = 250 * time.Millisecond
		var pending *time.Timer
		var fire <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !watchRelevant(ev) {
					continue
				}
				if pending == nil {
					pending = time.NewTimer(quiet)
					fire = pending.C
				} else {
					if !pending.Stop() {
						select {
						case <-pending.C:
						default:
						}
					}
					pending.Reset(quiet)
				}
			case <-fire:
				pending = nil
				fire = nil
				select {
				case out <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Watcher errors are non-fatal; the next poll/reload catches up.
			}
		}
	}()
	return out, nil
}

func watchRelevant(ev fsnotify.Event) bool {
	name := ev.Name
	if !strings.HasSuffix(name, ".md") {
		return false
	}
	// Temp files from our own atomic writes start with a dot.
	base := name
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		base = name[i+1:]
	}
	if strings.HasPrefix(base, ".") {
		return false
	}
	return ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write) ||
		ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename)
}
