package dcache

import (
	"context"

	"github.com/fsnotify/fsnotify"
)

// WatchLocal mirrors the dCache event stream from a local directory,
// mapping fsnotify operations onto the same event kinds: a rename becomes
// a move source, a create becomes a move destination, a remove becomes a
// deletion. It blocks until ctx is cancelled or watching fails.
func WatchLocal(ctx context.Context, dir string, handle func(Event)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op.Has(fsnotify.Rename) {
				handle(Event{Kind: MovedFrom, Path: ev.Name})
			}
			if ev.Op.Has(fsnotify.Create) {
				handle(Event{Kind: MovedTo, Path: ev.Name})
			}
			if ev.Op.Has(fsnotify.Remove) {
				handle(Event{Kind: Deleted, Path: ev.Name})
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
