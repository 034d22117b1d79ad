package dcache

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/surf-rdm/surfmeta/pkg/api/types/ckan"
)

// EventKind names the inotify-style event tokens ada emits.
type EventKind string

const (
	MovedFrom EventKind = "IN_MOVED_FROM"
	MovedTo   EventKind = "IN_MOVED_TO"
	Deleted   EventKind = "IN_DELETE"
)

// Event is one file-system event on the monitored storage tree.
type Event struct {
	Kind EventKind
	Path string
}

// ParseEvent reads one line of event output. The event token is the first
// whitespace-delimited field (possibly comma-joined with other tokens) and
// the path is the second. Lines carrying no relevant token are skipped.
func ParseEvent(line string) (Event, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Event{}, false
	}
	for _, kind := range []EventKind{MovedFrom, MovedTo, Deleted} {
		if strings.Contains(fields[0], string(kind)) {
			return Event{Kind: kind, Path: fields[1]}, true
		}
	}
	return Event{}, false
}

// Catalog is the dataset store the reconciler patches.
// cmd/surfmeta's REST client satisfies it.
type Catalog interface {
	// FindByStoragePath returns every dataset whose location extra ends
	// with path.
	FindByStoragePath(ctx context.Context, path string) ([]ckan.Dataset, error)

	// Update pushes the full dataset back to the store.
	Update(ctx context.Context, ds ckan.Dataset) (ckan.Dataset, error)
}

// Stater reports labels and checksums for a storage path.
type Stater interface {
	Stat(ctx context.Context, path string) (Stat, error)
}

// AlwaysLabeled is a Stater reporting every path as carrying label.
// The local watch mode uses it, since local files carry no dCache labels.
func AlwaysLabeled(label string) Stater { return alwaysLabeled(label) }

type alwaysLabeled string

func (a alwaysLabeled) Stat(context.Context, string) (Stat, error) {
	return Stat{Labels: []string{string(a)}}, nil
}

const (
	// DeletedWarningPrefix starts the extras key recorded when a dataset's
	// file disappears from storage. The timestamp suffix keeps repeated
	// deletions as distinct entries.
	DeletedWarningPrefix = "!!!DELETED_WARNING_"

	deletedWarningStamp = "20060102T150405Z"
)

// Reconciler applies storage events to the catalog.
//
// It is a two-state machine: idle, or holding the source path of a move
// whose destination has not arrived yet. A move is applied only when the
// destination file carries the tracking label.
type Reconciler struct {
	catalog Catalog
	stat    Stater
	label   string
	logger  *log.Logger
	now     func() time.Time

	pendingMove string
}

func NewReconciler(catalog Catalog, stat Stater, label string, logger *log.Logger) *Reconciler {
	return &Reconciler{
		catalog: catalog,
		stat:    stat,
		label:   label,
		logger:  logger,
		now:     time.Now,
	}
}

// Handle applies one event to the catalog. Lookup and update failures are
// logged and swallowed so a long-running listen loop survives bad events.
func (r *Reconciler) Handle(ctx context.Context, ev Event) {
	switch ev.Kind {
	case MovedFrom:
		r.pendingMove = ev.Path
	case MovedTo:
		from := r.pendingMove
		r.pendingMove = ""
		if from == "" {
			r.logger.Printf("move to %s without a preceding move from: ignored", ev.Path)
			return
		}
		st, err := r.stat.Stat(ctx, ev.Path)
		if err != nil {
			r.logger.Printf("stat %s: %s", ev.Path, err)
			return
		}
		if !st.HasLabel(r.label) {
			return
		}
		r.updateLocation(ctx, from, ev.Path)
	case Deleted:
		r.markDeleted(ctx, ev.Path)
	}
}

// updateLocation rewrites the location extra of every dataset pointing at
// from, replacing the from suffix with to.
func (r *Reconciler) updateLocation(ctx context.Context, from string, to string) {
	datasets, err := r.catalog.FindByStoragePath(ctx, from)
	if err != nil {
		r.logger.Printf("lookup by path %s: %s", from, err)
		return
	}

	for _, ds := range datasets {
		for i, extra := range ds.Extras {
			if extra.Key != ckan.KeyLocation || !strings.HasSuffix(extra.Value, from) {
				continue
			}
			ds.Extras[i].Value = strings.TrimSuffix(extra.Value, from) + to
		}
		if _, err := r.catalog.Update(ctx, ds); err != nil {
			r.logger.Printf("update dataset %s: %s", ds.Name, err)
			continue
		}
		r.logger.Printf("dataset %s: location moved from %s to %s", ds.Name, from, to)
	}
}

// markDeleted appends a timestamped deletion warning to every dataset
// pointing at path. The dataset itself is left in place.
func (r *Reconciler) markDeleted(ctx context.Context, path string) {
	datasets, err := r.catalog.FindByStoragePath(ctx, path)
	if err != nil {
		r.logger.Printf("lookup by path %s: %s", path, err)
		return
	}

	stamp := r.now().UTC().Format(deletedWarningStamp)
	for _, ds := range datasets {
		ds.Extras = append(ds.Extras, ckan.Extra{
			Key:   DeletedWarningPrefix + stamp,
			Value: fmt.Sprintf("file %s was deleted from storage at %s", path, stamp),
		})
		if _, err := r.catalog.Update(ctx, ds); err != nil {
			r.logger.Printf("update dataset %s: %s", ds.Name, err)
			continue
		}
		r.logger.Printf("dataset %s: recorded deletion of %s", ds.Name, path)
	}
}
