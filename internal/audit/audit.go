// Package audit runs periodic report-only sweeps over the collection. A
// sweep refreshes the collection gauges and counts stored image objects
// that no card row references. It never mutates anything: cards are
// immutable and orphaned objects are left in place.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cardstash/cardstash/internal/collection"
	"github.com/cardstash/cardstash/internal/metrics"
	"github.com/cardstash/cardstash/internal/store"
)

// ObjectLister is the slice of the storage client the auditor needs.
type ObjectLister interface {
	List(ctx context.Context, prefix string) ([]string, error)
}

// Auditor computes collection health figures on demand.
type Auditor struct {
	store   store.Store
	objects ObjectLister
	log     *slog.Logger
}

// NewAuditor creates an Auditor over the given datastore and object store.
func NewAuditor(st store.Store, objects ObjectLister, log *slog.Logger) *Auditor {
	return &Auditor{store: st, objects: objects, log: log}
}

// Report is the outcome of one sweep.
type Report struct {
	TotalCAD float64
	Cards    int
	Orphans  int
}

// Sweep refreshes the collection gauges and counts orphaned objects.
func (a *Auditor) Sweep(ctx context.Context) (*Report, error) {
	total, cards, err := a.store.CollectionValue(ctx)
	if err != nil {
		return nil, fmt.Errorf("computing collection value: %w", err)
	}

	metrics.CollectionValueCAD.Set(total)
	metrics.CollectionCards.Set(float64(cards))

	orphans, err := a.countOrphans(ctx)
	if err != nil {
		return nil, err
	}
	metrics.OrphanedObjects.Set(float64(orphans))

	a.log.Info("audit sweep complete",
		"collection_value_cad", total,
		"cards", cards,
		"orphaned_objects", orphans,
	)

	return &Report{TotalCAD: total, Cards: cards, Orphans: orphans}, nil
}

// countOrphans compares the stored object names under the card prefix
// against the image URLs referenced by card rows. Object names come back
// relative to the prefix.
func (a *Auditor) countOrphans(ctx context.Context) (int, error) {
	names, err := a.objects.List(ctx, collection.KeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("listing stored objects: %w", err)
	}

	urls, err := a.store.ListImageURLs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing card image urls: %w", err)
	}

	referenced := make(map[string]bool, len(urls))
	for _, u := range urls {
		referenced[u] = true
	}

	orphans := 0
	for _, name := range names {
		key := collection.KeyPrefix + name
		found := false
		for u := range referenced {
			if strings.HasSuffix(u, "/"+key) {
				found = true
				break
			}
		}
		if !found {
			orphans++
			a.log.Warn("orphaned object", "key", key)
		}
	}

	return orphans, nil
}
