package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/truassets/internal/kv"
	"github.com/sakif/truassets/internal/model"
	"github.com/sakif/truassets/internal/repository"
)

const propertyIDPrefix = "prop-"

// PropertyStore owns the property catalog, newest first.
type PropertyStore struct {
	mu           sync.RWMutex
	items        []model.Property
	persist      persister
	changes      broadcaster[[]model.Property]
	persistEmpty bool
	now          func() time.Time
	logger       *slog.Logger
	metrics      Recorder
}

// NewPropertyStore loads the persisted catalog, or starts empty when the key
// is absent or corrupt.
func NewPropertyStore(ctx context.Context, store kv.Store, opts Options) *PropertyStore {
	opts = opts.withDefaults()
	s := &PropertyStore{
		persist:      persister{kv: store, key: KeyProperties, logger: opts.Logger, metrics: opts.Metrics},
		persistEmpty: opts.PersistEmpty,
		now:          opts.Now,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
	}
	if load(ctx, s.persist, &s.items) {
		s.logger.Info("property catalog loaded", slog.Int("count", len(s.items)))
	}
	return s
}

// Subscribe registers fn to receive the catalog after every change.
func (s *PropertyStore) Subscribe(fn func([]model.Property)) (unsubscribe func()) {
	return s.changes.subscribe(fn)
}

// Add assigns an ID and creation time to d, prepends it and returns the new
// record. Field values are stored as given.
func (s *PropertyStore) Add(ctx context.Context, d model.PropertyDraft) model.Property {
	p := model.Property{
		ID:             propertyIDPrefix + xid.New().String(),
		Title:          d.Title,
		Location:       d.Location,
		Type:           d.Type,
		Price:          d.Price,
		TargetAmount:   d.TargetAmount,
		RaisedAmount:   d.RaisedAmount,
		Investors:      d.Investors,
		ExpectedReturn: d.ExpectedReturn,
		Tenure:         d.Tenure,
		Image:          d.Image,
		Description:    d.Description,
		Amenities:      slices.Clone(d.Amenities),
		Status:         d.Status,
		CreatedAt:      s.now().UTC(),
	}
	if p.Image == "" {
		p.Image = model.PlaceholderImage
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}

	s.mu.Lock()
	s.items = slices.Insert(s.items, 0, p)
	snap := s.commitLocked(ctx)
	s.mu.Unlock()

	s.logger.Info("property added", slog.String("propertyID", p.ID), slog.String("title", p.Title))
	s.metrics.Mutation(KeyProperties, "add")
	s.changes.publish(snap)
	return p.Clone()
}

// Update merges patch into the property with the given ID. It reports false,
// and changes nothing, when the ID is unknown.
func (s *PropertyStore) Update(ctx context.Context, id string, patch model.PropertyPatch) (model.Property, bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Property{}, false
	}
	patch.Apply(&s.items[i])
	updated := s.items[i].Clone()
	snap := s.commitLocked(ctx)
	s.mu.Unlock()

	s.logger.Info("property updated", slog.String("propertyID", id))
	s.metrics.Mutation(KeyProperties, "update")
	s.changes.publish(snap)
	return updated, true
}

// Remove deletes the property with the given ID and reports whether it
// existed.
func (s *PropertyStore) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	snap := s.commitLocked(ctx)
	s.mu.Unlock()

	s.logger.Info("property removed", slog.String("propertyID", id))
	s.metrics.Mutation(KeyProperties, "remove")
	s.changes.publish(snap)
	return true
}

// Get returns the property with the given ID.
func (s *PropertyStore) Get(id string) (model.Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return model.Property{}, false
	}
	return s.items[i].Clone(), true
}

// All returns a copy of the catalog in store order.
func (s *PropertyStore) All() []model.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Statistics aggregates the whole catalog. AvgReturns is 0 for an empty
// catalog.
func (s *PropertyStore) Statistics() model.PropertyStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := model.PropertyStats{TotalProperties: len(s.items)}
	var returns float64
	for _, p := range s.items {
		stats.ActiveInvestors += p.Investors
		stats.TotalInvestment += p.RaisedAmount
		returns += p.ExpectedReturn
	}
	if len(s.items) > 0 {
		stats.AvgReturns = returns / float64(len(s.items))
	}
	return stats
}

func (s *PropertyStore) indexLocked(id string) int {
	return slices.IndexFunc(s.items, func(p model.Property) bool { return p.ID == id })
}

func (s *PropertyStore) snapshotLocked() []model.Property {
	out := make([]model.Property, len(s.items))
	for i, p := range s.items {
		out[i] = p.Clone()
	}
	return out
}

// commitLocked persists the catalog and returns a snapshot for subscribers.
// An empty catalog is only written when persistEmpty is set.
func (s *PropertyStore) commitLocked(ctx context.Context) []model.Property {
	if len(s.items) > 0 || s.persistEmpty {
		items := s.items
		if items == nil {
			items = []model.Property{}
		}
		s.persist.save(ctx, items)
	}
	return s.snapshotLocked()
}

var _ repository.Properties = (*PropertyStore)(nil)
