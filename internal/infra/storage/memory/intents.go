package memory

import (
	"context"
	"sync"
	"time"

	domainbooking "retreat/internal/domain/booking"
	"retreat/internal/domain/shared/events"
)

// IntentRepository keeps booking intents in memory. Save enforces the
// same optimistic versioning as the Mongo implementation, so transition
// races resolve identically in both storage modes.
type IntentRepository struct {
	mu    sync.RWMutex
	byID  map[domainbooking.IntentID]*domainbooking.Intent
	byRef map[string]domainbooking.IntentID
}

func NewIntentRepository() *IntentRepository {
	return &IntentRepository{
		byID:  make(map[domainbooking.IntentID]*domainbooking.Intent),
		byRef: make(map[string]domainbooking.IntentID),
	}
}

func (r *IntentRepository) ByID(ctx context.Context, id domainbooking.IntentID) (*domainbooking.Intent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	intent, ok := r.byID[id]
	if !ok {
		return nil, domainbooking.ErrIntentNotFound
	}
	return cloneIntent(intent), nil
}

func (r *IntentRepository) ByCheckoutRef(ctx context.Context, ref string) (*domainbooking.Intent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byRef[ref]
	if !ok {
		return nil, domainbooking.ErrIntentNotFound
	}
	return cloneIntent(r.byID[id]), nil
}

func (r *IntentRepository) Save(ctx context.Context, intent *domainbooking.Intent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, exists := r.byID[intent.ID]
	if exists && stored.Version != intent.Version {
		return domainbooking.ErrConcurrentUpdate
	}
	next := cloneIntent(intent)
	next.Version = intent.Version + 1
	r.byID[next.ID] = next
	r.byRef[next.CheckoutRef] = next.ID
	intent.Version = next.Version
	return nil
}

func (r *IntentRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*domainbooking.Intent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Intent
	for _, intent := range r.byID {
		if intent.Status == domainbooking.StatusPending && intent.CreatedAt.Before(cutoff) {
			out = append(out, cloneIntent(intent))
		}
	}
	return out, nil
}

func (r *IntentRepository) ListConfirmed(ctx context.Context) ([]*domainbooking.Intent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Intent
	for _, intent := range r.byID {
		if intent.Status == domainbooking.StatusConfirmed {
			out = append(out, cloneIntent(intent))
		}
	}
	return out, nil
}

func cloneIntent(intent *domainbooking.Intent) *domainbooking.Intent {
	clone := *intent
	clone.EventRecorder = events.EventRecorder{}
	return &clone
}

var _ domainbooking.Repository = (*IntentRepository)(nil)
