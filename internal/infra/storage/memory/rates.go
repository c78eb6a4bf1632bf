package memory

import (
	"context"
	"sync"

	domainpricing "retreat/internal/domain/pricing"
)

// RateLog is the in-memory append-only rate history.
type RateLog struct {
	mu      sync.RWMutex
	history []domainpricing.RateConfig
}

func NewRateLog() *RateLog {
	return &RateLog{}
}

func (l *RateLog) Append(ctx context.Context, rc domainpricing.RateConfig) error {
	if err := rc.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history = append(l.history, rc)
	return nil
}

func (l *RateLog) Current(ctx context.Context) (domainpricing.RateConfig, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.history) == 0 {
		return domainpricing.RateConfig{}, domainpricing.ErrNoRateConfigured
	}
	current := l.history[0]
	for _, rc := range l.history[1:] {
		if rc.CreatedAt.After(current.CreatedAt) {
			current = rc
		}
	}
	return current, nil
}

// History returns the full append-only log, oldest first.
func (l *RateLog) History(ctx context.Context) ([]domainpricing.RateConfig, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domainpricing.RateConfig, len(l.history))
	copy(out, l.history)
	return out, nil
}

var _ domainpricing.RateLog = (*RateLog)(nil)
