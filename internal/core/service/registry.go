package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/agency-portal/internal/core/domain"
	"github.com/99minutos/agency-portal/internal/core/ports"
	"github.com/99minutos/agency-portal/internal/core/validation"
)

const (
	defaultIdleTTL    = 30 * time.Minute
	defaultSweepEvery = time.Minute
)

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// IdleTTL is how long an unused store is kept in memory.
	IdleTTL time.Duration
	// SweepEvery is the janitor interval.
	SweepEvery time.Duration
	// Publish receives every state transition of every store.
	Publish func(domain.SessionChange)
	// Observe is called with the number of live stores after it changes.
	Observe func(active int)
}

// Registry owns one SessionStore per portal session id.
type Registry struct {
	newAPI   ports.AuthAPIFactory
	validate *validation.Validator
	opts     RegistryOptions
	log      zerolog.Logger

	mu     sync.Mutex
	stores map[string]*SessionStore
}

// NewRegistry returns an empty registry. newAPI builds the auth client of
// each new store.
func NewRegistry(newAPI ports.AuthAPIFactory, v *validation.Validator, opts RegistryOptions, log zerolog.Logger) *Registry {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = defaultIdleTTL
	}
	if opts.SweepEvery <= 0 {
		opts.SweepEvery = defaultSweepEvery
	}
	if v == nil {
		v = validation.New()
	}
	return &Registry{
		newAPI:   newAPI,
		validate: v,
		opts:     opts,
		log:      log,
		stores:   make(map[string]*SessionStore),
	}
}

// Store returns the store for sessionID, creating it on first use.
func (r *Registry) Store(sessionID string) ports.SessionStore {
	return r.store(sessionID)
}

func (r *Registry) store(sessionID string) *SessionStore {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[sessionID]; ok {
		s.touch()
		return s
	}

	s := NewSessionStore(sessionID, r.newAPI(sessionID), r.validate, r.log)
	if r.opts.Publish != nil {
		s.Subscribe(r.opts.Publish)
	}
	r.stores[sessionID] = s
	r.observeLocked()
	return s
}

// Len returns the number of live stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Start runs the idle-store janitor until ctx is cancelled.
func (r *Registry) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.opts.SweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := r.Sweep(now); n > 0 {
					r.log.Debug().Int("evicted", n).Msg("idle sessions evicted")
				}
			}
		}
	}()
}

// Sweep evicts every store idle for longer than IdleTTL at now.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, s := range r.stores {
		if now.Sub(s.IdleSince()) > r.opts.IdleTTL {
			delete(r.stores, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.observeLocked()
	}
	return evicted
}

func (r *Registry) observeLocked() {
	if r.opts.Observe != nil {
		r.opts.Observe(len(r.stores))
	}
}
