// Package memory is an in-process implementation of every ledger repository.
// It backs the service tests and lets the server run without PostgreSQL.
package memory

import (
	"context"
	"sync"

	"github.com/SscSPs/prima_nota/internal/core/domain"
	portsrepo "github.com/SscSPs/prima_nota/internal/core/ports/repositories"
)

type state struct {
	accounts    map[string]domain.Account
	categories  map[string]domain.Category
	movements   map[string]domain.Movement
	links       map[string][]domain.DocumentLink // by movement id
	allocations map[string]domain.BatchAllocation
	invoices    map[string]domain.Invoice
	payments    map[string]domain.Payment
	contracts   map[string]domain.Contract
	batches     map[string]domain.Batch
	preferences map[string]domain.Preferences
}

func newState() *state {
	return &state{
		accounts:    make(map[string]domain.Account),
		categories:  make(map[string]domain.Category),
		movements:   make(map[string]domain.Movement),
		links:       make(map[string][]domain.DocumentLink),
		allocations: make(map[string]domain.BatchAllocation),
		invoices:    make(map[string]domain.Invoice),
		payments:    make(map[string]domain.Payment),
		contracts:   make(map[string]domain.Contract),
		batches:     make(map[string]domain.Batch),
		preferences: make(map[string]domain.Preferences),
	}
}

// clone copies every table. Records are stored by value and never mutated in
// place, so copying the maps is enough.
func (st *state) clone() *state {
	c := newState()
	for k, v := range st.accounts {
		c.accounts[k] = v
	}
	for k, v := range st.categories {
		c.categories[k] = v
	}
	for k, v := range st.movements {
		c.movements[k] = v
	}
	for k, v := range st.links {
		c.links[k] = append([]domain.DocumentLink(nil), v...)
	}
	for k, v := range st.allocations {
		c.allocations[k] = v
	}
	for k, v := range st.invoices {
		c.invoices[k] = v
	}
	for k, v := range st.payments {
		c.payments[k] = v
	}
	for k, v := range st.contracts {
		c.contracts[k] = v
	}
	for k, v := range st.batches {
		c.batches[k] = v
	}
	for k, v := range st.preferences {
		c.preferences[k] = v
	}
	return c
}

// Store implements every repository port over maps guarded by a mutex.
//
// WithinTx holds the write lock for the whole unit of work and restores a
// snapshot when it fails; repository calls made with the transaction context
// do not lock again.
type Store struct {
	mu sync.RWMutex
	st *state
}

// New creates an empty store.
func New() *Store {
	return &Store{st: newState()}
}

type txKey struct{}

type txMarker struct {
	store *Store
}

func (s *Store) inTx(ctx context.Context) bool {
	m, ok := ctx.Value(txKey{}).(*txMarker)
	return ok && m.store == s
}

// read runs fn under the read lock unless ctx already holds the write lock.
func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if !s.inTx(ctx) {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.st)
}

// write runs fn under the write lock unless ctx already holds it.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if !s.inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.st)
}

// WithinTx implements portsrepo.TransactionManager.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if !s.inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
		ctx = context.WithValue(ctx, txKey{}, &txMarker{store: s})
	}

	snapshot := s.st.clone()
	defer func() {
		if p := recover(); p != nil {
			s.st = snapshot
			panic(p)
		}
		if err != nil {
			s.st = snapshot
		}
	}()
	return fn(ctx)
}

// NewRepositoryProvider wires a fresh store behind every repository port.
func NewRepositoryProvider() (portsrepo.RepositoryProvider, *Store) {
	s := New()
	return portsrepo.RepositoryProvider{
		TxManager:       s,
		AccountRepo:     s,
		CategoryRepo:    s,
		MovementRepo:    s,
		LinkRepo:        s,
		AllocationRepo:  s,
		DocumentRepo:    s,
		PreferencesRepo: s,
	}, s
}

var (
	_ portsrepo.TransactionManager       = (*Store)(nil)
	_ portsrepo.AccountRepositoryFacade  = (*Store)(nil)
	_ portsrepo.CategoryRepositoryFacade = (*Store)(nil)
	_ portsrepo.MovementRepositoryFacade = (*Store)(nil)
	_ portsrepo.DocumentLinkRepository   = (*Store)(nil)
	_ portsrepo.AllocationRepository     = (*Store)(nil)
	_ portsrepo.DocumentRepository       = (*Store)(nil)
	_ portsrepo.PreferencesRepository    = (*Store)(nil)
)
