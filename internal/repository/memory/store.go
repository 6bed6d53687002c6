// Package memory is an in-process implementation of repository.Store.
//
// Transactions are serialized behind one mutex and work on a copy of the
// data that replaces the live copy only when fn returns nil, which gives the
// same all-or-nothing behaviour as the Postgres store. It backs the test
// suites and STORAGE=memory local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

type state struct {
	accounts     map[uuid.UUID]model.Account
	classes      map[uuid.UUID]model.ClassOffering
	schedules    map[uuid.UUID]model.Schedule
	bookings     map[uuid.UUID]model.Booking
	staff        map[uuid.UUID]model.Staff
	applications map[uuid.UUID]model.StaffApplication
}

func newState() *state {
	return &state{
		accounts:     make(map[uuid.UUID]model.Account),
		classes:      make(map[uuid.UUID]model.ClassOffering),
		schedules:    make(map[uuid.UUID]model.Schedule),
		bookings:     make(map[uuid.UUID]model.Booking),
		staff:        make(map[uuid.UUID]model.Staff),
		applications: make(map[uuid.UUID]model.StaffApplication),
	}
}

// clone copies the maps. Values are stored by value and slice fields are
// never mutated in place, so a shallow copy is enough.
func (s *state) clone() *state {
	return &state{
		accounts:     cloneMap(s.accounts),
		classes:      cloneMap(s.classes),
		schedules:    cloneMap(s.schedules),
		bookings:     cloneMap(s.bookings),
		staff:        cloneMap(s.staff),
		applications: cloneMap(s.applications),
	}
}

func cloneMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{state: newState(), now: time.Now}
}

func (s *Store) Tx(ctx context.Context, fn func(r repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&repos{st: work, now: s.now}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) Read(ctx context.Context, fn func(r repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(&repos{st: s.state, now: s.now})
}

type repos struct {
	st  *state
	now func() time.Time
}

func (r *repos) Accounts() repository.AccountRepository         { return &accountRepo{r} }
func (r *repos) Classes() repository.ClassRepository            { return &classRepo{r} }
func (r *repos) Schedules() repository.ScheduleRepository       { return &scheduleRepo{r} }
func (r *repos) Bookings() repository.BookingRepository         { return &bookingRepo{r} }
func (r *repos) Staff() repository.StaffRepository              { return &staffRepo{r} }
func (r *repos) Applications() repository.ApplicationRepository { return &applicationRepo{r} }

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}

func sortByCreated[T any](items []*T, created func(*T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return created(items[i]).After(created(items[j]))
	})
}
