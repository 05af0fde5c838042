package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/maelig/balade-reservation/internal/model"
)

// MemoryStore is an in-memory Store used by the test suite and for
// running the server without a database.  A single mutex serializes
// transactions, which trivially gives the per-balade atomicity the
// contract demands; writes are applied to a scratch copy and swapped
// in on commit, so a failed transaction leaves nothing behind.
type MemoryStore struct {
	mu           sync.Mutex
	balades      map[uint64]model.Balade
	reservations map[uint64]model.Reservation
	nextBalade   uint64
	nextRes      uint64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		balades:      make(map[uint64]model.Balade),
		reservations: make(map[uint64]model.Reservation),
		nextBalade:   1,
		nextRes:      1,
	}
}

// AddBalade seeds a balade and returns its assigned ID.  When
// PlacesDisponibles is left at zero value alongside PlacesInitiales it
// is not defaulted; callers set both explicitly so tests can seed
// drifted rows.
func (s *MemoryStore) AddBalade(b model.Balade) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.nextBalade
	}
	if b.ID >= s.nextBalade {
		s.nextBalade = b.ID + 1
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	s.balades[b.ID] = b
	return b.ID
}

// CorruptSeats overwrites the stored availability without any checks.
// Test hook for simulating drifted rows.
func (s *MemoryStore) CorruptSeats(baladeID uint64, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.balades[baladeID]; ok {
		b.PlacesDisponibles = value
		s.balades[baladeID] = b
	}
}

func (s *MemoryStore) GetBalade(_ context.Context, id uint64) (*model.Balade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balades[id]
	if !ok {
		return nil, ErrBaladeNotFound
	}
	return &b, nil
}

func (s *MemoryStore) ListBalades(_ context.Context) ([]model.Balade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Balade, 0, len(s.balades))
	for _, b := range s.balades {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) BaladeIDs(_ context.Context) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint64, 0, len(s.balades))
	for id := range s.balades {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStore) GetReservation(_ context.Context, id uint64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	return &r, nil
}

func (s *MemoryStore) ListReservations(_ context.Context, f ReservationFilter) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		if f.BaladeID != 0 && r.BaladeID != f.BaladeID {
			continue
		}
		if f.Statut != "" && r.Statut != f.Statut {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) SetPresence(_ context.Context, id uint64, present bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return ErrReservationNotFound
	}
	p := present
	r.Present = &p
	r.UpdatedAt = time.Now().UTC()
	s.reservations[id] = r
	return nil
}

// InTx runs fn against a scratch copy of the data under the store
// mutex and swaps the copy in only when fn succeeds.
func (s *MemoryStore) InTx(_ context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memoryTx{
		balades:      make(map[uint64]model.Balade, len(s.balades)),
		reservations: make(map[uint64]model.Reservation, len(s.reservations)),
		nextRes:      s.nextRes,
	}
	for id, b := range s.balades {
		tx.balades[id] = b
	}
	for id, r := range s.reservations {
		tx.reservations[id] = r
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.balades = tx.balades
	s.reservations = tx.reservations
	s.nextRes = tx.nextRes
	return nil
}

type memoryTx struct {
	balades      map[uint64]model.Balade
	reservations map[uint64]model.Reservation
	nextRes      uint64
}

func (t *memoryTx) TakeSeats(_ context.Context, baladeID uint64, count int) error {
	b, ok := t.balades[baladeID]
	if !ok {
		return ErrBaladeNotFound
	}
	if b.PlacesDisponibles < count {
		return ErrInsufficientSeats
	}
	b.PlacesDisponibles -= count
	b.UpdatedAt = time.Now().UTC()
	t.balades[baladeID] = b
	return nil
}

func (t *memoryTx) CreditSeats(_ context.Context, baladeID uint64, count int) error {
	b, ok := t.balades[baladeID]
	if !ok {
		return ErrBaladeNotFound
	}
	b.PlacesDisponibles += count
	if b.PlacesDisponibles > b.PlacesInitiales {
		b.PlacesDisponibles = b.PlacesInitiales
	}
	b.UpdatedAt = time.Now().UTC()
	t.balades[baladeID] = b
	return nil
}

func (t *memoryTx) BaladeForUpdate(_ context.Context, baladeID uint64) (*model.Balade, error) {
	b, ok := t.balades[baladeID]
	if !ok {
		return nil, ErrBaladeNotFound
	}
	return &b, nil
}

func (t *memoryTx) ActiveSeats(_ context.Context, baladeID uint64) (int, error) {
	total := 0
	for _, r := range t.reservations {
		if r.BaladeID == baladeID && r.Statut != model.StatutAnnulee {
			total += r.NombrePersonnes
		}
	}
	return total, nil
}

func (t *memoryTx) SetSeats(_ context.Context, baladeID uint64, value int) error {
	b, ok := t.balades[baladeID]
	if !ok {
		return ErrBaladeNotFound
	}
	b.PlacesDisponibles = value
	b.UpdatedAt = time.Now().UTC()
	t.balades[baladeID] = b
	return nil
}

func (t *memoryTx) CreateReservation(_ context.Context, res *model.Reservation) error {
	res.ID = t.nextRes
	t.nextRes++
	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now
	t.reservations[res.ID] = *res
	return nil
}

func (t *memoryTx) ReservationForUpdate(_ context.Context, id uint64) (*model.Reservation, error) {
	r, ok := t.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	return &r, nil
}

func (t *memoryTx) SetReservationStatus(_ context.Context, id uint64, statut string) error {
	r, ok := t.reservations[id]
	if !ok {
		return ErrReservationNotFound
	}
	r.Statut = statut
	r.UpdatedAt = time.Now().UTC()
	t.reservations[id] = r
	return nil
}
