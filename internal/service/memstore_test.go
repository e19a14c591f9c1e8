package service_test

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"reschedule-service/internal/models"
	"reschedule-service/pkg/response"

	"github.com/google/uuid"
)

// memStore is an in-memory Store. Each method is atomic under mu, which is
// enough to model the unique index and conditional updates of the real
// storage. InTx serializes transactions and restores bookings and requests
// when fn fails.
type memStore struct {
	txMu sync.Mutex
	// beforeTx, when set, runs at the start of every transaction.
	beforeTx func()

	mu       sync.Mutex
	rules    map[string][]models.AvailabilityRule
	bookings map[string]models.Booking
	requests map[string]models.RescheduleRequest
	timeOff  map[string]models.TimeOff
}

func newMemStore() *memStore {
	return &memStore{
		rules:    make(map[string][]models.AvailabilityRule),
		bookings: make(map[string]models.Booking),
		requests: make(map[string]models.RescheduleRequest),
		timeOff:  make(map[string]models.TimeOff),
	}
}

func (m *memStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	if m.beforeTx != nil {
		m.beforeTx()
	}

	m.mu.Lock()
	bookings := maps.Clone(m.bookings)
	requests := maps.Clone(m.requests)
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.bookings = bookings
		m.requests = requests
		m.mu.Unlock()
		return err
	}

	return nil
}

func (m *memStore) GetAvailabilityRules(_ context.Context, tutorID string) ([]models.AvailabilityRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.rules[tutorID]), nil
}

func (m *memStore) ReplaceAvailabilityRules(_ context.Context, tutorID string, rules []models.AvailabilityRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[tutorID] = slices.Clone(rules)
	return nil
}

func (m *memStore) CreateTimeOff(_ context.Context, off *models.TimeOff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeOff[off.ID] = *off
	return nil
}

func (m *memStore) GetTimeOff(_ context.Context, id string) (*models.TimeOff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	off, ok := m.timeOff[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	return &off, nil
}

func (m *memStore) ListTimeOff(_ context.Context, tutorID string, from, to time.Time) ([]models.TimeOff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TimeOff
	for _, off := range m.timeOff {
		if off.TutorID == tutorID && off.Start.Before(to) && off.End.After(from) {
			out = append(out, off)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (m *memStore) DeleteTimeOff(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.timeOff[id]; !ok {
		return response.ErrNotFound
	}
	delete(m.timeOff, id)
	return nil
}

func (m *memStore) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	return &b, nil
}

func (m *memStore) ListBookings(_ context.Context, tutorID string, from, to time.Time) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.TutorID != tutorID || !b.Status.Active() {
			continue
		}
		if b.ScheduledAt.Before(to) && b.End().After(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) LockActiveBooking(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	return ok && b.Status.Active(), nil
}

func (m *memStore) UpdateBookingScheduledAt(_ context.Context, id string, scheduledAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || !b.Status.Active() {
		return false, nil
	}
	b.ScheduledAt = scheduledAt
	m.bookings[id] = b
	return true, nil
}

func (m *memStore) UpdateBookingStatus(_ context.Context, id string, expected []models.BookingStatus, next models.BookingStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || !slices.Contains(expected, b.Status) {
		return false, nil
	}
	b.Status = next
	m.bookings[id] = b
	return true, nil
}

func (m *memStore) InsertRescheduleRequest(_ context.Context, req *models.RescheduleRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.BookingID == req.BookingID && r.Status == models.RequestPending {
			return response.ErrConflict
		}
	}
	m.requests[req.ID] = *req
	return nil
}

func (m *memStore) GetRescheduleRequest(_ context.Context, id string) (*models.RescheduleRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) ListRescheduleRequests(_ context.Context, bookingID string) ([]models.RescheduleRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RescheduleRequest
	for _, r := range m.requests {
		if r.BookingID == bookingID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) UpdateRescheduleRequestStatus(_ context.Context, id string, expected, next models.RequestStatus, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok || r.Status != expected {
		return false, nil
	}
	r.Status = next
	r.UpdatedAt = at
	m.requests[id] = r
	return true, nil
}

func (m *memStore) CancelPendingRequests(_ context.Context, bookingID string, at time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, r := range m.requests {
		if r.BookingID == bookingID && r.Status == models.RequestPending {
			r.Status = models.RequestCancelled
			r.UpdatedAt = at
			m.requests[id] = r
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memStore) ListStalePendingRequests(_ context.Context, now time.Time) ([]models.RescheduleRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RescheduleRequest
	for _, r := range m.requests {
		if r.Status == models.RequestPending && !r.ProposedTime.After(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

type memLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func newMemLocker() *memLocker {
	return &memLocker{held: make(map[string]string)}
}

func (l *memLocker) Lock(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[key] = token
	return token, true, nil
}

func (l *memLocker) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.keys)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
