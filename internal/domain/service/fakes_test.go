package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/fasevent/registrations/internal/domain/entity"
	"gorm.io/gorm"
)

type fakeRegistrationStorage struct {
	mu          sync.Mutex
	records     map[string]*entity.Registration
	collisions  int
	createErr   error
	setQRErr    error
	setQRCalls  int
	markCalls   int
	updateCalls int
}

func newFakeRegistrationStorage() *fakeRegistrationStorage {
	return &fakeRegistrationStorage{records: make(map[string]*entity.Registration)}
}

func (f *fakeRegistrationStorage) Create(_ context.Context, r *entity.Registration) (*entity.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.collisions > 0 {
		f.collisions--
		return nil, gorm.ErrDuplicatedKey
	}
	if _, ok := f.records[r.RegistrationID]; ok {
		return nil, gorm.ErrDuplicatedKey
	}
	cp := *r
	f.records[r.RegistrationID] = &cp
	return r, nil
}

func (f *fakeRegistrationStorage) Get(_ context.Context, id string) (*entity.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRegistrationStorage) GetAll(_ context.Context) ([]entity.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []entity.Registration
	for _, r := range f.records {
		all = append(all, *r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].RegistrationDate.After(all[j].RegistrationDate) })
	return all, nil
}

func (f *fakeRegistrationStorage) UpdatePaymentStatus(_ context.Context, id string, status entity.PaymentStatus, qr *string) (*entity.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	r, ok := f.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	r.PaymentStatus = status
	if qr != nil {
		image := *qr
		r.QRCodeImage = &image
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRegistrationStorage) SetQRCodeImage(_ context.Context, id string, qr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setQRCalls++
	if f.setQRErr != nil {
		return f.setQRErr
	}
	r, ok := f.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.QRCodeImage = &qr
	return nil
}

func (f *fakeRegistrationStorage) MarkEntryVerified(_ context.Context, id string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls++
	r, ok := f.records[id]
	if !ok || r.EntryVerified || r.PaymentStatus != entity.PaymentVerified {
		return false, nil
	}
	r.EntryVerified = true
	r.EntryTimestamp = &at
	return true, nil
}

func (f *fakeRegistrationStorage) CountByStatus(_ context.Context) (map[entity.PaymentStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[entity.PaymentStatus]int64)
	for _, r := range f.records {
		counts[r.PaymentStatus]++
	}
	return counts, nil
}

func (f *fakeRegistrationStorage) put(r entity.Registration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[r.RegistrationID] = &r
}

type fakeCosts struct {
	mu   sync.Mutex
	cost entity.CategoryCost
	err  error
}

func (f *fakeCosts) Get(context.Context) (*entity.CategoryCost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	cp := f.cost
	return &cp, nil
}

func (f *fakeCosts) set(cost entity.CategoryCost) {
	f.mu.Lock()
	f.cost = cost
	f.mu.Unlock()
}

type fakeTickets struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeTickets) Issue(id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "data:image/png;base64," + id, nil
}

func (f *fakeTickets) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeNotifier struct {
	mu              sync.Mutex
	confirmations   []string
	adminAlerts     []string
	statusEmails    []entity.PaymentStatus
	confirmationErr error
	adminErr        error
	statusErr       error
}

func (f *fakeNotifier) RegistrationConfirmation(_ context.Context, r *entity.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations = append(f.confirmations, r.RegistrationID)
	return f.confirmationErr
}

func (f *fakeNotifier) AdminNewRegistration(_ context.Context, r *entity.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adminAlerts = append(f.adminAlerts, r.RegistrationID)
	return f.adminErr
}

func (f *fakeNotifier) PaymentStatus(_ context.Context, r *entity.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusEmails = append(f.statusEmails, r.PaymentStatus)
	return f.statusErr
}

type fakeVerifiedEmails struct {
	mu       sync.Mutex
	verified map[string]bool
	err      error
}

func (f *fakeVerifiedEmails) MarkVerified(_ context.Context, email string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.verified == nil {
		f.verified = make(map[string]bool)
	}
	f.verified[email] = true
	return f.err
}

func (f *fakeVerifiedEmails) IsVerified(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verified[email], f.err
}

var errUpstream = errors.New("upstream unavailable")
