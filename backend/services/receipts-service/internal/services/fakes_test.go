package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	internal_utils "github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/utils"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
)

// In-memory stand-ins for the pgx repositories. They reproduce the
// conditional-update semantics the services rely on.

type fakeLeaseRepo struct {
	mu     sync.Mutex
	leases map[uuid.UUID]models.Lease
}

func newFakeLeaseRepo() *fakeLeaseRepo {
	return &fakeLeaseRepo{leases: map[uuid.UUID]models.Lease{}}
}

func (r *fakeLeaseRepo) Create(_ context.Context, l *models.Lease) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leases[l.ID] = *l
	return nil
}

func (r *fakeLeaseRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leases[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *fakeLeaseRepo) ListByUserID(_ context.Context, userID uuid.UUID) ([]*models.Lease, error) {
	return r.filter(func(l models.Lease) bool { return l.UserID == userID }), nil
}

func (r *fakeLeaseRepo) ListAutomationEnabled(context.Context) ([]*models.Lease, error) {
	return r.filter(func(l models.Lease) bool {
		return l.Status == models.LeaseStatusActive && (l.AutoReminderEnabled || l.AutoSendEnabled)
	}), nil
}

func (r *fakeLeaseRepo) MarkAutoSentPeriod(_ context.Context, id uuid.UUID, periodKey string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leases[id]
	if !ok || l.AlreadySent(periodKey) {
		return false, nil
	}
	l.LastAutoSentPeriod = &periodKey
	r.leases[id] = l
	return true, nil
}

func (r *fakeLeaseRepo) UpdateIfVersion(_ context.Context, l *models.Lease, expected int64) (pgconn.CommandTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.leases[l.ID]
	if !ok || cur.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	next := *l
	next.RowVersion = expected + 1
	r.leases[l.ID] = next
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakeLeaseRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Lease) error) error {
	l, err := r.GetByID(ctx, id)
	if err != nil || l == nil {
		return errors.New("lease not found")
	}
	if err := mutate(l); err != nil {
		return err
	}
	_, err = r.UpdateIfVersion(ctx, l, l.RowVersion)
	return err
}

func (r *fakeLeaseRepo) watermark(id uuid.UUID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return utils.Val(r.leases[id].LastAutoSentPeriod)
}

func (r *fakeLeaseRepo) filter(keep func(models.Lease) bool) []*models.Lease {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Lease
	for _, l := range r.leases {
		if keep(l) {
			cp := l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

type fakeReceiptRepo struct {
	mu       sync.Mutex
	receipts map[uuid.UUID]models.RentReceipt
	upserts  int
}

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{receipts: map[uuid.UUID]models.RentReceipt{}}
}

func (r *fakeReceiptRepo) Upsert(_ context.Context, rec *models.RentReceipt) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	for id, cur := range r.receipts {
		if cur.LeaseID == rec.LeaseID && cur.PeriodStart.Equal(rec.PeriodStart) && cur.PeriodEnd.Equal(rec.PeriodEnd) {
			cur.RentCents, cur.ChargesCents, cur.TotalCents = rec.RentCents, rec.ChargesCents, rec.TotalCents
			cur.IssueDate, cur.ContentText = rec.IssueDate, rec.ContentText
			if cur.Status == models.ReceiptStatusError {
				cur.Status = models.ReceiptStatusGenerated
			}
			r.receipts[id] = cur
			*rec = cur
			return false, nil
		}
	}
	r.receipts[rec.ID] = *rec
	return true, nil
}

func (r *fakeReceiptRepo) GetByID(_ context.Context, id uuid.UUID) (*models.RentReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.receipts[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *fakeReceiptRepo) GetByLeaseAndPeriod(_ context.Context, leaseID uuid.UUID, p models.Period) (*models.RentReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.receipts {
		if rec.LeaseID == leaseID && rec.PeriodStart.Equal(p.Start) && rec.PeriodEnd.Equal(p.End) {
			return &rec, nil
		}
	}
	return nil, nil
}

func (r *fakeReceiptRepo) ListByLease(_ context.Context, leaseID uuid.UUID) ([]*models.RentReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.RentReceipt
	for _, rec := range r.receipts {
		if rec.LeaseID == leaseID {
			cp := rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeReceiptRepo) UpdatePDFURL(_ context.Context, id uuid.UUID, locator string) error {
	return r.update(id, func(rec *models.RentReceipt) { rec.PDFURL = &locator })
}

func (r *fakeReceiptRepo) MarkSent(_ context.Context, id uuid.UUID, sentTo string, sentAt time.Time) error {
	return r.update(id, func(rec *models.RentReceipt) {
		rec.Status, rec.SentTo, rec.SentAt, rec.SendError = models.ReceiptStatusSent, &sentTo, &sentAt, nil
	})
}

func (r *fakeReceiptRepo) MarkArchived(_ context.Context, id uuid.UUID) error {
	return r.update(id, func(rec *models.RentReceipt) { rec.Status = models.ReceiptStatusArchived })
}

func (r *fakeReceiptRepo) MarkSendError(_ context.Context, id uuid.UUID, sentTo, sendErr string) error {
	return r.update(id, func(rec *models.RentReceipt) {
		rec.Status, rec.SendError = models.ReceiptStatusError, &sendErr
		if sentTo != "" {
			rec.SentTo = &sentTo
		}
	})
}

func (r *fakeReceiptRepo) update(id uuid.UUID, fn func(*models.RentReceipt)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.receipts[id]
	if !ok {
		return errors.New("no rows")
	}
	fn(&rec)
	r.receipts[id] = rec
	return nil
}

func (r *fakeReceiptRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.receipts)
}

type fakeActionRepo struct {
	mu      sync.Mutex
	actions map[uuid.UUID]models.ReceiptAction
}

func newFakeActionRepo() *fakeActionRepo {
	return &fakeActionRepo{actions: map[uuid.UUID]models.ReceiptAction{}}
}

func (r *fakeActionRepo) Create(_ context.Context, a *models.ReceiptAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[a.ID] = *a
	return nil
}

func (r *fakeActionRepo) GetByID(_ context.Context, id uuid.UUID) (*models.ReceiptAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actions[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *fakeActionRepo) GetByTokenHash(_ context.Context, hash string) (*models.ReceiptAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.actions {
		if a.TokenHash == hash {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *fakeActionRepo) TransitionIf(
	_ context.Context,
	id uuid.UUID,
	from, to models.ActionStatusType,
	upd models.ActionUpdate,
) (pgconn.CommandTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actions[id]
	if !ok || a.Status != from {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	now := time.Now()
	a.Status = to
	applyUpdate(&a, upd)
	if to == models.ActionStatusProcessing {
		a.ProcessingAt = &now
	}
	if to == models.ActionStatusConsumed || to == models.ActionStatusError {
		a.ConsumedAt = &now
	}
	r.actions[id] = a
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakeActionRepo) ListStuckProcessing(_ context.Context, olderThan time.Time) ([]*models.ReceiptAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ReceiptAction
	for _, a := range r.actions {
		if a.Status == models.ActionStatusProcessing && a.ProcessingAt != nil && a.ProcessingAt.Before(olderThan) {
			cp := a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeActionRepo) ListByLease(_ context.Context, leaseID uuid.UUID) ([]*models.ReceiptAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ReceiptAction
	for _, a := range r.actions {
		if a.LeaseID == leaseID {
			cp := a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeActionRepo) put(a models.ReceiptAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[a.ID] = a
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]models.RentPayment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[string]models.RentPayment{}}
}

func paymentKey(leaseID uuid.UUID, p models.Period) string {
	return leaseID.String() + "|" + p.String()
}

func (r *fakePaymentRepo) Upsert(_ context.Context, p *models.RentPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[paymentKey(p.LeaseID, models.Period{Start: p.PeriodStart, End: p.PeriodEnd})] = *p
	return nil
}

func (r *fakePaymentRepo) GetByLeaseAndPeriod(_ context.Context, leaseID uuid.UUID, p models.Period) (*models.RentPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pay, ok := r.payments[paymentKey(leaseID, p)]
	if !ok {
		return nil, nil
	}
	return &pay, nil
}

type fakeLandlordRepo struct{ byID map[uuid.UUID]*models.Landlord }

func (r *fakeLandlordRepo) Create(_ context.Context, l *models.Landlord) error {
	r.byID[l.ID] = l
	return nil
}

func (r *fakeLandlordRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Landlord, error) {
	return r.byID[id], nil
}

type fakeTenantRepo struct{ byID map[uuid.UUID]*models.Tenant }

func (r *fakeTenantRepo) Create(_ context.Context, t *models.Tenant) error {
	r.byID[t.ID] = t
	return nil
}

func (r *fakeTenantRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	return r.byID[id], nil
}

type fakePropertyRepo struct{ byID map[uuid.UUID]*models.Property }

func (r *fakePropertyRepo) Create(_ context.Context, p *models.Property) error {
	r.byID[p.ID] = p
	return nil
}

func (r *fakePropertyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	return r.byID[id], nil
}

func (r *fakePropertyRepo) ListByUserID(_ context.Context, userID uuid.UUID) ([]*models.Property, error) {
	var out []*models.Property
	for _, p := range r.byID {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeMailer records every message. failFor makes sends to that address fail.
type fakeMailer struct {
	mu       sync.Mutex
	disabled bool
	failFor  map[string]error
	sent     []EmailMessage
}

func (m *fakeMailer) Send(_ context.Context, msg EmailMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disabled {
		return "", ErrEmailDisabled
	}
	if err := m.failFor[msg.ToEmail]; err != nil {
		return "", err
	}
	m.sent = append(m.sent, msg)
	return "msg-" + uuid.NewString(), nil
}

func (m *fakeMailer) messages() []EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EmailMessage(nil), m.sent...)
}

type fakeStore struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{bucket: "receipts", objects: map[string][]byte{}}
}

func (s *fakeStore) Put(_ context.Context, key string, body []byte, _ string) (internal_utils.StorageLocator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc := internal_utils.StorageLocator{Container: s.bucket, Key: key}
	if s.putErr != nil {
		return loc, s.putErr
	}
	s.objects[loc.String()] = append([]byte(nil), body...)
	return loc, nil
}

func (s *fakeStore) Get(_ context.Context, loc internal_utils.StorageLocator) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[loc.String()]
	if !ok {
		return nil, internal_utils.ErrStorageFailure
	}
	return b, nil
}

func (s *fakeStore) SignedURL(_ context.Context, loc internal_utils.StorageLocator, ttl time.Duration) (string, error) {
	return "https://" + loc.Container + ".oss.test/" + loc.Key + "?Expires=" + ttl.String(), nil
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSMS) SendSMS(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to+": "+body)
	return nil
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *fakeLocker) Acquire(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

// tokenFromLink extracts the raw token from a confirmation URL in text.
func tokenFromLink(text string) string {
	i := strings.Index(text, "token=")
	if i < 0 {
		return ""
	}
	rest := text[i+len("token="):]
	if j := strings.IndexAny(rest, "&\n \""); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
