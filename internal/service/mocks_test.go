package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tripdesk/crm-backend/internal/domain"
	"github.com/tripdesk/crm-backend/internal/platform/push"
	"github.com/tripdesk/crm-backend/internal/repository"
)

// ---------- Identity repo mock ----------

type mockIdentityRepo struct {
	mu      sync.Mutex
	nextID  int64
	byUser  map[string]*domain.Identity
	failAll bool
}

func newMockIdentityRepo() *mockIdentityRepo {
	return &mockIdentityRepo{nextID: 1, byUser: make(map[string]*domain.Identity)}
}

var errPartitionDown = fmt.Errorf("partition unavailable")

func (m *mockIdentityRepo) Create(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *identity
	cp.ID = m.nextID
	m.nextID++
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.byUser[cp.UserID] = &cp
	out := cp
	return &out, nil
}

func (m *mockIdentityRepo) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byUser {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockIdentityRepo) FindByUserID(_ context.Context, userID string) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byUser[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *mockIdentityRepo) UpdateProfile(_ context.Context, userID string, req *domain.UpdateProfileRequest, logoURL *string) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byUser[userID]
	if !ok {
		return nil, nil
	}
	if logoURL != nil {
		u.Logo = *logoURL
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Mobile != nil {
		u.Mobile = *req.Mobile
	}
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (m *mockIdentityRepo) SetResetToken(_ context.Context, userID, tokenHash string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byUser[userID]
	if !ok {
		return fmt.Errorf("no rows")
	}
	u.ResetTokenHash = tokenHash
	u.ResetTokenExpires = &expires
	return nil
}

func (m *mockIdentityRepo) FindByResetToken(_ context.Context, tokenHash string) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byUser {
		if u.ResetTokenHash == tokenHash && u.ResetTokenHash != "" &&
			u.ResetTokenExpires != nil && u.ResetTokenExpires.After(time.Now()) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockIdentityRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byUser[userID]
	if !ok {
		return fmt.Errorf("no rows")
	}
	u.PasswordHash = passwordHash
	u.ResetTokenHash = ""
	u.ResetTokenExpires = nil
	return nil
}

func (m *mockIdentityRepo) UpdateStatus(_ context.Context, userID, status string) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byUser[userID]
	if !ok {
		return nil, nil
	}
	u.Status = status
	cp := *u
	return &cp, nil
}

func (m *mockIdentityRepo) IncrementLoginCount(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byUser[userID]; ok {
		u.LoginCount++
	}
	return nil
}

func (m *mockIdentityRepo) Touch(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byUser[userID]; !ok {
		return fmt.Errorf("no rows")
	}
	return nil
}

func (m *mockIdentityRepo) List(_ context.Context) ([]domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errPartitionDown
	}
	var out []domain.Identity
	for _, u := range m.byUser {
		out = append(out, *u)
	}
	return out, nil
}

// ---------- Quotation repo mock ----------

type mockQuotationRepo struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*domain.Quotation
	failAll bool
}

func newMockQuotationRepo() *mockQuotationRepo {
	return &mockQuotationRepo{nextID: 1, byID: make(map[int64]*domain.Quotation)}
}

func (m *mockQuotationRepo) Create(_ context.Context, q *domain.Quotation) (*domain.Quotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *q
	cp.ID = m.nextID
	m.nextID++
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockQuotationRepo) Update(_ context.Context, q *domain.Quotation, ownerID string) (*domain.Quotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[q.ID]
	if !ok || (ownerID != "" && stored.OwnerID != ownerID) {
		return nil, nil
	}
	cp := *q
	cp.OwnerID = stored.OwnerID
	cp.ViewCount = stored.ViewCount
	cp.DownloadCount = stored.DownloadCount
	cp.CreatedAt = stored.CreatedAt
	cp.UpdatedAt = time.Now()
	m.byID[q.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockQuotationRepo) FindByID(_ context.Context, id int64) (*domain.Quotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q, ok := m.byID[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, nil
}

func (m *mockQuotationRepo) FindByOwner(_ context.Context, ownerID string) ([]domain.Quotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Quotation
	for _, q := range m.byID {
		if q.OwnerID == ownerID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (m *mockQuotationRepo) List(_ context.Context) ([]domain.Quotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errPartitionDown
	}
	var out []domain.Quotation
	for _, q := range m.byID {
		out = append(out, *q)
	}
	return out, nil
}

func (m *mockQuotationRepo) Delete(_ context.Context, id int64, ownerID string) (*domain.Quotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.byID[id]
	if !ok || (ownerID != "" && q.OwnerID != ownerID) {
		return nil, nil
	}
	delete(m.byID, id)
	cp := *q
	return &cp, nil
}

func (m *mockQuotationRepo) CountByOwner(_ context.Context, ownerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, q := range m.byID {
		if q.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (m *mockQuotationRepo) IncrementCounter(_ context.Context, id int64, action string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.byID[id]
	if !ok {
		return "", false, nil
	}
	switch action {
	case domain.TrackActionView:
		q.ViewCount++
	case domain.TrackActionDownload:
		q.DownloadCount++
	}
	return q.PDFURL, true, nil
}

// ---------- Taxi repo mock ----------

type mockTaxiRepo struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*domain.Taxi
	failAll bool
}

func newMockTaxiRepo() *mockTaxiRepo {
	return &mockTaxiRepo{nextID: 1, byID: make(map[int64]*domain.Taxi)}
}

func (m *mockTaxiRepo) Create(_ context.Context, t *domain.Taxi) (*domain.Taxi, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	cp.ID = m.nextID
	m.nextID++
	cp.CreatedAt = time.Now()
	m.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockTaxiRepo) Update(_ context.Context, t *domain.Taxi, ownerID string) (*domain.Taxi, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[t.ID]
	if !ok || (ownerID != "" && stored.OwnerID != ownerID) {
		return nil, nil
	}
	cp := *t
	cp.OwnerID = stored.OwnerID
	cp.CreatedAt = stored.CreatedAt
	m.byID[t.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockTaxiRepo) Delete(_ context.Context, id int64, ownerID string) (*domain.Taxi, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok || (ownerID != "" && t.OwnerID != ownerID) {
		return nil, nil
	}
	delete(m.byID, id)
	cp := *t
	return &cp, nil
}

func (m *mockTaxiRepo) FindByID(_ context.Context, id int64, ownerID string) (*domain.Taxi, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok || (ownerID != "" && t.OwnerID != ownerID) {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *mockTaxiRepo) FindByOwner(_ context.Context, ownerID string) ([]domain.Taxi, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Taxi
	for _, t := range m.byID {
		if t.OwnerID == ownerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockTaxiRepo) List(_ context.Context) ([]domain.Taxi, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errPartitionDown
	}
	var out []domain.Taxi
	for _, t := range m.byID {
		out = append(out, *t)
	}
	return out, nil
}

// ---------- Notification repo mock ----------

type mockNotificationRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*domain.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{nextID: 1, rows: make(map[int64]*domain.Notification)}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *domain.Notification) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	cp.ID = m.nextID
	m.nextID++
	cp.CreatedAt = time.Now()
	m.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockNotificationRepo) FindUnread(_ context.Context, userID string) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.rows {
		if n.UserID == userID && !n.IsRead {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id int64) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	n.IsRead = true
	cp := *n
	return &cp, nil
}

func (m *mockNotificationRepo) DeleteRead(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, n := range m.rows {
		if n.IsRead {
			delete(m.rows, id)
			deleted++
		}
	}
	return deleted, nil
}

// ---------- Platform mocks ----------

type mockBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{objects: make(map[string][]byte)}
}

func (m *mockBlobStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return "http://files.test/files/" + key, nil
}

func (m *mockBlobStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

type mockMailer struct {
	mu          sync.Mutex
	resetMails  []string // recipient emails
	statusMails []string // "email:status"
	lastURL     string
	sendErr     error
}

func (m *mockMailer) SendPasswordReset(toEmail, _, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.resetMails = append(m.resetMails, toEmail)
	m.lastURL = resetURL
	return nil
}

func (m *mockMailer) SendStatusChange(toEmail, _, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.statusMails = append(m.statusMails, toEmail+":"+status)
	return nil
}

type mockNotifier struct {
	mu         sync.Mutex
	broadcasts []push.Payload
	targeted   map[string][]push.Payload
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{targeted: make(map[string][]push.Payload)}
}

func (m *mockNotifier) BroadcastAdmin(_ context.Context, p push.Payload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcasts = append(m.broadcasts, p)
}

func (m *mockNotifier) NotifyUser(_ context.Context, userID string, p push.Payload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targeted[userID] = append(m.targeted[userID], p)
}

func (m *mockNotifier) Close() {}

type mockRenderer struct {
	renderErr error
	lastHTML  string
	calls     int
}

func (m *mockRenderer) Render(_ context.Context, html string) ([]byte, error) {
	m.calls++
	m.lastHTML = html
	if m.renderErr != nil {
		return nil, m.renderErr
	}
	return []byte("%PDF-1.4\nfake content\n%%EOF\n"), nil
}

// ---------- Partition fixture ----------

type fixture struct {
	partitions *repository.Partitions
	identities map[domain.Role]*mockIdentityRepo
	quotations map[domain.Role]*mockQuotationRepo
	taxis      map[domain.Role]*mockTaxiRepo
	notes      map[domain.Role]*mockNotificationRepo
}

func newFixture() *fixture {
	f := &fixture{
		identities: make(map[domain.Role]*mockIdentityRepo),
		quotations: make(map[domain.Role]*mockQuotationRepo),
		taxis:      make(map[domain.Role]*mockTaxiRepo),
		notes:      make(map[domain.Role]*mockNotificationRepo),
	}
	build := func(role domain.Role) *repository.Partition {
		f.identities[role] = newMockIdentityRepo()
		f.quotations[role] = newMockQuotationRepo()
		f.taxis[role] = newMockTaxiRepo()
		f.notes[role] = newMockNotificationRepo()
		return &repository.Partition{
			Role:          role,
			Identities:    f.identities[role],
			Quotations:    f.quotations[role],
			Taxis:         f.taxis[role],
			Notifications: f.notes[role],
		}
	}
	f.partitions = &repository.Partitions{
		Admin:    build(domain.RoleAdmin),
		Employee: build(domain.RoleEmployee),
		Partner:  build(domain.RolePartner),
	}
	return f
}
