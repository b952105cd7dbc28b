package services

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/config"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/payments"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/products"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/users"
	"github.com/dmitrijs2005/storefront/internal/server/sessions"
	"golang.org/x/crypto/bcrypt"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// memStore is an in-memory stand-in for the PostgreSQL repositories.
// Setting one of the *Err fields makes the matching calls fail.
type memStore struct {
	mu sync.Mutex

	users    map[string]*models.User
	nextUser int
	refresh  map[string]*models.RefreshToken
	resets   map[string]*models.ResetToken
	products map[int64]*models.Product
	nextProd int64
	payments []*models.Payment
	nextPay  int

	findErr    error
	createErr  error
	updateErr  error
	refreshErr error
	resetErr   error
	productErr error
	paymentErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*models.User),
		refresh:  make(map[string]*models.RefreshToken),
		resets:   make(map[string]*models.ResetToken),
		products: make(map[int64]*models.Product),
	}
}

func (m *memStore) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memStore) Users(dbx.DBTX) users.Repository             { return (*memUsers)(m) }
func (m *memStore) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return (*memRefresh)(m)
}
func (m *memStore) ResetTokens(dbx.DBTX) resettokens.Repository { return (*memResets)(m) }
func (m *memStore) Products(dbx.DBTX) products.Repository       { return (*memProducts)(m) }
func (m *memStore) Payments(dbx.DBTX) payments.Repository       { return (*memPayments)(m) }

func (m *memStore) userByEmail(email string) *models.User {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

type memUsers memStore

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, other := range m.users {
		if strings.EqualFold(other.Email, u.Email) {
			return nil, users.ErrEmailTaken
		}
		if strings.EqualFold(other.Username, u.Username) {
			return nil, users.ErrUsernameTaken
		}
	}
	m.nextUser++
	u.ID = "u-" + strconv.Itoa(m.nextUser)
	u.CreatedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return u, nil
}

func (r *memUsers) find(match func(*models.User) bool) (*models.User, error) {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *memUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *memUsers) Update(_ context.Context, u *models.User) error {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.users[u.ID]; !ok {
		return common.ErrorNotFound
	}
	for id, other := range m.users {
		if id != u.ID && strings.EqualFold(other.Username, u.Username) {
			return users.ErrUsernameTaken
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (r *memUsers) Delete(_ context.Context, id string) error {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.users, id)
	return nil
}

type memRefresh memStore

func (r *memRefresh) Create(_ context.Context, userID, sessionID, token string, validity time.Duration) error {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refreshErr != nil {
		return m.refreshErr
	}
	m.refresh[token] = &models.RefreshToken{UserID: userID, SessionID: sessionID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (r *memRefresh) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	t, ok := m.refresh[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(m.refresh, token)
	return t, nil
}

func (r *memRefresh) DeleteByUser(_ context.Context, userID string) ([]string, error) {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	seen := map[string]bool{}
	var ids []string
	for tok, t := range m.refresh {
		if t.UserID != userID {
			continue
		}
		delete(m.refresh, tok)
		if !seen[t.SessionID] {
			seen[t.SessionID] = true
			ids = append(ids, t.SessionID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memRefresh) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for tok, t := range m.refresh {
		if t.Expires.Before(now) {
			delete(m.refresh, tok)
			n++
		}
	}
	return n, nil
}

type memResets memStore

func (r *memResets) Create(_ context.Context, userID, tokenHash string, expires time.Time) error {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resets[tokenHash] = &models.ResetToken{UserID: userID, TokenHash: tokenHash, Expires: expires, CreatedAt: time.Now()}
	return nil
}

func (r *memResets) Consume(_ context.Context, tokenHash string) (*models.ResetToken, error) {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resetErr != nil {
		return nil, m.resetErr
	}
	t, ok := m.resets[tokenHash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(m.resets, tokenHash)
	return t, nil
}

func (r *memResets) DeleteByUser(_ context.Context, userID string) error {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resetErr != nil {
		return m.resetErr
	}
	for h, t := range m.resets {
		if t.UserID == userID {
			delete(m.resets, h)
		}
	}
	return nil
}

func (r *memResets) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for h, t := range m.resets {
		if t.Expires.Before(now) {
			delete(m.resets, h)
			n++
		}
	}
	return n, nil
}

type memProducts memStore

func (r *memProducts) Get(_ context.Context, id int64) (*models.Product, error) {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.productErr != nil {
		return nil, m.productErr
	}
	p, ok := m.products[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProducts) List(_ context.Context, limit, offset int) ([]*models.Product, error) {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.productErr != nil {
		return nil, m.productErr
	}
	ids := make([]int64, 0, len(m.products))
	for id := range m.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []*models.Product
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		cp := *m.products[ids[i]]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memProducts) Create(_ context.Context, p *models.Product) (*models.Product, error) {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.productErr != nil {
		return nil, m.productErr
	}
	m.nextProd++
	p.ID = m.nextProd
	cp := *p
	m.products[p.ID] = &cp
	return p, nil
}

func (r *memProducts) Update(_ context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.productErr != nil {
		return nil, m.productErr
	}
	p, ok := m.products[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	patch.Apply(p)
	cp := *p
	return &cp, nil
}

func (r *memProducts) Delete(_ context.Context, id int64) error {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.productErr != nil {
		return m.productErr
	}
	if _, ok := m.products[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.products, id)
	return nil
}

type memPayments memStore

func (r *memPayments) Create(_ context.Context, p *models.Payment) (*models.Payment, bool, error) {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.paymentErr != nil {
		return nil, false, m.paymentErr
	}
	if p.IdempotencyKey != nil {
		for _, existing := range m.payments {
			if existing.AccountID == p.AccountID && existing.IdempotencyKey != nil && *existing.IdempotencyKey == *p.IdempotencyKey {
				cp := *existing
				return &cp, false, nil
			}
		}
	}
	m.nextPay++
	p.ID = "pay-" + strconv.Itoa(m.nextPay)
	p.PurchaseDate = time.Now().Add(time.Duration(m.nextPay) * time.Millisecond)
	cp := *p
	m.payments = append(m.payments, &cp)
	return p, true, nil
}

func (r *memPayments) ListByAccount(_ context.Context, accountID string) ([]*models.Payment, error) {
	m := (*memStore)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.paymentErr != nil {
		return nil, m.paymentErr
	}
	var out []*models.Payment
	for i := len(m.payments) - 1; i >= 0; i-- {
		if m.payments[i].AccountID == accountID {
			cp := *m.payments[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// inlineTx runs fn without a database; memStore has no rollback.
func inlineTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}

type fakeMailer struct {
	to, link string
	calls    int
	err      error
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, to, link string) error {
	f.calls++
	f.to, f.link = to, link
	return f.err
}

type failingSessions struct{ sessions.Store }

func (failingSessions) Revoke(context.Context, string, time.Duration) error { return errBoom{} }
func (failingSessions) IsRevoked(context.Context, string) (bool, error)     { return false, errBoom{} }

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		ResetTokenValidityDuration:   30 * time.Minute,
		ResetURL:                     "http://localhost:8080/reset-password",
		BcryptCost:                   bcrypt.MinCost,
	}
}

// newAccountService wires an AccountService to a fresh memStore with
// transactions running inline.
func newAccountService() (*AccountService, *memStore, *sessions.MemoryStore, *fakeMailer) {
	store := newMemStore()
	st := sessions.NewMemoryStore()
	ml := &fakeMailer{}
	s := NewAccountService(nil, store, st, ml, testConfig())
	s.withTx = inlineTx
	return s, store, st, ml
}
