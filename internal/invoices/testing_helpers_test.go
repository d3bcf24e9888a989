package invoices

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgdb "github.com/angelmondragon/invoicecapture-backend/pkg/db"
	"github.com/angelmondragon/invoicecapture-backend/pkg/db/models"
	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
)

func setupInvoicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'user',
  created_at DATETIME
);`
	invoices := `
CREATE TABLE IF NOT EXISTS invoices (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  invoice_number TEXT NOT NULL DEFAULT '',
  store_name TEXT NOT NULL DEFAULT '',
  invoice_date DATETIME,
  total_amount TEXT NOT NULL DEFAULT '0',
  tax_amount TEXT NOT NULL DEFAULT '0',
  discount_amount TEXT NOT NULL DEFAULT '0',
  final_price TEXT,
  category TEXT NOT NULL DEFAULT '',
  promotion_mechanism TEXT,
  original_text TEXT,
  image_url TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`
	items := `
CREATE TABLE IF NOT EXISTS invoice_items (
  id TEXT PRIMARY KEY,
  invoice_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  description TEXT NOT NULL,
  product_name TEXT NOT NULL DEFAULT '',
  product_id TEXT,
  quantity TEXT NOT NULL DEFAULT '0',
  unit_price TEXT NOT NULL DEFAULT '0',
  amount TEXT NOT NULL DEFAULT '0',
  discount TEXT,
  net_price TEXT,
  promotion_price TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(invoices).Error)
	require.NoError(t, db.Exec(items).Error)
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, name, city string) *models.User {
	t.Helper()

	user := &models.User{
		ID:    uuid.New(),
		Email: uuid.NewString()[:8] + "@madec.co.ma",
		Name:  name,
		City:  city,
		Role:  enums.UserRoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeLocker struct {
	lockFn   func(ctx context.Context, id uuid.UUID) (func(context.Context), error)
	released int
}

func (f *fakeLocker) Lock(ctx context.Context, id uuid.UUID) (func(context.Context), error) {
	if f.lockFn != nil {
		return f.lockFn(ctx, id)
	}
	return func(context.Context) { f.released++ }, nil
}

type fakeListCache struct {
	entries     map[string]*ListResult
	invalidated int
	keyFn       func(params ListParams) string
}

func newFakeListCache() *fakeListCache {
	return &fakeListCache{entries: map[string]*ListResult{}}
}

func (f *fakeListCache) Key(_ context.Context, params ListParams) (string, error) {
	if f.keyFn != nil {
		return f.keyFn(params), nil
	}
	return params.Scope.UserID.String() + "|" + params.Search + "|" + params.Status + "|" + params.Cursor, nil
}

func (f *fakeListCache) Load(_ context.Context, key string) (*ListResult, bool) {
	res, ok := f.entries[key]
	return res, ok
}

func (f *fakeListCache) Store(_ context.Context, key string, result *ListResult) {
	f.entries[key] = result
}

func (f *fakeListCache) Invalidate(context.Context) {
	f.invalidated++
	f.entries = map[string]*ListResult{}
}

type serviceFixture struct {
	db        *gorm.DB
	svc       Service
	publisher *recordingPublisher
	locker    *fakeLocker
	cache     *fakeListCache
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	db := setupInvoicesTestDB(t)
	f := &serviceFixture{
		db:        db,
		publisher: &recordingPublisher{},
		locker:    &fakeLocker{},
		cache:     newFakeListCache(),
	}
	svc, err := NewService(ServiceParams{
		Repo:      NewRepository(db),
		Tx:        pkgdb.Wrap(db),
		Cache:     f.cache,
		Locker:    f.locker,
		Publisher: f.publisher,
		Logger:    logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Now:       func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}
