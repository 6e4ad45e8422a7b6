package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-coordinator/internal/clock"
	"github.com/spec-kit/ticket-coordinator/internal/domain"
	"github.com/spec-kit/ticket-coordinator/internal/events"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeTenantRepo struct {
	mu      sync.Mutex
	configs map[string]domain.TenantConfig
	points  map[string]map[string]int
	slots   map[string]map[string]int
	keyHash map[string]string
	err     error
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{
		configs: map[string]domain.TenantConfig{},
		points:  map[string]map[string]int{},
		slots:   map[string]map[string]int{},
		keyHash: map[string]string{},
	}
}

func (f *fakeTenantRepo) GetTenantConfig(_ context.Context, tenantID string) (domain.TenantConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.TenantConfig{}, f.err
	}
	cfg, ok := f.configs[tenantID]
	if !ok {
		return domain.TenantConfig{TenantID: tenantID}, nil
	}
	return cfg, nil
}

func (f *fakeTenantRepo) UpsertTenantConfig(_ context.Context, cfg domain.TenantConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs[cfg.TenantID] = cfg
	return nil
}

func (f *fakeTenantRepo) ResetTenantConfig(_ context.Context, tenantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.configs, tenantID)
	delete(f.points, tenantID)
	delete(f.slots, tenantID)
	return nil
}

func (f *fakeTenantRepo) GetServiceCatalog(_ context.Context, tenantID string) (domain.ServiceCatalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.MergeCatalog(domain.DefaultCatalog(), f.points[tenantID], f.slots[tenantID]), nil
}

func (f *fakeTenantRepo) SetCatalogPoints(_ context.Context, tenantID string, points map[string]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points[tenantID] = points
	return nil
}

func (f *fakeTenantRepo) SetCatalogSlots(_ context.Context, tenantID string, slots map[string]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[tenantID] = slots
	return nil
}

func (f *fakeTenantRepo) GetIntegrationKeyHash(_ context.Context, tenantID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hash, ok := f.keyHash[tenantID]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return hash, nil
}

func (f *fakeTenantRepo) SetIntegrationKeyHash(_ context.Context, tenantID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyHash[tenantID] = hash
	return nil
}

type fakeLedgerRepo struct {
	mu       sync.Mutex
	balances map[string]int
	awards   map[string]bool
	listErr  error
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{balances: map[string]int{}, awards: map[string]bool{}}
}

func balanceKey(tenantID, userID string) string { return tenantID + "/" + userID }

func (f *fakeLedgerRepo) AddPoints(_ context.Context, tenantID, userID string, amount int, dedupToken string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := balanceKey(tenantID, userID)
	if !f.awards[dedupToken] {
		f.awards[dedupToken] = true
		f.balances[key] += amount
	}
	return f.balances[key], nil
}

func (f *fakeLedgerRepo) SetPoints(_ context.Context, tenantID, userID string, points int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[balanceKey(tenantID, userID)] = points
	return nil
}

func (f *fakeLedgerRepo) GetPoints(_ context.Context, tenantID, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[balanceKey(tenantID, userID)], nil
}

func (f *fakeLedgerRepo) ListPoints(_ context.Context, tenantID string, limit int) ([]domain.PointsEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var entries []domain.PointsEntry
	for key, points := range f.balances {
		if strings.HasPrefix(key, tenantID+"/") {
			entries = append(entries, domain.PointsEntry{
				UserID: strings.TrimPrefix(key, tenantID+"/"),
				Points: points,
			})
		}
	}
	// Insertion sort keeps the fake dependency-free.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Points > entries[j-1].Points; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (f *fakeLedgerRepo) ResetPoints(_ context.Context, tenantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.balances {
		if strings.HasPrefix(key, tenantID+"/") {
			delete(f.balances, key)
		}
	}
	return nil
}

type fakeCache struct {
	mu          sync.Mutex
	scores      map[string]map[string]int
	topErr      error
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{scores: map[string]map[string]int{}}
}

func (f *fakeCache) Record(_ context.Context, tenantID, userID string, balance int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scores[tenantID] == nil {
		f.scores[tenantID] = map[string]int{}
	}
	f.scores[tenantID][userID] = balance
	return nil
}

func (f *fakeCache) Top(_ context.Context, tenantID string, limit int) ([]domain.PointsEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.topErr != nil {
		return nil, f.topErr
	}
	var entries []domain.PointsEntry
	for userID, points := range f.scores[tenantID] {
		entries = append(entries, domain.PointsEntry{UserID: userID, Points: points})
	}
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Points > entries[j-1].Points; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (f *fakeCache) Invalidate(_ context.Context, tenantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.scores, tenantID)
	f.invalidated = append(f.invalidated, tenantID)
	return nil
}

func testTenantConfig() domain.TenantConfig {
	return domain.TenantConfig{
		TenantID:    "tenant-1",
		AdminRoleID: "role-admin",
		StaffRoleID: "role-staff",
	}
}

func adminActor() domain.Actor {
	return domain.Actor{ID: "admin-1", RoleIDs: []string{"role-admin"}}
}

func staffActor() domain.Actor {
	return domain.Actor{ID: "staff-1", RoleIDs: []string{"role-staff"}}
}

func newPointsEnv() (*PointsService, *fakeTenantRepo, *fakeLedgerRepo, *fakeCache, events.Dispatcher) {
	tenants := newFakeTenantRepo()
	tenants.configs["tenant-1"] = testTenantConfig()
	ledger := newFakeLedgerRepo()
	cache := newFakeCache()
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewPointsService(PointsDependencies{
		TenantRepo: tenants,
		LedgerRepo: ledger,
		Cache:      cache,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
		Clock:      clock.NewFixed(testTime),
	})
	return svc, tenants, ledger, cache, dispatcher
}
