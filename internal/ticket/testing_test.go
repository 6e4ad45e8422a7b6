package ticket

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-coordinator/internal/clock"
	"github.com/spec-kit/ticket-coordinator/internal/domain"
	"github.com/spec-kit/ticket-coordinator/internal/gateway"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeSettings struct {
	cfg     domain.TenantConfig
	catalog domain.ServiceCatalog
	cfgErr  error
}

func (f *fakeSettings) GetTenantConfig(ctx context.Context, tenantID string) (domain.TenantConfig, error) {
	if f.cfgErr != nil {
		return domain.TenantConfig{}, f.cfgErr
	}
	return f.cfg, nil
}

func (f *fakeSettings) GetServiceCatalog(ctx context.Context, tenantID string) (domain.ServiceCatalog, error) {
	return f.catalog, nil
}

type fakeTicketStore struct {
	mu      sync.Mutex
	rows    map[string]domain.Ticket
	saveErr error
}

func newFakeTicketStore() *fakeTicketStore {
	return &fakeTicketStore{rows: make(map[string]domain.Ticket)}
}

func (f *fakeTicketStore) SaveTicket(ctx context.Context, t *domain.Ticket) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[t.ChannelID] = *t
	return nil
}

func (f *fakeTicketStore) UpdateTicket(ctx context.Context, t *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[t.ChannelID] = *t
	return nil
}

func (f *fakeTicketStore) DeleteTicket(ctx context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, channelID)
	return nil
}

func (f *fakeTicketStore) ListActiveTickets(ctx context.Context) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Ticket, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeTicketStore) has(channelID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[channelID]
	return ok
}

type fakeGateway struct {
	mu sync.Mutex

	createErr  error
	deleteErr  error
	historyErr error
	sendErr    error

	history []gateway.HistoryMessage

	createdChannels []string
	deletedChannels []string
	sentMessages    []string
	sentDocuments   []string
	nextChannel     int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{}
}

func (f *fakeGateway) CreateChannel(ctx context.Context, tenantID, name, categoryID string, overwrites []gateway.Overwrite) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextChannel++
	id := "chan-" + name
	f.createdChannels = append(f.createdChannels, id)
	return id, nil
}

func (f *fakeGateway) SetPermission(ctx context.Context, channelID, actorID string, view, send bool) error {
	return nil
}

func (f *fakeGateway) FetchHistory(ctx context.Context, channelID string) ([]gateway.HistoryMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

func (f *fakeGateway) SendMessage(ctx context.Context, channelID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sentMessages = append(f.sentMessages, content)
	return nil
}

func (f *fakeGateway) SendDocument(ctx context.Context, channelID, filename string, content []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sentDocuments = append(f.sentDocuments, filename)
	return nil
}

func (f *fakeGateway) DeleteChannel(ctx context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedChannels = append(f.deletedChannels, channelID)
	return nil
}

// fakeLedger credits points keyed by dedup token, like the Postgres ledger.
// failAfter makes AddPoints fail once the given number of awards succeeded;
// blockCh, when set, stalls AddPoints until the channel is closed.
type fakeLedger struct {
	mu        sync.Mutex
	awards    map[string]int
	balances  map[string]int
	calls     int
	failAfter int
	blockCh   chan struct{}
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		awards:    map[string]int{},
		balances:  map[string]int{},
		failAfter: -1,
	}
}

func (f *fakeLedger) AddPoints(ctx context.Context, tenantID, userID string, amount int, dedupToken string) (int, error) {
	if f.blockCh != nil {
		<-f.blockCh
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter >= 0 && f.calls >= f.failAfter {
		return 0, errors.New("ledger unavailable")
	}
	f.calls++
	key := tenantID + "/" + userID
	if _, settled := f.awards[dedupToken]; !settled {
		f.awards[dedupToken] = amount
		f.balances[key] += amount
	}
	return f.balances[key], nil
}

func (f *fakeLedger) balance(tenantID, userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[tenantID+"/"+userID]
}

type fakeEffects struct {
	mu      sync.Mutex
	grants  []string
	revokes []string
}

func (f *fakeEffects) EnqueuePermission(channelID, actorID string, view, send bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if view {
		f.grants = append(f.grants, actorID)
	} else {
		f.revokes = append(f.revokes, actorID)
	}
}

func testConfig() domain.TenantConfig {
	return domain.TenantConfig{
		TenantID:            "tenant-1",
		AdminRoleID:         "role-admin",
		StaffRoleID:         "role-staff",
		HelperRoleID:        "role-helper",
		BlockedRoleID:       "role-blocked",
		TicketCategoryID:    "cat-1",
		TranscriptChannelID: "chan-transcript",
	}
}

type testEnv struct {
	registry *Registry
	settings *fakeSettings
	store    *fakeTicketStore
	gateway  *fakeGateway
	ledger   *fakeLedger
	effects  *fakeEffects
}

func newTestEnv() *testEnv {
	env := &testEnv{
		settings: &fakeSettings{
			cfg:     testConfig(),
			catalog: domain.DefaultCatalog(),
		},
		store:   newFakeTicketStore(),
		gateway: newFakeGateway(),
		ledger:  newFakeLedger(),
		effects: &fakeEffects{},
	}
	env.registry = NewRegistry(Dependencies{
		Settings:       env.settings,
		Tickets:        env.store,
		Gateway:        env.gateway,
		Ledger:         env.ledger,
		Effects:        env.effects,
		Logger:         zap.NewNop(),
		Clock:          clock.NewFixed(testTime),
		HistoryTimeout: time.Second,
	})
	return env
}

func helperActor(id string) domain.Actor {
	return domain.Actor{ID: id, RoleIDs: []string{"role-helper"}}
}

func staffActor(id string) domain.Actor {
	return domain.Actor{ID: id, RoleIDs: []string{"role-staff"}}
}

func adminActor(id string) domain.Actor {
	return domain.Actor{ID: id, RoleIDs: []string{"role-admin"}}
}
