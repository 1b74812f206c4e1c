package application

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"

	"retentionos/internal/domain"
	"retentionos/internal/ports"
)

type fakeConnections struct {
	mu    sync.Mutex
	conns []*domain.Connection
}

func (f *fakeConnections) GetActive(_ context.Context, ownerID string, platform domain.Platform) (*domain.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		if c.OwnerID == ownerID && c.Platform == platform && c.IsActive {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeConnections) ListActiveByDomain(_ context.Context, platform domain.Platform, d string) ([]*domain.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Connection
	for _, c := range f.conns {
		if c.Platform == platform && c.PlatformDomain == d && c.IsActive {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeConnections) ReplaceActive(_ context.Context, conn *domain.Connection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		if c.OwnerID == conn.OwnerID && c.Platform == conn.Platform {
			c.IsActive = false
		}
	}
	conn.ID = fmt.Sprintf("conn-%d", len(f.conns)+1)
	conn.IsActive = true
	cp := *conn
	f.conns = append(f.conns, &cp)
	return nil
}

func (f *fakeConnections) Deactivate(_ context.Context, ownerID string, platform domain.Platform) (int64, error) {
	return f.deactivate(func(c *domain.Connection) bool { return c.OwnerID == ownerID && c.Platform == platform })
}

func (f *fakeConnections) DeactivateByDomain(_ context.Context, platform domain.Platform, d string) (int64, error) {
	return f.deactivate(func(c *domain.Connection) bool { return c.Platform == platform && c.PlatformDomain == d })
}

func (f *fakeConnections) deactivate(match func(*domain.Connection) bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, c := range f.conns {
		if c.IsActive && match(c) {
			c.IsActive = false
			n++
		}
	}
	return n, nil
}

func (f *fakeConnections) activeCount(ownerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.conns {
		if c.OwnerID == ownerID && c.IsActive {
			n++
		}
	}
	return n
}

type fakeCustomers struct {
	mu        sync.Mutex
	rows      map[string]*domain.Customer // by local id
	seq       int
	failOn    map[int64]bool
	updateLog []int64
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{rows: map[string]*domain.Customer{}, failOn: map[int64]bool{}}
}

func (f *fakeCustomers) FindBySourceID(_ context.Context, ownerID string, sourceID int64) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.rows {
		if c.OwnerAccountID == ownerID && c.SourceID == sourceID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCustomers) Insert(_ context.Context, c *domain.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[c.SourceID] {
		return fmt.Errorf("insert failed for %d", c.SourceID)
	}
	f.seq++
	c.ID = fmt.Sprintf("cust-%d", f.seq)
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeCustomers) Update(_ context.Context, c *domain.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[c.ID]; !ok {
		return fmt.Errorf("customer %s not found", c.ID)
	}
	cp := *c
	f.rows[c.ID] = &cp
	f.updateLog = append(f.updateLog, c.SourceID)
	return nil
}

func (f *fakeCustomers) CountByOwner(_ context.Context, ownerID string) (int64, error) {
	rows, _ := f.ListByOwner(context.Background(), ownerID)
	return int64(len(rows)), nil
}

func (f *fakeCustomers) ListByOwner(_ context.Context, ownerID string) ([]*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Customer
	for _, c := range f.rows {
		if c.OwnerAccountID == ownerID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceID < out[j].SourceID })
	return out, nil
}

func (f *fakeCustomers) bySource(ownerID string, sourceID int64) *domain.Customer {
	c, _ := f.FindBySourceID(context.Background(), ownerID, sourceID)
	return c
}

type fakeOrders struct {
	mu   sync.Mutex
	rows map[string]*domain.Order
	seq  int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{rows: map[string]*domain.Order{}}
}

func (f *fakeOrders) FindBySourceID(_ context.Context, ownerID string, sourceID int64) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.rows {
		if o.OwnerAccountID == ownerID && o.SourceID == sourceID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOrders) Insert(_ context.Context, o *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	o.ID = fmt.Sprintf("ord-%d", f.seq)
	cp := *o
	f.rows[o.ID] = &cp
	return nil
}

func (f *fakeOrders) Update(_ context.Context, o *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[o.ID]; !ok {
		return fmt.Errorf("order %s not found", o.ID)
	}
	cp := *o
	f.rows[o.ID] = &cp
	return nil
}

func (f *fakeOrders) CountByOwner(_ context.Context, ownerID string) (int64, error) {
	rows, _ := f.ListByOwner(context.Background(), ownerID)
	return int64(len(rows)), nil
}

func (f *fakeOrders) ListByOwner(_ context.Context, ownerID string) ([]*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Order
	for _, o := range f.rows {
		if o.OwnerAccountID == ownerID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceCreatedAt.Before(out[j].SourceCreatedAt) })
	return out, nil
}

func (f *fakeOrders) bySource(ownerID string, sourceID int64) *domain.Order {
	o, _ := f.FindBySourceID(context.Background(), ownerID, sourceID)
	return o
}

type fakeSyncRuns struct {
	mu   sync.Mutex
	runs []*domain.SyncRun
}

func (f *fakeSyncRuns) Create(_ context.Context, run *domain.SyncRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *run
	f.runs = append(f.runs, &cp)
	return nil
}

func (f *fakeSyncRuns) Finish(_ context.Context, run *domain.SyncRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.runs {
		if r.ID == run.ID {
			if r.Status != domain.SyncStatusRunning {
				return fmt.Errorf("sync run %s already finished", run.ID)
			}
			cp := *run
			f.runs[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("sync run %s not found", run.ID)
}

func (f *fakeSyncRuns) Get(_ context.Context, id string) (*domain.SyncRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.runs {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSyncRuns) ListByOwner(_ context.Context, ownerID string, limit int) ([]*domain.SyncRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.SyncRun
	for i := len(f.runs) - 1; i >= 0; i-- {
		if f.runs[i].OwnerAccountID == ownerID {
			cp := *f.runs[i]
			out = append(out, &cp)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeSyncRuns) all() []*domain.SyncRun {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.SyncRun(nil), f.runs...)
}

type fakeSalts struct {
	mu    sync.Mutex
	salts map[string][]byte
}

func (f *fakeSalts) GetOrCreate(_ context.Context, ownerID string, candidate []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.salts == nil {
		f.salts = map[string][]byte{}
	}
	if s, ok := f.salts[ownerID]; ok {
		return s, nil
	}
	f.salts[ownerID] = candidate
	return candidate, nil
}

// fakeEncryption marks ciphertexts with a prefix
type fakeEncryption struct{}

func (fakeEncryption) Encrypt(p string) (string, error) { return "enc:" + p, nil }
func (fakeEncryption) Decrypt(c string) (string, error) {
	if len(c) < 4 || c[:4] != "enc:" {
		return "", fmt.Errorf("bad ciphertext")
	}
	return c[4:], nil
}

// fakeShopify serves fixed slices through page-sized pagers
type fakeShopify struct {
	mu          sync.Mutex
	customers   []domain.RemoteCustomer
	orders      []domain.RemoteOrder
	products    []domain.Product
	customerErr error
	orderErr    error
	shop        *domain.ShopInfo
	shopErr     error
	grant       *ports.TokenGrant
	exchangeErr error
	callbackOK  bool
	webhookOK   bool

	customerPages int
	tokens        []string
}

func (f *fakeShopify) GenerateAuthURL(shop, state string) (string, error) {
	return "https://" + shop + "/admin/oauth/authorize?state=" + url.QueryEscape(state), nil
}

func (f *fakeShopify) ExchangeToken(_ context.Context, _ string, _ string) (*ports.TokenGrant, error) {
	return f.grant, f.exchangeErr
}

func (f *fakeShopify) VerifyCallback(*url.URL) (bool, error) { return f.callbackOK, nil }

func (f *fakeShopify) VerifyWebhook([]byte, string) bool { return f.webhookOK }

func (f *fakeShopify) TestConnection(_ context.Context, _ string, token string) (*domain.ShopInfo, error) {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
	return f.shop, f.shopErr
}

func (f *fakeShopify) Customers(_ string, token string, opts ports.PageOptions) ports.Pager[domain.RemoteCustomer] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	items := append([]domain.RemoteCustomer(nil), f.customers...)
	return &slicePager[domain.RemoteCustomer]{items: items, opts: opts, err: f.customerErr, onPage: func() {
		f.mu.Lock()
		f.customerPages++
		f.mu.Unlock()
	}}
}

func (f *fakeShopify) Orders(_ string, _ string, opts ports.PageOptions) ports.Pager[domain.RemoteOrder] {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := append([]domain.RemoteOrder(nil), f.orders...)
	return &slicePager[domain.RemoteOrder]{items: items, opts: opts, err: f.orderErr}
}

func (f *fakeShopify) Products(_ string, _ string, opts ports.PageOptions) ports.Pager[domain.Product] {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := append([]domain.Product(nil), f.products...)
	return &slicePager[domain.Product]{items: items, opts: opts}
}

type slicePager[T any] struct {
	items  []T
	opts   ports.PageOptions
	err    error
	pages  int
	onPage func()
}

func (p *slicePager[T]) Next(context.Context) ([]T, error) {
	if p.err != nil {
		return nil, p.err
	}
	size := p.opts.PageSize
	if size <= 0 {
		size = 250
	}
	if p.opts.MaxPages > 0 && p.pages >= p.opts.MaxPages {
		return nil, io.EOF
	}
	start := p.pages * size
	if start >= len(p.items) && p.pages > 0 {
		return nil, io.EOF
	}
	end := min(start+size, len(p.items))
	p.pages++
	if p.onPage != nil {
		p.onPage()
	}
	if start >= len(p.items) {
		return []T{}, nil
	}
	return p.items[start:end], nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.SyncEvent
}

func (p *recordingPublisher) Publish(ev domain.SyncEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

type countingCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	invalidated map[string]int
	sets        int
}

func newCountingCache() *countingCache {
	return &countingCache{data: map[string][]byte{}, invalidated: map[string]int{}}
}

func (c *countingCache) entryKey(ownerID, key string, version int64) string {
	return fmt.Sprintf("%s/v%d/%s", ownerID, version, key)
}

func (c *countingCache) Version(_ context.Context, ownerID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(c.invalidated[ownerID]), nil
}

func (c *countingCache) Get(_ context.Context, ownerID, key string, version int64, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[c.entryKey(ownerID, key, version)]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *countingCache) Set(_ context.Context, ownerID, key string, version int64, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[c.entryKey(ownerID, key, version)] = raw
	c.sets++
	return nil
}

func (c *countingCache) Invalidate(_ context.Context, ownerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated[ownerID]++
	prefix := ownerID + "/"
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}
