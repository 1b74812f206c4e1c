package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"retentionos/internal/analytics"
	"retentionos/internal/application"
	"retentionos/internal/domain"

	"github.com/rs/zerolog"
)

type fakeSync struct {
	outcome *domain.SyncOutcome
	err     error
	runs    []*domain.SyncRun
	owners  []string
	limit   int
}

func (f *fakeSync) Run(_ context.Context, ownerID string) (*domain.SyncOutcome, error) {
	f.owners = append(f.owners, ownerID)
	return f.outcome, f.err
}

func (f *fakeSync) Runs(_ context.Context, ownerID string, limit int) ([]*domain.SyncRun, error) {
	f.owners = append(f.owners, ownerID)
	f.limit = limit
	return f.runs, f.err
}

type fakeConnections struct {
	authErr     error
	callbackOK  bool
	callbackErr error
	completeErr error
	completed   []string // owner|shop|code
	disconnects []string
	status      *application.ConnectionStatus
	products    []domain.Product
	productsErr error
}

func (f *fakeConnections) AuthorizeURL(shop, state string) (string, string, error) {
	if f.authErr != nil {
		return "", "", f.authErr
	}
	d := domain.NormalizeShopDomain(shop)
	return "https://" + d + "/admin/oauth/authorize?state=" + state, d, nil
}

func (f *fakeConnections) VerifyCallback(*url.URL) (bool, error) {
	return f.callbackOK, f.callbackErr
}

func (f *fakeConnections) CompleteOAuth(_ context.Context, ownerID, shop, code string) (*domain.Connection, error) {
	f.completed = append(f.completed, strings.Join([]string{ownerID, shop, code}, "|"))
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return &domain.Connection{OwnerID: ownerID, PlatformDomain: shop, IsActive: true}, nil
}

func (f *fakeConnections) Disconnect(_ context.Context, ownerID string) error {
	f.disconnects = append(f.disconnects, ownerID)
	return nil
}

func (f *fakeConnections) Status(context.Context, string) (*application.ConnectionStatus, error) {
	if f.status == nil {
		return &application.ConnectionStatus{Reason: application.ReasonNotConnected}, nil
	}
	return f.status, nil
}

func (f *fakeConnections) Products(context.Context, string, int) ([]domain.Product, error) {
	return f.products, f.productsErr
}

type fakeMetrics struct {
	months int
	limit  int
	err    error
}

func (f *fakeMetrics) Overview(context.Context, string) (analytics.Overview, error) {
	return analytics.Overview{TotalCustomers: 3, RepeatCustomers: 1}, f.err
}

func (f *fakeMetrics) Cohorts(_ context.Context, _ string, months int) ([]analytics.Cohort, error) {
	f.months = months
	return []analytics.Cohort{}, f.err
}

func (f *fakeMetrics) Products(_ context.Context, _ string, limit int) ([]analytics.ProductPerformance, error) {
	f.limit = limit
	return []analytics.ProductPerformance{}, f.err
}

func (f *fakeMetrics) ChurnRisk(_ context.Context, _ string, limit int) ([]analytics.ChurnEntry, error) {
	f.limit = limit
	return []analytics.ChurnEntry{}, f.err
}

func (f *fakeMetrics) Reactivation(context.Context, string) (analytics.Reactivation, error) {
	return analytics.Reactivation{}, f.err
}

func (f *fakeMetrics) Segments(context.Context, string) ([]analytics.Segment, error) {
	return []analytics.Segment{}, f.err
}

func (f *fakeMetrics) Reports(_ context.Context, _ string, months int) ([]analytics.MonthlyReport, error) {
	f.months = months
	return []analytics.MonthlyReport{}, f.err
}

type fakeWebhookVerifier struct{ valid bool }

func (f fakeWebhookVerifier) VerifyWebhook([]byte, string) bool { return f.valid }

type fakeDispatcher struct {
	mu     sync.Mutex
	events []*domain.WebhookEvent
	err    error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, event *domain.WebhookEvent) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return true, f.err
}

// bearerSession treats the bearer token as the owner id
func bearerSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || owner == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.WithOwnerID(r.Context(), owner)))
	})
}

type routerFixture struct {
	sync        *fakeSync
	connections *fakeConnections
	metrics     *fakeMetrics
	dispatcher  *fakeDispatcher
	cookies     *CookieSigner
	handler     http.Handler
}

func newRouterFixture(webhookValid bool) *routerFixture {
	f := &routerFixture{
		sync:        &fakeSync{},
		connections: &fakeConnections{},
		metrics:     &fakeMetrics{},
		dispatcher:  &fakeDispatcher{},
		cookies:     NewCookieSigner("cookie-secret", false),
	}
	f.handler = NewRouter(Deps{
		Sync:            f.sync,
		Connections:     f.connections,
		Metrics:         f.metrics,
		WebhookVerifier: fakeWebhookVerifier{valid: webhookValid},
		Webhooks:        f.dispatcher,
		Session:         bearerSession,
		Cookies:         f.cookies,
		SiteURL:         "https://app.example.com/",
		AllowedOrigins:  []string{"https://app.example.com"},
		Logger:          zerolog.Nop(),
	})
	return f
}
