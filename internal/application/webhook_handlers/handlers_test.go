package webhook_handlers

import (
	"context"
	"encoding/json"
	"testing"

	"retentionos/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOwners struct {
	owners map[string][]string
}

func (s stubOwners) OwnersForDomain(_ context.Context, shop string) ([]string, error) {
	return s.owners[shop], nil
}

type recordingApplier struct {
	customers map[string][]int64
	orders    map[string][]int64
	failFor   string
}

func newRecordingApplier() *recordingApplier {
	return &recordingApplier{customers: map[string][]int64{}, orders: map[string][]int64{}}
}

func (a *recordingApplier) ApplyCustomer(_ context.Context, ownerID string, c domain.RemoteCustomer) (domain.RecordOutcome, error) {
	if ownerID == a.failFor {
		return "", domain.ErrSyncInProgress
	}
	a.customers[ownerID] = append(a.customers[ownerID], c.ID)
	return domain.OutcomeIngested, nil
}

func (a *recordingApplier) ApplyOrder(_ context.Context, ownerID string, o domain.RemoteOrder) (domain.RecordOutcome, error) {
	if ownerID == a.failFor {
		return "", domain.ErrSyncInProgress
	}
	a.orders[ownerID] = append(a.orders[ownerID], o.ID)
	return domain.OutcomeUpdated, nil
}

// jsonDecoder reads just the id fields
type jsonDecoder struct{}

func (jsonDecoder) DecodeCustomer(payload []byte) (domain.RemoteCustomer, error) {
	var v struct {
		ID int64 `json:"id"`
	}
	err := json.Unmarshal(payload, &v)
	return domain.RemoteCustomer{ID: v.ID}, err
}

func (jsonDecoder) DecodeOrder(payload []byte) (domain.RemoteOrder, error) {
	var v struct {
		ID int64 `json:"id"`
	}
	err := json.Unmarshal(payload, &v)
	return domain.RemoteOrder{ID: v.ID}, err
}

type stubDeactivator struct {
	shops []string
}

func (s *stubDeactivator) DeactivateByDomain(_ context.Context, shop string) (int64, error) {
	s.shops = append(s.shops, shop)
	return 1, nil
}

func newTestDispatcher(applier *recordingApplier, deactivator *stubDeactivator) *Dispatcher {
	owners := stubOwners{owners: map[string][]string{"acme.myshopify.com": {"owner-a", "owner-b"}}}
	log := zerolog.Nop()
	return NewDispatcher(log,
		NewCustomerHandler(log, owners, applier, jsonDecoder{}),
		NewOrderHandler(log, owners, applier, jsonDecoder{}),
		NewAppUninstalledHandler(log, deactivator),
	)
}

func TestDispatcher_CustomerFansOutToOwners(t *testing.T) {
	applier := newRecordingApplier()
	d := newTestDispatcher(applier, &stubDeactivator{})

	handled, err := d.Dispatch(context.Background(), &domain.WebhookEvent{
		Topic:   "customers/update",
		Shop:    "acme.myshopify.com",
		Payload: []byte(`{"id": 42}`),
	})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []int64{42}, applier.customers["owner-a"])
	assert.Equal(t, []int64{42}, applier.customers["owner-b"])
}

func TestDispatcher_OrderTopics(t *testing.T) {
	for _, topic := range []string{"orders/create", "orders/updated", "orders/paid", "orders/cancelled", "orders/fulfilled"} {
		t.Run(topic, func(t *testing.T) {
			applier := newRecordingApplier()
			d := newTestDispatcher(applier, &stubDeactivator{})

			handled, err := d.Dispatch(context.Background(), &domain.WebhookEvent{
				Topic:   topic,
				Shop:    "acme.myshopify.com",
				Payload: []byte(`{"id": 7}`),
			})
			require.NoError(t, err)
			assert.True(t, handled)
			assert.Equal(t, []int64{7}, applier.orders["owner-a"])
		})
	}
}

func TestDispatcher_UnknownShopIsNoop(t *testing.T) {
	applier := newRecordingApplier()
	d := newTestDispatcher(applier, &stubDeactivator{})

	handled, err := d.Dispatch(context.Background(), &domain.WebhookEvent{
		Topic:   "orders/create",
		Shop:    "other.myshopify.com",
		Payload: []byte(`{"id": 7}`),
	})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Empty(t, applier.orders)
}

func TestDispatcher_UnknownTopic(t *testing.T) {
	d := newTestDispatcher(newRecordingApplier(), &stubDeactivator{})

	handled, err := d.Dispatch(context.Background(), &domain.WebhookEvent{Topic: "products/update"})
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestDispatcher_JoinsOwnerFailures(t *testing.T) {
	applier := newRecordingApplier()
	applier.failFor = "owner-b"
	d := newTestDispatcher(applier, &stubDeactivator{})

	_, err := d.Dispatch(context.Background(), &domain.WebhookEvent{
		Topic:   "customers/create",
		Shop:    "acme.myshopify.com",
		Payload: []byte(`{"id": 1}`),
	})
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)
	assert.Equal(t, []int64{1}, applier.customers["owner-a"])
}

func TestDispatcher_BadPayload(t *testing.T) {
	d := newTestDispatcher(newRecordingApplier(), &stubDeactivator{})

	_, err := d.Dispatch(context.Background(), &domain.WebhookEvent{
		Topic:   "customers/create",
		Shop:    "acme.myshopify.com",
		Payload: []byte(`not json`),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse customer webhook payload")
}

func TestAppUninstalledHandler(t *testing.T) {
	t.Run("shop header", func(t *testing.T) {
		deactivator := &stubDeactivator{}
		d := newTestDispatcher(newRecordingApplier(), deactivator)

		_, err := d.Dispatch(context.Background(), &domain.WebhookEvent{Topic: "app/uninstalled", Shop: "acme.myshopify.com"})
		require.NoError(t, err)
		assert.Equal(t, []string{"acme.myshopify.com"}, deactivator.shops)
	})

	t.Run("payload fallback", func(t *testing.T) {
		deactivator := &stubDeactivator{}
		h := NewAppUninstalledHandler(zerolog.Nop(), deactivator)

		err := h.Handle(context.Background(), &domain.WebhookEvent{
			Topic:   "app/uninstalled",
			Payload: []byte(`{"domain":"shop.example.com","myshopify_domain":"acme.myshopify.com"}`),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"acme.myshopify.com"}, deactivator.shops)
	})

	t.Run("no domain", func(t *testing.T) {
		h := NewAppUninstalledHandler(zerolog.Nop(), &stubDeactivator{})
		err := h.Handle(context.Background(), &domain.WebhookEvent{Topic: "app/uninstalled", Payload: []byte(`{}`)})
		assert.Error(t, err)
	})
}

