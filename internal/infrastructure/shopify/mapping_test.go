package shopify

import (
	"testing"
	"time"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderFromShopify(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("EST", -5*3600))
	total := decimal.RequireFromString("99.50")

	o := orderFromShopify(goshopify.Order{
		Id:          1001,
		OrderNumber: 1,
		Email:       "",
		Customer:    &goshopify.Customer{Id: 7, Email: "buyer@example.com"},
		TotalPrice:  &total,
		CreatedAt:   &created,
	})

	assert.Equal(t, int64(1001), o.ID)
	assert.Equal(t, int64(7), o.CustomerSourceID)
	assert.Equal(t, "buyer@example.com", o.Email)
	assert.True(t, o.TotalPrice.Equal(total))
	assert.True(t, o.TotalTax.IsZero())
	require.NotNil(t, o.CreatedAt)
	assert.Equal(t, time.UTC, o.CreatedAt.Location())
	assert.Nil(t, o.UpdatedAt)
}

func TestParseCustomerPayload(t *testing.T) {
	payload := []byte(`{"id": 42, "email": "Jane@Example.com", "first_name": "Jane",
		"orders_count": 3, "total_spent": "120.00", "updated_at": "2024-05-01T10:00:00-04:00"}`)

	c, err := ParseCustomerPayload(payload)

	require.NoError(t, err)
	assert.Equal(t, int64(42), c.ID)
	assert.Equal(t, 3, c.OrdersCount)
	assert.True(t, c.TotalSpent.Equal(decimal.RequireFromString("120")))
	require.NotNil(t, c.UpdatedAt)
	assert.Equal(t, time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC), *c.UpdatedAt)

	_, err = ParseCustomerPayload([]byte(`{`))
	assert.Error(t, err)
}
