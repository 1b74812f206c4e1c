package application

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"retentionos/internal/domain"
)

const hashFieldSep = "\x1f"

// customerContentHash fingerprints the mutable customer fields
func customerContentHash(c *domain.Customer) string {
	return contentHash(
		c.EmailHash,
		c.FirstName,
		c.LastName,
		c.Phone,
		strconv.FormatBool(c.AcceptsMarketing),
		c.TotalSpent.String(),
		strconv.Itoa(c.OrdersCount),
	)
}

// orderContentHash fingerprints the mutable order fields.
// The local customer link is compared separately.
func orderContentHash(o *domain.Order, customerSourceID int64) string {
	fields := []string{
		o.FinancialStatus,
		o.SubtotalPrice.String(),
		o.TotalPrice.String(),
		o.TotalTax.String(),
		o.Currency,
		o.CustomerEmailHash,
		strconv.FormatInt(customerSourceID, 10),
	}
	for _, li := range o.LineItems {
		fields = append(fields,
			strconv.FormatInt(li.ProductID, 10),
			li.Title,
			strconv.Itoa(li.Quantity),
			li.Price.String(),
		)
	}
	return contentHash(fields...)
}

func contentHash(fields ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(fields, hashFieldSep)))
	return hex.EncodeToString(sum[:])
}

// hasChanged decides whether a stored row is stale. A remote last-modified
// time wins when present; otherwise the content fingerprints are compared.
func hasChanged(storedUpdatedAt time.Time, storedHash string, remoteUpdatedAt *time.Time, incomingHash string) bool {
	if remoteUpdatedAt != nil {
		return remoteUpdatedAt.After(storedUpdatedAt)
	}
	return storedHash != incomingHash
}

// normalizeTime returns t in UTC at the millisecond precision Mongo stores
func normalizeTime(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	n := t.UTC().Truncate(time.Millisecond)
	return &n
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
