package shopify

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"retentionos/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// classifyError maps go-shopify failures onto the domain's remote errors so
// callers can tell a revoked token from a transient outage.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	var rateErr goshopify.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("failed to %s: %w: %v", op, domain.ErrRateLimited, err)
	}

	var respErr goshopify.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("failed to %s: %w: %v", op, domain.ErrTokenRejected, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("failed to %s: %w: %v", op, domain.ErrRateLimited, err)
		}
		return fmt.Errorf("failed to %s: status %d: %w", op, respErr.Status, err)
	}

	// Some transport paths only surface the status in the message
	if containsAny(err.Error(), "401", "unauthorized", "invalid api key or access token", "403 forbidden") {
		return fmt.Errorf("failed to %s: %w: %v", op, domain.ErrTokenRejected, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func containsAny(s string, substrings ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
