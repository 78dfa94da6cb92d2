package hcloud

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	apiErr := func(code hcloud.ErrorCode) error {
		return hcloud.Error{Code: code, Message: string(code)}
	}

	tests := []struct {
		name        string
		err         error
		locked      bool
		invalid     bool
		notFound    bool
		rateLimited bool
	}{
		{name: "nil"},
		{name: "plain", err: errors.New("boom")},
		{name: "locked", err: apiErr(hcloud.ErrorCodeLocked), locked: true},
		{name: "conflict", err: apiErr(hcloud.ErrorCodeConflict), locked: true},
		{name: "resource unavailable", err: apiErr(hcloud.ErrorCodeResourceUnavailable), locked: true},
		{name: "not found", err: apiErr(hcloud.ErrorCodeNotFound), invalid: true, notFound: true},
		{name: "invalid input", err: apiErr(hcloud.ErrorCodeInvalidInput), invalid: true},
		{name: "uniqueness", err: apiErr(hcloud.ErrorCodeUniquenessError), invalid: true},
		{name: "rate limit", err: apiErr(hcloud.ErrorCodeRateLimitExceeded), rateLimited: true},
		{name: "wrapped not found", err: fmt.Errorf("get: %w", apiErr(hcloud.ErrorCodeNotFound)), invalid: true, notFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.locked, isResourceLocked(tt.err), "isResourceLocked")
			assert.Equal(t, tt.invalid, isInvalidParameter(tt.err), "isInvalidParameter")
			assert.Equal(t, tt.notFound, IsNotFound(tt.err), "IsNotFound")
			assert.Equal(t, tt.rateLimited, IsRateLimited(tt.err), "IsRateLimited")
		})
	}
}
