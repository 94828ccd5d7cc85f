// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	uuid "github.com/gofrs/uuid"

	"github.com/7maceX1D/assetd/internal/database/postgres"
)

// ErrDenied reports a failed authorization check.
var ErrDenied = fmt.Errorf("access denied")

// Checker is the external read-authorization collaborator. The asset service
// only ever calls it with action "read" on resource "file"; the broader
// signature mirrors the policy engine it fronts.
type Checker interface {
	// Check returns nil when the caller may perform action on the resource,
	// ErrDenied otherwise.
	Check(ctx context.Context, action string, resource string, id uuid.UUID) error
}

// AllowAll is a Checker that admits everything; used for privileged callers
// and in tests.
type AllowAll struct{}

func (AllowAll) Check(ctx context.Context, action string, resource string, id uuid.UUID) error {
	return nil
}

type postgresChecker struct {
	client *postgres.Client
}

// NewPostgresChecker creates a permissions-table-backed Checker.
func NewPostgresChecker(client *postgres.Client) Checker {
	return &postgresChecker{client: client}
}

func (c *postgresChecker) Check(ctx context.Context, action string, resource string, id uuid.UUID) error {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM permissions
			WHERE action = $1 AND resource = $2 AND (resource_id = $3 OR resource_id IS NULL)
		)
	`

	var allowed bool
	err := c.client.DB().GetContext(ctx, &allowed, query, action, resource, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDenied
		}
		return fmt.Errorf("failed to check permissions: %w", err)
	}
	if !allowed {
		return ErrDenied
	}
	return nil
}
