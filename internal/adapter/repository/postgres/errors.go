package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
	"github.com/srgjo27/installation_proof/internal/core/domain"
)

const uniqueViolation = pq.ErrorCode("23505")

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == uniqueViolation && (constraint == "" || pqErr.Constraint == constraint)
}

// storeErr marks connectivity failures as retryable dependency errors and
// wraps everything else with the operation name.
func storeErr(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return domain.Errorf(domain.ErrStoreUnavailable, "storage unavailable during %s", op).Wrap(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
