package postgres

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/srgjo27/installation_proof/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestStoreErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.ErrCode
	}{
		{"bad conn", driver.ErrBadConn, domain.ErrStoreUnavailable},
		{"wrapped bad conn", fmt.Errorf("exec: %w", driver.ErrBadConn), domain.ErrStoreUnavailable},
		{"syntax error", &pq.Error{Code: "42601"}, ""},
		{"other", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storeErr("op", tt.err)
			assert.Equal(t, tt.want, domain.Code(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: payoutsProofKey})

	assert.True(t, isUniqueViolation(err, payoutsProofKey))
	assert.True(t, isUniqueViolation(err, ""))
	assert.False(t, isUniqueViolation(err, payoutsBookingKey))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}, ""))
}
