package appointment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapWriteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "active slot unique violation",
			err:  &pq.Error{Code: pqUniqueViolation, Constraint: activeSlotConstraint},
			want: ErrSlotTaken,
		},
		{
			name: "wrapped unique violation",
			err:  fmt.Errorf("exec: %w", &pq.Error{Code: pqUniqueViolation, Constraint: activeSlotConstraint}),
			want: ErrSlotTaken,
		},
		{
			name: "other unique violation",
			err:  &pq.Error{Code: pqUniqueViolation, Constraint: "appointments_pkey"},
			want: ErrExecQuery,
		},
		{
			name: "missing person",
			err:  &pq.Error{Code: pqForeignKeyViolation},
			want: ErrPersonNotFound,
		},
		{
			name: "serialization failure",
			err:  &pq.Error{Code: pqSerializationFailure},
			want: ErrSerialization,
		},
		{
			name: "connection error",
			err:  errors.New("connection reset by peer"),
			want: ErrExecQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapWriteError("Create", tt.err), tt.want)
		})
	}
}
