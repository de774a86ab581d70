package person

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapUniqueViolation(t *testing.T) {
	assert.ErrorIs(t, mapUniqueViolation(&pq.Error{Code: pqUniqueViolation, Constraint: pkConstraint}), ErrDuplicateDNI)
	assert.ErrorIs(t, mapUniqueViolation(&pq.Error{Code: pqUniqueViolation, Constraint: emailConstraint}), ErrDuplicateEmail)
	assert.NoError(t, mapUniqueViolation(&pq.Error{Code: "23503"}))
	assert.NoError(t, mapUniqueViolation(errors.New("timeout")))
}
