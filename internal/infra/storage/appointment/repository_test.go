package appointment

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

const selectColumns = "SELECT id, appointment_date, slot_time, status, person_dni, created_at, updated_at FROM appointments"

// слот попадает в аргументы строкой через driver.Valuer
func TestFindActiveBySlotQuery(t *testing.T) {
	date := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	slot := types.MustTimeString("10:00")

	tests := []struct {
		name      string
		excludeID int64
		lock      bool
		wantSQL   string
		wantArgs  []interface{}
	}{
		{
			name:    "in transaction",
			lock:    true,
			wantSQL: selectColumns + " WHERE appointment_date = $1 AND slot_time = $2 AND status <> $3 LIMIT 1 FOR UPDATE",
			wantArgs: []interface{}{
				"2026-06-10", "10:00", domain.StatusCancelled,
			},
		},
		{
			name:      "excluding the moved appointment",
			excludeID: 7,
			lock:      true,
			wantSQL:   selectColumns + " WHERE appointment_date = $1 AND slot_time = $2 AND status <> $3 AND id <> $4 LIMIT 1 FOR UPDATE",
			wantArgs: []interface{}{
				"2026-06-10", "10:00", domain.StatusCancelled, int64(7),
			},
		},
		{
			name:    "without transaction",
			wantSQL: selectColumns + " WHERE appointment_date = $1 AND slot_time = $2 AND status <> $3 LIMIT 1",
			wantArgs: []interface{}{
				"2026-06-10", "10:00", domain.StatusCancelled,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := findActiveBySlotQuery(date, slot, tt.excludeID, tt.lock).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, query)
			assert.Equal(t, tt.wantArgs, args)
			assert.Equal(t, tt.lock, strings.HasSuffix(query, "LIMIT 1 FOR UPDATE"))
		})
	}
}

func TestCancelledByPersonQuery(t *testing.T) {
	query, args, err := cancelledByPersonQuery(3).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT a.person_dni, p.full_name, COUNT(*) AS cancelled FROM appointments a "+
			"JOIN persons p ON p.dni = a.person_dni "+
			"WHERE a.status = $1 "+
			"GROUP BY a.person_dni, p.full_name "+
			"HAVING COUNT(*) >= $2 "+
			"ORDER BY cancelled DESC, a.person_dni ASC",
		query)
	assert.Equal(t, []interface{}{domain.StatusCancelled, 3}, args)
}
