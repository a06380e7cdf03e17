package feriados

import (
	"context"
	"testing"
	"time"

	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/engine"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/internal/dateutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedAndForYear(t *testing.T) {
	db := engine.OpenTestDB(t)
	m := New(db)
	ctx := context.Background()

	list, err := m.ForYear(ctx, 2025)
	require.NoError(t, err)
	require.NotEmpty(t, list)

	byName := map[string]*Feriado{}
	for _, f := range list {
		byName[f.Nome] = f
		assert.Equal(t, 2025, f.Data.Year)
		assert.Equal(t, f.Data.String(), f.DataISO)
	}
	require.Contains(t, byName, "Natal")
	assert.Equal(t, "2025-12-25", byName["Natal"].DataISO)
	assert.Equal(t, TipoReligioso, byName["Natal"].Tipo)
	require.Contains(t, byName, "Tiradentes")
	assert.Equal(t, "2025-04-21", byName["Tiradentes"].DataISO)

	// Recurring entries expand to any requested year.
	list2030, err := m.ForYear(ctx, 2030)
	require.NoError(t, err)
	assert.Equal(t, len(list), len(list2030))
}

func TestSeedIsIdempotent(t *testing.T) {
	db := engine.OpenTestDB(t)
	m := New(db)

	// Deleting a seeded holiday must survive a second module construction.
	_, err := db.Exec("DELETE FROM feriados WHERE nome = 'Natal'")
	require.NoError(t, err)
	before := count(t, m)

	New(db)
	assert.Equal(t, before, count(t, m))
}

func TestFixedDateHolidayScopedToYear(t *testing.T) {
	db := engine.OpenTestDB(t)
	m := New(db)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO feriados (id, data, nome, tipo, recorrente) VALUES ('f1', '2025-03-04', 'Carnaval', 'nacional', 0)`)
	require.NoError(t, err)

	list, err := m.ForYear(ctx, 2025)
	require.NoError(t, err)
	assert.True(t, contains(list, "Carnaval"))

	list, err = m.ForYear(ctx, 2026)
	require.NoError(t, err)
	assert.False(t, contains(list, "Carnaval"))
}

func TestMalformedDateRowIsSkipped(t *testing.T) {
	db := engine.OpenTestDB(t)
	m := New(db)

	_, err := db.Exec(`INSERT INTO feriados (id, data, nome, tipo, recorrente) VALUES ('bad', 'amanhã', 'Quebrado', 'municipal', 0)`)
	require.NoError(t, err)

	list, err := m.ForYear(context.Background(), 2025)
	require.NoError(t, err)
	assert.False(t, contains(list, "Quebrado"))
}

func TestForRangeSpansYears(t *testing.T) {
	db := engine.OpenTestDB(t)
	m := New(db)

	list, err := m.ForRange(context.Background(),
		dateutil.NewDate(2024, time.December, 1), dateutil.NewDate(2025, time.January, 31))
	require.NoError(t, err)

	years := map[int]bool{}
	for _, f := range list {
		years[f.Data.Year] = true
	}
	assert.True(t, years[2024])
	assert.True(t, years[2025])
}

func contains(list []*Feriado, nome string) bool {
	for _, f := range list {
		if f.Nome == nome {
			return true
		}
	}
	return false
}

func count(t *testing.T, m *Module) int {
	var n int
	require.NoError(t, m.db.QueryRow("SELECT COUNT(*) FROM feriados").Scan(&n))
	return n
}
