package pruning

import (
	"context"
	"database/sql"
	"net/url"
	"testing"
	"time"

	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/engine"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/agenda"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/espacos"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/feriados"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/pessoas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruning(t *testing.T) {
	db := engine.OpenTestDB(t)
	self, err := url.Parse("http://localhost:8080")
	require.NoError(t, err)
	agenda.New(db, self, espacos.New(db), feriados.New(db), pessoas.New(db))
	m := New(db)

	// One stale cancelled event, one recent one, one confirmed, plus an
	// orphaned participant row.
	_, err = db.Exec(`
		INSERT INTO eventos_agenda (id, nome, data_evento, status, created) VALUES
		  ('velho', 'Velho', '2024-01-01', 'cancelado', strftime('%s', 'now') - 60*60*24*120),
		  ('recente', 'Recente', '2025-03-01', 'cancelado', strftime('%s', 'now')),
		  ('ativo', 'Ativo', '2025-03-01', 'confirmado', strftime('%s', 'now') - 60*60*24*120)`)
	require.NoError(t, err)
	_, err = db.Exec(`
		INSERT INTO reservas_espacos (id, espaco_id, data_reserva, hora_inicio, hora_fim, status, created) VALUES
		  ('rv', 'salao', '2024-01-01', '10:00', '12:00', 'cancelada', strftime('%s', 'now') - 60*60*24*120),
		  ('rn', 'salao', '2025-03-01', '10:00', '12:00', 'confirmada', strftime('%s', 'now') - 60*60*24*120)`)
	require.NoError(t, err)
	_, err = db.Exec(`
		INSERT INTO evento_participantes (evento_id, pessoa_id) VALUES
		  ('ativo', 'p1'), ('sumido', 'p1')`)
	require.NoError(t, err)

	mgr := &engine.ProcMgr{}
	m.AttachWorkers(mgr)

	// Each poller runs its cleanup once on startup; Run returns when the
	// context expires.
	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()
	mgr.Run(ctx)

	assert.ElementsMatch(t, []string{"recente", "ativo"}, ids(t, db, "SELECT id FROM eventos_agenda"))
	assert.ElementsMatch(t, []string{"rn"}, ids(t, db, "SELECT id FROM reservas_espacos"))
	assert.ElementsMatch(t, []string{"ativo"}, ids(t, db, "SELECT evento_id FROM evento_participantes"))
}

func ids(t *testing.T, db *sql.DB, query string) []string {
	rows, err := db.Query(query)
	require.NoError(t, err)
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		out = append(out, id)
	}
	return out
}
