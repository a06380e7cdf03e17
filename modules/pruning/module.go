// Package pruning periodically deletes scheduling records that no longer
// matter: cancelled events and reservations past a retention window, and
// participant rows whose event is gone.
package pruning

import (
	"database/sql"
	"time"

	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/engine"
)

// Cancelled records stay visible for a season before being removed.
const retention = 90 * 24 * time.Hour

type Module struct {
	db *sql.DB
}

func New(db *sql.DB) *Module {
	return &Module{db: db}
}

func (m *Module) AttachWorkers(mgr *engine.ProcMgr) {
	cutoff := int64(retention / time.Second)
	mgr.Add(engine.Poll(time.Hour, engine.Cleanup(m.db, "cancelled events",
		"DELETE FROM eventos_agenda WHERE status = 'cancelado' AND created < strftime('%s', 'now') - $1", cutoff)))
	mgr.Add(engine.Poll(time.Hour, engine.Cleanup(m.db, "cancelled reservations",
		"DELETE FROM reservas_espacos WHERE status = 'cancelada' AND created < strftime('%s', 'now') - $1", cutoff)))
	mgr.Add(engine.Poll(time.Hour, engine.Cleanup(m.db, "orphaned participants",
		"DELETE FROM evento_participantes WHERE evento_id NOT IN (SELECT id FROM eventos_agenda)")))
}
