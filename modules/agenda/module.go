// Package agenda is the scheduling core: church events, space reservations,
// the monthly calendar grid and the double-booking detector all live here so
// that a single conflict check can see both events and reservations.
package agenda

import (
	"database/sql"
	"net/url"

	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/engine"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/espacos"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/feriados"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/pessoas"
)

const migration = `
CREATE TABLE IF NOT EXISTS eventos_agenda (
    id TEXT PRIMARY KEY,
    created INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
    nome TEXT NOT NULL,
    descricao TEXT,
    data_evento TEXT NOT NULL,
    data_fim TEXT,
    hora_inicio TEXT,
    hora_fim TEXT,
    dia_inteiro INTEGER NOT NULL DEFAULT 0,
    espaco_id TEXT,
    responsavel_id TEXT,
    status TEXT NOT NULL DEFAULT 'confirmado',
    observacoes TEXT,
    criado_por TEXT
) STRICT;

CREATE INDEX IF NOT EXISTS eventos_agenda_espaco_data ON eventos_agenda (espaco_id, data_evento);

CREATE TABLE IF NOT EXISTS evento_participantes (
    evento_id TEXT NOT NULL,
    pessoa_id TEXT NOT NULL,
    PRIMARY KEY (evento_id, pessoa_id)
) STRICT;

CREATE TABLE IF NOT EXISTS reservas_espacos (
    id TEXT PRIMARY KEY,
    created INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
    espaco_id TEXT NOT NULL,
    data_reserva TEXT NOT NULL,
    hora_inicio TEXT NOT NULL,
    hora_fim TEXT NOT NULL,
    finalidade TEXT,
    responsavel TEXT,
    status TEXT NOT NULL DEFAULT 'confirmada',
    valor_locacao INTEGER,
    pago INTEGER NOT NULL DEFAULT 0,
    stripe_session_id TEXT
) STRICT;

CREATE INDEX IF NOT EXISTS reservas_espacos_espaco_data ON reservas_espacos (espaco_id, data_reserva);
`

type Module struct {
	db       *sql.DB
	self     *url.URL
	espacos  *espacos.Module
	feriados *feriados.Module
	pessoas  *pessoas.Module
}

func New(db *sql.DB, self *url.URL, esp *espacos.Module, fer *feriados.Module, pes *pessoas.Module) *Module {
	engine.MustMigrate(db, migration)
	return &Module{db: db, self: self, espacos: esp, feriados: fer, pessoas: pes}
}

func (m *Module) AttachRoutes(router *engine.Router) {
	router.HandleFunc("GET /", router.WithAuthn(m.handleIndex))
	router.HandleFunc("GET /agenda", router.WithAuthn(m.handleCalendarPage))
	router.HandleFunc("GET /agenda/grade", router.WithAuthn(m.handleCalendarJSON))
	router.HandleFunc("GET /agenda/disponibilidade", router.WithAuthn(m.handleAvailability))
	router.HandleFunc("GET /agenda/ical", m.handleICal)

	router.HandleFunc("GET /eventos/novo", router.WithLeadership(m.handleEventoForm))
	router.HandleFunc("POST /eventos", router.WithLeadership(m.handleEventoCreate))
	router.HandleFunc("GET /eventos/{id}", router.WithAuthn(m.handleEventoDetail))
	router.HandleFunc("GET /eventos/{id}/editar", router.WithLeadership(m.handleEventoEditForm))
	router.HandleFunc("POST /eventos/{id}", router.WithLeadership(m.handleEventoUpdate))
	router.HandleFunc("POST /eventos/{id}/excluir", router.WithLeadership(m.handleEventoDelete))

	router.HandleFunc("GET /reservas/nova", router.WithAuthn(m.handleReservaForm))
	router.HandleFunc("POST /reservas", router.WithAuthn(m.handleReservaCreate))
	router.HandleFunc("GET /reservas", router.WithAuthn(m.handleReservaList))
	router.HandleFunc("POST /reservas/{id}/cancelar", router.WithLeadership(m.handleReservaCancel))
}
