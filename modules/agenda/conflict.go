package agenda

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/internal/dateutil"
)

// TipoConflito classifies the outcome of a conflict check.
type TipoConflito string

const (
	ConflitoNenhum  TipoConflito = "nenhum"
	ConflitoHorario TipoConflito = "horario"
)

// Conflito identifies one record occupying the requested slot. For
// reservations Nome carries the responsible person, not the stated purpose.
type Conflito struct {
	Fonte      string             `json:"fonte"` // "evento" or "reserva"
	ID         string             `json:"id"`
	Nome       string             `json:"nome"`
	Data       dateutil.Date      `json:"data"`
	HoraInicio dateutil.TimeOfDay `json:"hora_inicio"`
	HoraFim    dateutil.TimeOfDay `json:"hora_fim"`
}

// ConflitoDiagnostico is the full result of a conflict check, listing every
// overlapping record so the caller can show what is blocking the slot.
type ConflitoDiagnostico struct {
	TemConflito bool         `json:"tem_conflito"`
	Tipo        TipoConflito `json:"tipo"`
	Conflitos   []*Conflito  `json:"conflitos"`
	Mensagem    string       `json:"mensagem"`
}

// CheckConflicts reports whether the slot [inicio, fim) at the venue on the
// given date collides with a confirmed event or reservation. excludeEventoID
// keeps an event's own saved slot from blocking its edit; pass "" otherwise.
//
// A nil diagnostic is only returned alongside an error. Query failures always
// propagate: a broken lookup must never read as a free slot.
func (m *Module) CheckConflicts(ctx context.Context, espacoID string, data dateutil.Date, inicio, fim dateutil.TimeOfDay, excludeEventoID string) (*ConflitoDiagnostico, error) {
	diag := &ConflitoDiagnostico{Tipo: ConflitoNenhum, Mensagem: "Sem conflitos"}

	rows, err := m.db.QueryContext(ctx, `
		SELECT id, nome, hora_inicio, hora_fim FROM eventos_agenda
		WHERE espaco_id = $1 AND data_evento = $2 AND status = 'confirmado' AND id != $3`,
		espacoID, data.String(), excludeEventoID)
	if err != nil {
		return nil, fmt.Errorf("querying events for conflicts: %w", err)
	}
	if err := m.collectConflicts(rows, "evento", data, inicio, fim, diag); err != nil {
		return nil, err
	}

	rows, err = m.db.QueryContext(ctx, `
		SELECT id, COALESCE(responsavel, finalidade, 'Reserva'), hora_inicio, hora_fim FROM reservas_espacos
		WHERE espaco_id = $1 AND data_reserva = $2 AND status = 'confirmada'`,
		espacoID, data.String())
	if err != nil {
		return nil, fmt.Errorf("querying reservations for conflicts: %w", err)
	}
	if err := m.collectConflicts(rows, "reserva", data, inicio, fim, diag); err != nil {
		return nil, err
	}

	if len(diag.Conflitos) > 0 {
		diag.TemConflito = true
		diag.Tipo = ConflitoHorario
		diag.Mensagem = "Existe um conflito de horário com outro evento ou reserva"
	}
	return diag, nil
}

// collectConflicts appends every row overlapping [inicio, fim) to the
// diagnostic. Rows without both times (all-day events) cannot overlap a timed
// slot and are passed over.
func (m *Module) collectConflicts(rows *sql.Rows, fonte string, data dateutil.Date, inicio, fim dateutil.TimeOfDay, diag *ConflitoDiagnostico) error {
	defer rows.Close()
	for rows.Next() {
		var id, nome string
		var horaInicio, horaFim *string
		if err := rows.Scan(&id, &nome, &horaInicio, &horaFim); err != nil {
			return err
		}
		if horaInicio == nil || horaFim == nil {
			continue
		}
		outroInicio, errI := dateutil.ParseTimeOfDay(*horaInicio)
		outroFim, errF := dateutil.ParseTimeOfDay(*horaFim)
		if errI != nil || errF != nil {
			continue
		}
		if dateutil.Overlaps(inicio, fim, outroInicio, outroFim) {
			diag.Conflitos = append(diag.Conflitos, &Conflito{
				Fonte:      fonte,
				ID:         id,
				Nome:       nome,
				Data:       data,
				HoraInicio: outroInicio,
				HoraFim:    outroFim,
			})
		}
	}
	return rows.Err()
}
