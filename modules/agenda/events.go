package agenda

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/engine"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/internal/dateutil"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/auth"
	"github.com/google/uuid"
)

// StatusEvento is the lifecycle state of an event.
type StatusEvento string

const (
	EventoConfirmado StatusEvento = "confirmado"
	EventoPendente   StatusEvento = "pendente"
	EventoCancelado  StatusEvento = "cancelado"
)

func parseStatusEvento(s string) (StatusEvento, bool) {
	switch st := StatusEvento(s); st {
	case EventoConfirmado, EventoPendente, EventoCancelado:
		return st, true
	}
	return "", false
}

// Evento is a scheduled church event. DataFim is zero for single-day events;
// HoraInicio/HoraFim are nil when DiaInteiro is set.
type Evento struct {
	ID            string              `json:"id"`
	Nome          string              `json:"nome"`
	Descricao     *string             `json:"descricao,omitempty"`
	DataEvento    dateutil.Date       `json:"data_evento"`
	DataFim       dateutil.Date       `json:"data_fim,omitzero"`
	HoraInicio    *dateutil.TimeOfDay `json:"hora_inicio,omitempty"`
	HoraFim       *dateutil.TimeOfDay `json:"hora_fim,omitempty"`
	DiaInteiro    bool                `json:"dia_inteiro"`
	EspacoID      *string             `json:"espaco_id,omitempty"`
	ResponsavelID *string             `json:"responsavel_id,omitempty"`
	Status        StatusEvento        `json:"status"`
	Observacoes   *string             `json:"observacoes,omitempty"`
	CriadoPor     *string             `json:"criado_por,omitempty"`
	Participantes []string            `json:"participantes,omitempty"`
}

const eventoColumns = "id, nome, descricao, data_evento, data_fim, hora_inicio, hora_fim, dia_inteiro, espaco_id, responsavel_id, status, observacoes, criado_por"

type scanner interface{ Scan(...any) error }

// scanEvento converts a row into an Evento, returning errSkipRow for rows
// whose stored dates or times no longer parse. Skipping at the scan boundary
// keeps one corrupt row from blanking the whole calendar.
var errSkipRow = errors.New("row skipped")

func scanEvento(row scanner) (*Evento, error) {
	e := &Evento{}
	var dataEvento string
	var dataFim, horaInicio, horaFim *string
	err := row.Scan(&e.ID, &e.Nome, &e.Descricao, &dataEvento, &dataFim, &horaInicio, &horaFim,
		&e.DiaInteiro, &e.EspacoID, &e.ResponsavelID, &e.Status, &e.Observacoes, &e.CriadoPor)
	if err != nil {
		return nil, err
	}

	if e.DataEvento, err = dateutil.ParseDate(dataEvento); err != nil {
		slog.Warn("skipping event with malformed date", "id", e.ID, "data_evento", dataEvento)
		return nil, errSkipRow
	}
	if dataFim != nil {
		if e.DataFim, err = dateutil.ParseDate(*dataFim); err != nil {
			slog.Warn("skipping event with malformed end date", "id", e.ID, "data_fim", *dataFim)
			return nil, errSkipRow
		}
	}
	if horaInicio != nil {
		t, err := dateutil.ParseTimeOfDay(*horaInicio)
		if err != nil {
			slog.Warn("skipping event with malformed time", "id", e.ID, "hora_inicio", *horaInicio)
			return nil, errSkipRow
		}
		e.HoraInicio = &t
	}
	if horaFim != nil {
		t, err := dateutil.ParseTimeOfDay(*horaFim)
		if err != nil {
			slog.Warn("skipping event with malformed time", "id", e.ID, "hora_fim", *horaFim)
			return nil, errSkipRow
		}
		e.HoraFim = &t
	}
	return e, nil
}

// EventosNoPeriodo returns non-cancelled events touching the inclusive date
// range. Multi-day events match when any of their days falls inside it.
func (m *Module) EventosNoPeriodo(ctx context.Context, first, last dateutil.Date) ([]*Evento, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+eventoColumns+` FROM eventos_agenda
		WHERE data_evento <= $1 AND COALESCE(data_fim, data_evento) >= $2 AND status != 'cancelado'
		ORDER BY data_evento, hora_inicio`,
		last.String(), first.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Evento
	for rows.Next() {
		e, err := scanEvento(rows)
		if errors.Is(err, errSkipRow) {
			continue
		}
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// GetEvento returns an event with its participant list, or sql.ErrNoRows.
func (m *Module) GetEvento(ctx context.Context, id string) (*Evento, error) {
	e, err := scanEvento(m.db.QueryRowContext(ctx,
		"SELECT "+eventoColumns+" FROM eventos_agenda WHERE id = $1", id))
	if err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx,
		"SELECT pessoa_id FROM evento_participantes WHERE evento_id = $1", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var pid string
		if err := rows.Scan(&pid); err != nil {
			return nil, err
		}
		e.Participantes = append(e.Participantes, pid)
	}
	return e, rows.Err()
}

func (m *Module) handleEventoCreate(w http.ResponseWriter, r *http.Request) {
	e, err := parseEventoForm(r)
	if err != nil {
		engine.ClientError(w, "Dados Inválidos", err.Error(), http.StatusBadRequest)
		return
	}
	e.ID = uuid.NewString()
	if meta := auth.GetUserMeta(r.Context()); meta != nil {
		e.CriadoPor = &meta.Email
	}

	if m.rejectOnConflict(w, r, e, "") {
		return
	}

	err = m.saveEvento(r.Context(), e, false)
	if engine.HandleError(w, err) {
		return
	}
	http.Redirect(w, r, "/eventos/"+e.ID, http.StatusSeeOther)
}

func (m *Module) handleEventoUpdate(w http.ResponseWriter, r *http.Request) {
	e, err := parseEventoForm(r)
	if err != nil {
		engine.ClientError(w, "Dados Inválidos", err.Error(), http.StatusBadRequest)
		return
	}
	e.ID = r.PathValue("id")

	// Editing an event must not collide with the event's own saved slot.
	if m.rejectOnConflict(w, r, e, e.ID) {
		return
	}

	err = m.saveEvento(r.Context(), e, true)
	if errors.Is(err, sql.ErrNoRows) {
		engine.ClientError(w, "Não Encontrado", "Evento não encontrado", http.StatusNotFound)
		return
	}
	if engine.HandleError(w, err) {
		return
	}
	http.Redirect(w, r, "/eventos/"+e.ID, http.StatusSeeOther)
}

// rejectOnConflict runs the venue conflict check when the event occupies a
// venue at a concrete time slot. It writes the response and returns true when
// the request must not proceed.
func (m *Module) rejectOnConflict(w http.ResponseWriter, r *http.Request, e *Evento, excludeID string) bool {
	if e.EspacoID == nil || e.HoraInicio == nil || e.HoraFim == nil || e.Status == EventoCancelado {
		return false
	}
	diag, err := m.CheckConflicts(r.Context(), *e.EspacoID, e.DataEvento, *e.HoraInicio, *e.HoraFim, excludeID)
	if engine.HandleError(w, err) {
		return true
	}
	if diag.TemConflito {
		engine.ClientError(w, "Conflito de Agendamento", diag.Mensagem, http.StatusConflict)
		return true
	}
	return false
}

func (m *Module) saveEvento(ctx context.Context, e *Evento, update bool) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var dataFim, horaInicio, horaFim *string
	if !e.DataFim.IsZero() {
		s := e.DataFim.String()
		dataFim = &s
	}
	if e.HoraInicio != nil {
		s := e.HoraInicio.String()
		horaInicio = &s
	}
	if e.HoraFim != nil {
		s := e.HoraFim.String()
		horaFim = &s
	}

	if update {
		res, err := tx.ExecContext(ctx, `
			UPDATE eventos_agenda SET nome = $1, descricao = $2, data_evento = $3, data_fim = $4,
			  hora_inicio = $5, hora_fim = $6, dia_inteiro = $7, espaco_id = $8, responsavel_id = $9,
			  status = $10, observacoes = $11
			WHERE id = $12`,
			e.Nome, e.Descricao, e.DataEvento.String(), dataFim, horaInicio, horaFim,
			e.DiaInteiro, e.EspacoID, e.ResponsavelID, string(e.Status), e.Observacoes, e.ID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return sql.ErrNoRows
		}
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO eventos_agenda (id, nome, descricao, data_evento, data_fim, hora_inicio, hora_fim, dia_inteiro, espaco_id, responsavel_id, status, observacoes, criado_por)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			e.ID, e.Nome, e.Descricao, e.DataEvento.String(), dataFim, horaInicio, horaFim,
			e.DiaInteiro, e.EspacoID, e.ResponsavelID, string(e.Status), e.Observacoes, e.CriadoPor)
		if err != nil {
			return err
		}
	}

	// Participants are replaced wholesale on every save.
	if _, err := tx.ExecContext(ctx, "DELETE FROM evento_participantes WHERE evento_id = $1", e.ID); err != nil {
		return err
	}
	for _, pid := range e.Participantes {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO evento_participantes (evento_id, pessoa_id) VALUES ($1, $2)", e.ID, pid)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (m *Module) handleEventoDelete(w http.ResponseWriter, r *http.Request) {
	tx, err := m.db.BeginTx(r.Context(), nil)
	if engine.HandleError(w, err) {
		return
	}
	defer tx.Rollback()

	id := r.PathValue("id")
	if _, err := tx.ExecContext(r.Context(), "DELETE FROM evento_participantes WHERE evento_id = $1", id); err != nil {
		engine.HandleError(w, err)
		return
	}
	if _, err := tx.ExecContext(r.Context(), "DELETE FROM eventos_agenda WHERE id = $1", id); err != nil {
		engine.HandleError(w, err)
		return
	}
	if engine.HandleError(w, tx.Commit()) {
		return
	}
	http.Redirect(w, r, "/agenda", http.StatusSeeOther)
}

func parseEventoForm(r *http.Request) (*Evento, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	e := &Evento{Status: EventoConfirmado}

	e.Nome = strings.TrimSpace(r.FormValue("nome"))
	if e.Nome == "" {
		return nil, errorf("O nome do evento é obrigatório")
	}

	var err error
	if e.DataEvento, err = dateutil.ParseDate(r.FormValue("data_evento")); err != nil {
		return nil, errorf("Data do evento inválida (use AAAA-MM-DD)")
	}
	if v := r.FormValue("data_fim"); v != "" {
		if e.DataFim, err = dateutil.ParseDate(v); err != nil {
			return nil, errorf("Data final inválida (use AAAA-MM-DD)")
		}
		if e.DataFim.Before(e.DataEvento) {
			return nil, errorf("A data final não pode ser anterior à data do evento")
		}
	}

	e.DiaInteiro = r.FormValue("dia_inteiro") == "true"
	if !e.DiaInteiro {
		inicio, errI := dateutil.ParseTimeOfDay(r.FormValue("hora_inicio"))
		fim, errF := dateutil.ParseTimeOfDay(r.FormValue("hora_fim"))
		if errI != nil || errF != nil {
			return nil, errorf("Horários inválidos (use HH:MM)")
		}
		// Cross-midnight slots are not representable; schedule them as
		// multi-day all-day events instead.
		if inicio >= fim {
			return nil, errorf("O horário de início deve ser anterior ao horário de término")
		}
		e.HoraInicio, e.HoraFim = &inicio, &fim
	}

	if v := r.FormValue("status"); v != "" {
		st, ok := parseStatusEvento(v)
		if !ok {
			return nil, errorf("Status de evento desconhecido: %q", v)
		}
		e.Status = st
	}

	if v := strings.TrimSpace(r.FormValue("descricao")); v != "" {
		e.Descricao = &v
	}
	if v := strings.TrimSpace(r.FormValue("observacoes")); v != "" {
		e.Observacoes = &v
	}
	if v := strings.TrimSpace(r.FormValue("espaco_id")); v != "" {
		e.EspacoID = &v
	}
	if v := strings.TrimSpace(r.FormValue("responsavel_id")); v != "" {
		e.ResponsavelID = &v
	}
	for _, pid := range r.Form["participantes"] {
		if pid = strings.TrimSpace(pid); pid != "" {
			e.Participantes = append(e.Participantes, pid)
		}
	}
	return e, nil
}

type formError string

func (e formError) Error() string { return string(e) }

func errorf(format string, args ...any) error {
	return formError(fmt.Sprintf(format, args...))
}
