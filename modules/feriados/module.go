// Package feriados owns the holiday reference data shown on the agenda grid.
// Holidays are either fixed to a single date or recur yearly on a month/day
// pair; recurring entries are expanded into concrete dates per year.
package feriados

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/engine"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/internal/dateutil"
	"github.com/google/uuid"
)

const migration = `
CREATE TABLE IF NOT EXISTS feriados (
    id TEXT PRIMARY KEY,
    created INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
    data TEXT,
    nome TEXT NOT NULL,
    tipo TEXT NOT NULL DEFAULT 'nacional',
    recorrente INTEGER NOT NULL DEFAULT 0,
    mes INTEGER,
    dia INTEGER
) STRICT;
`

// Tipo classifies a holiday.
type Tipo string

const (
	TipoNacional  Tipo = "nacional"
	TipoEstadual  Tipo = "estadual"
	TipoMunicipal Tipo = "municipal"
	TipoReligioso Tipo = "religioso"
)

func parseTipo(s string) (Tipo, bool) {
	switch t := Tipo(s); t {
	case TipoNacional, TipoEstadual, TipoMunicipal, TipoReligioso:
		return t, true
	}
	return "", false
}

// Feriado is a holiday resolved to a concrete calendar date.
type Feriado struct {
	ID         string        `json:"id"`
	Data       dateutil.Date `json:"-"`
	DataISO    string        `json:"data"`
	Nome       string        `json:"nome"`
	Tipo       Tipo          `json:"tipo"`
	Recorrente bool          `json:"recorrente"`
}

type Module struct {
	db *sql.DB
}

func New(db *sql.DB) *Module {
	engine.MustMigrate(db, migration)
	m := &Module{db: db}
	if err := m.seed(context.Background()); err != nil {
		slog.Error("seeding holidays failed", "error", err)
	}
	return m
}

func (m *Module) AttachRoutes(router *engine.Router) {
	router.HandleFunc("GET /feriados", router.WithAuthn(m.handleList))
	router.HandleFunc("POST /admin/feriados", router.WithLeadership(m.handleCreate))
	router.HandleFunc("POST /admin/feriados/{id}/excluir", router.WithLeadership(m.handleDelete))
}

func (m *Module) handleList(w http.ResponseWriter, r *http.Request) {
	ano := time.Now().Year()
	if v := r.URL.Query().Get("ano"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1900 || parsed > 2100 {
			engine.ClientError(w, "Ano Inválido", "Informe um ano entre 1900 e 2100", http.StatusBadRequest)
			return
		}
		ano = parsed
	}

	list, err := m.ForYear(r.Context(), ano)
	if engine.HandleError(w, err) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (m *Module) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		engine.ClientError(w, "Dados Inválidos", err.Error(), http.StatusBadRequest)
		return
	}

	nome := strings.TrimSpace(r.FormValue("nome"))
	if nome == "" {
		engine.ClientError(w, "Dados Inválidos", "O nome do feriado é obrigatório", http.StatusBadRequest)
		return
	}
	tipo, ok := parseTipo(r.FormValue("tipo"))
	if !ok {
		engine.ClientError(w, "Dados Inválidos", "Tipo de feriado desconhecido", http.StatusBadRequest)
		return
	}

	if r.FormValue("recorrente") == "true" {
		mes, errM := strconv.Atoi(r.FormValue("mes"))
		dia, errD := strconv.Atoi(r.FormValue("dia"))
		if errM != nil || errD != nil || mes < 1 || mes > 12 || dia < 1 || dia > 31 {
			engine.ClientError(w, "Dados Inválidos", "Mês/dia de recorrência inválidos", http.StatusBadRequest)
			return
		}
		_, err := m.db.ExecContext(r.Context(), `
			INSERT INTO feriados (id, nome, tipo, recorrente, mes, dia) VALUES ($1, $2, $3, 1, $4, $5)`,
			uuid.NewString(), nome, string(tipo), mes, dia)
		if engine.HandleError(w, err) {
			return
		}
	} else {
		data, err := dateutil.ParseDate(r.FormValue("data"))
		if err != nil {
			engine.ClientError(w, "Dados Inválidos", "Data inválida (use AAAA-MM-DD)", http.StatusBadRequest)
			return
		}
		_, err = m.db.ExecContext(r.Context(), `
			INSERT INTO feriados (id, data, nome, tipo, recorrente) VALUES ($1, $2, $3, $4, 0)`,
			uuid.NewString(), data.String(), nome, string(tipo))
		if engine.HandleError(w, err) {
			return
		}
	}
	http.Redirect(w, r, "/agenda", http.StatusSeeOther)
}

func (m *Module) handleDelete(w http.ResponseWriter, r *http.Request) {
	_, err := m.db.ExecContext(r.Context(), "DELETE FROM feriados WHERE id = $1", r.PathValue("id"))
	if engine.HandleError(w, err) {
		return
	}
	http.Redirect(w, r, "/agenda", http.StatusSeeOther)
}

// ForYear returns every holiday falling in the given year, with recurring
// entries expanded to that year's concrete date. Rows with malformed dates
// are skipped rather than failing the whole listing.
func (m *Module) ForYear(ctx context.Context, ano int) ([]*Feriado, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT id, data, nome, tipo, recorrente, mes, dia FROM feriados")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Feriado
	for rows.Next() {
		var (
			f          Feriado
			data       *string
			tipo       string
			recorrente bool
			mes, dia   *int64
		)
		if err := rows.Scan(&f.ID, &data, &f.Nome, &tipo, &recorrente, &mes, &dia); err != nil {
			return nil, err
		}
		f.Tipo = Tipo(tipo)
		f.Recorrente = recorrente

		if recorrente {
			if mes == nil || dia == nil {
				continue
			}
			d := dateutil.NewDate(ano, time.Month(*mes), int(*dia))
			if d.Year != ano || int(d.Month) != int(*mes) {
				continue // e.g. Feb 30 rolled over
			}
			f.Data = d
		} else {
			if data == nil {
				continue
			}
			d, err := dateutil.ParseDate(*data)
			if err != nil {
				slog.Warn("skipping holiday with malformed date", "id", f.ID, "data", *data)
				continue
			}
			if d.Year != ano {
				continue
			}
			f.Data = d
		}
		f.DataISO = f.Data.String()
		list = append(list, &f)
	}
	return list, rows.Err()
}

// ForRange returns the holidays for every year touched by the inclusive date
// range, as needed by a calendar grid that bleeds into adjacent years.
func (m *Module) ForRange(ctx context.Context, first, last dateutil.Date) ([]*Feriado, error) {
	var list []*Feriado
	for ano := first.Year; ano <= last.Year; ano++ {
		part, err := m.ForYear(ctx, ano)
		if err != nil {
			return nil, err
		}
		list = append(list, part...)
	}
	return list, nil
}
