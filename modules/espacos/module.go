// Package espacos owns the physical venues that events and reservations can
// be scheduled into. Venues are reference data for the agenda: the scheduling
// core only reads them.
package espacos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/engine"
	"github.com/google/uuid"
)

const migration = `
CREATE TABLE IF NOT EXISTS espacos_fisicos (
    id TEXT PRIMARY KEY,
    created INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
    nome TEXT NOT NULL,
    descricao TEXT,
    capacidade INTEGER,
    localizacao TEXT,
    equipamentos TEXT NOT NULL DEFAULT '[]',
    ativo INTEGER NOT NULL DEFAULT 1
) STRICT;
`

// Espaco is a bookable physical space on church property.
type Espaco struct {
	ID           string   `json:"id"`
	Nome         string   `json:"nome"`
	Descricao    *string  `json:"descricao,omitempty"`
	Capacidade   *int64   `json:"capacidade,omitempty"`
	Localizacao  *string  `json:"localizacao,omitempty"`
	Equipamentos []string `json:"equipamentos"`
	Ativo        bool     `json:"ativo"`
}

type Module struct {
	db *sql.DB
}

func New(db *sql.DB) *Module {
	engine.MustMigrate(db, migration)
	return &Module{db: db}
}

func (m *Module) AttachRoutes(router *engine.Router) {
	router.HandleFunc("GET /espacos", router.WithAuthn(m.handleList))
	router.HandleFunc("POST /admin/espacos", router.WithLeadership(m.handleCreate))
	router.HandleFunc("POST /admin/espacos/{id}", router.WithLeadership(m.handleUpdate))
	router.HandleFunc("POST /admin/espacos/{id}/desativar", router.WithLeadership(m.handleDeactivate))
}

func (m *Module) handleList(w http.ResponseWriter, r *http.Request) {
	var (
		list []*Espaco
		err  error
	)
	if r.URL.Query().Get("todos") == "true" {
		list, err = m.listAll(r.Context())
	} else {
		list, err = m.ListAtivos(r.Context())
	}
	if engine.HandleError(w, err) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (m *Module) handleCreate(w http.ResponseWriter, r *http.Request) {
	esp, err := parseEspacoForm(r)
	if err != nil {
		engine.ClientError(w, "Dados Inválidos", err.Error(), http.StatusBadRequest)
		return
	}
	esp.ID = uuid.NewString()

	equip, _ := json.Marshal(esp.Equipamentos)
	_, err = m.db.ExecContext(r.Context(), `
		INSERT INTO espacos_fisicos (id, nome, descricao, capacidade, localizacao, equipamentos, ativo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		esp.ID, esp.Nome, esp.Descricao, esp.Capacidade, esp.Localizacao, string(equip), esp.Ativo)
	if engine.HandleError(w, err) {
		return
	}
	http.Redirect(w, r, "/agenda", http.StatusSeeOther)
}

func (m *Module) handleUpdate(w http.ResponseWriter, r *http.Request) {
	esp, err := parseEspacoForm(r)
	if err != nil {
		engine.ClientError(w, "Dados Inválidos", err.Error(), http.StatusBadRequest)
		return
	}

	equip, _ := json.Marshal(esp.Equipamentos)
	_, err = m.db.ExecContext(r.Context(), `
		UPDATE espacos_fisicos SET nome = $1, descricao = $2, capacidade = $3, localizacao = $4, equipamentos = $5, ativo = $6
		WHERE id = $7`,
		esp.Nome, esp.Descricao, esp.Capacidade, esp.Localizacao, string(equip), esp.Ativo, r.PathValue("id"))
	if engine.HandleError(w, err) {
		return
	}
	http.Redirect(w, r, "/agenda", http.StatusSeeOther)
}

// handleDeactivate hides a venue from new bookings without touching the
// events and reservations that reference it.
func (m *Module) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	_, err := m.db.ExecContext(r.Context(),
		"UPDATE espacos_fisicos SET ativo = 0 WHERE id = $1", r.PathValue("id"))
	if engine.HandleError(w, err) {
		return
	}
	http.Redirect(w, r, "/agenda", http.StatusSeeOther)
}

// ListAtivos returns the venues currently offered for scheduling.
func (m *Module) ListAtivos(ctx context.Context) ([]*Espaco, error) {
	return m.query(ctx, "SELECT id, nome, descricao, capacidade, localizacao, equipamentos, ativo FROM espacos_fisicos WHERE ativo = 1 ORDER BY nome")
}

func (m *Module) listAll(ctx context.Context) ([]*Espaco, error) {
	return m.query(ctx, "SELECT id, nome, descricao, capacidade, localizacao, equipamentos, ativo FROM espacos_fisicos ORDER BY nome")
}

// GetByID returns a single venue, or sql.ErrNoRows.
func (m *Module) GetByID(ctx context.Context, id string) (*Espaco, error) {
	row := m.db.QueryRowContext(ctx,
		"SELECT id, nome, descricao, capacidade, localizacao, equipamentos, ativo FROM espacos_fisicos WHERE id = $1", id)
	return scanEspaco(row)
}

// Nome returns the venue name, or the empty string when the venue is unknown.
func (m *Module) Nome(ctx context.Context, id string) string {
	var nome string
	if err := m.db.QueryRowContext(ctx, "SELECT nome FROM espacos_fisicos WHERE id = $1", id).Scan(&nome); err != nil {
		return ""
	}
	return nome
}

func (m *Module) query(ctx context.Context, q string, args ...any) ([]*Espaco, error) {
	rows, err := m.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Espaco
	for rows.Next() {
		esp, err := scanEspaco(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, esp)
	}
	return list, rows.Err()
}

type scanner interface{ Scan(...any) error }

func scanEspaco(row scanner) (*Espaco, error) {
	esp := &Espaco{}
	var equip string
	err := row.Scan(&esp.ID, &esp.Nome, &esp.Descricao, &esp.Capacidade, &esp.Localizacao, &equip, &esp.Ativo)
	if err != nil {
		return nil, err
	}
	if json.Unmarshal([]byte(equip), &esp.Equipamentos) != nil {
		esp.Equipamentos = nil
	}
	return esp, nil
}

func parseEspacoForm(r *http.Request) (*Espaco, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	esp := &Espaco{Ativo: r.FormValue("ativo") != "false"}

	esp.Nome = strings.TrimSpace(r.FormValue("nome"))
	if esp.Nome == "" {
		return nil, errorf("O nome do espaço é obrigatório")
	}

	if v := strings.TrimSpace(r.FormValue("descricao")); v != "" {
		esp.Descricao = &v
	}
	if v := strings.TrimSpace(r.FormValue("localizacao")); v != "" {
		esp.Localizacao = &v
	}
	if v := r.FormValue("capacidade"); v != "" {
		cap, err := strconv.ParseInt(v, 10, 64)
		if err != nil || cap < 0 {
			return nil, errorf("Capacidade inválida")
		}
		esp.Capacidade = &cap
	}

	// Equipment arrives as one value per item, blank items dropped.
	for _, item := range r.Form["equipamentos"] {
		if item = strings.TrimSpace(item); item != "" {
			esp.Equipamentos = append(esp.Equipamentos, item)
		}
	}
	return esp, nil
}

type formError string

func (e formError) Error() string { return string(e) }

func errorf(format string, args ...any) error {
	return formError(fmt.Sprintf(format, args...))
}
