// Package pessoas keeps the people directory that event participants are
// drawn from. The full membership screens live elsewhere; the agenda only
// needs names and contact details.
package pessoas

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/engine"
	"github.com/google/uuid"
)

const migration = `
CREATE TABLE IF NOT EXISTS pessoas (
    id TEXT PRIMARY KEY,
    created INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
    nome_completo TEXT NOT NULL,
    email TEXT,
    telefone TEXT,
    ativo INTEGER NOT NULL DEFAULT 1
) STRICT;
`

type Pessoa struct {
	ID           string  `json:"id"`
	NomeCompleto string  `json:"nome_completo"`
	Email        *string `json:"email,omitempty"`
	Telefone     *string `json:"telefone,omitempty"`
	Ativo        bool    `json:"ativo"`
}

type Module struct {
	db *sql.DB
}

func New(db *sql.DB) *Module {
	engine.MustMigrate(db, migration)
	return &Module{db: db}
}

func (m *Module) AttachRoutes(router *engine.Router) {
	router.HandleFunc("GET /pessoas", router.WithAuthn(m.handleList))
	router.HandleFunc("POST /admin/pessoas", router.WithLeadership(m.handleCreate))
	router.HandleFunc("POST /admin/pessoas/{id}/desativar", router.WithLeadership(m.handleDeactivate))
}

func (m *Module) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := m.ListAtivas(r.Context())
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
	nome := strings.TrimSpace(r.FormValue("nome_completo"))
	if nome == "" {
		engine.ClientError(w, "Dados Inválidos", "O nome completo é obrigatório", http.StatusBadRequest)
		return
	}

	var email, telefone *string
	if v := strings.TrimSpace(r.FormValue("email")); v != "" {
		email = &v
	}
	if v := strings.TrimSpace(r.FormValue("telefone")); v != "" {
		telefone = &v
	}

	_, err := m.db.ExecContext(r.Context(), `
		INSERT INTO pessoas (id, nome_completo, email, telefone) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), nome, email, telefone)
	if engine.HandleError(w, err) {
		return
	}
	http.Redirect(w, r, "/agenda", http.StatusSeeOther)
}

func (m *Module) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	_, err := m.db.ExecContext(r.Context(), "UPDATE pessoas SET ativo = 0 WHERE id = $1", r.PathValue("id"))
	if engine.HandleError(w, err) {
		return
	}
	http.Redirect(w, r, "/agenda", http.StatusSeeOther)
}

// ListAtivas returns people eligible to be invited to events.
func (m *Module) ListAtivas(ctx context.Context) ([]*Pessoa, error) {
	rows, err := m.db.QueryContext(ctx,
		"SELECT id, nome_completo, email, telefone, ativo FROM pessoas WHERE ativo = 1 ORDER BY nome_completo")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Pessoa
	for rows.Next() {
		p := &Pessoa{}
		if err := rows.Scan(&p.ID, &p.NomeCompleto, &p.Email, &p.Telefone, &p.Ativo); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
