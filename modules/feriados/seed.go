package feriados

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed feriados_nacionais.yaml
var seedYAML []byte

type seedEntry struct {
	Nome string `yaml:"nome"`
	Tipo string `yaml:"tipo"`
	Mes  int    `yaml:"mes"`
	Dia  int    `yaml:"dia"`
}

// seed loads the bundled national holiday list into an empty feriados table.
// A table with any rows at all is left alone so removals stick.
func (m *Module) seed(ctx context.Context) error {
	var count int
	if err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feriados").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var entries []seedEntry
	if err := yaml.Unmarshal(seedYAML, &entries); err != nil {
		return fmt.Errorf("parsing holiday seed: %w", err)
	}

	for _, e := range entries {
		tipo, ok := parseTipo(e.Tipo)
		if !ok {
			return fmt.Errorf("holiday seed %q has unknown tipo %q", e.Nome, e.Tipo)
		}
		_, err := m.db.ExecContext(ctx, `
			INSERT INTO feriados (id, nome, tipo, recorrente, mes, dia) VALUES ($1, $2, $3, 1, $4, $5)`,
			uuid.NewString(), e.Nome, string(tipo), e.Mes, e.Dia)
		if err != nil {
			return err
		}
	}
	return nil
}
