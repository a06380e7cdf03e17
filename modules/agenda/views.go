package agenda

import (
	"database/sql"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/engine"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/internal/dateutil"
)

func (m *Module) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/agenda", http.StatusFound)
}

// parseMonthQuery reads ?ano= and ?mes=, defaulting to the current month.
func parseMonthQuery(r *http.Request, hoje dateutil.Date) (int, time.Month, error) {
	ano, mes := hoje.Year, hoje.Month
	if v := r.URL.Query().Get("ano"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1900 || parsed > 2100 {
			return 0, 0, errorf("Ano inválido")
		}
		ano = parsed
	}
	if v := r.URL.Query().Get("mes"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			return 0, 0, errorf("Mês inválido (1 a 12)")
		}
		mes = time.Month(parsed)
	}
	return ano, mes, nil
}

func (m *Module) handleCalendarJSON(w http.ResponseWriter, r *http.Request) {
	hoje := dateutil.DateOf(time.Now().In(icalLocation))
	ano, mes, err := parseMonthQuery(r, hoje)
	if err != nil {
		engine.ClientError(w, "Dados Inválidos", err.Error(), http.StatusBadRequest)
		return
	}

	month, err := m.monthGrid(r.Context(), ano, mes, hoje)
	if engine.HandleError(w, err) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(month)
}

// handleAvailability answers "is this slot free?" for the booking forms,
// returning the full diagnostic so the UI can say what is in the way.
func (m *Module) handleAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	espacoID := q.Get("espaco")
	if espacoID == "" {
		engine.ClientError(w, "Dados Inválidos", "Informe o espaço", http.StatusBadRequest)
		return
	}
	data, err := dateutil.ParseDate(q.Get("data"))
	if err != nil {
		engine.ClientError(w, "Dados Inválidos", "Data inválida (use AAAA-MM-DD)", http.StatusBadRequest)
		return
	}
	inicio, errI := dateutil.ParseTimeOfDay(q.Get("inicio"))
	fim, errF := dateutil.ParseTimeOfDay(q.Get("fim"))
	if errI != nil || errF != nil || inicio >= fim {
		engine.ClientError(w, "Dados Inválidos", "Horários inválidos (use HH:MM, início antes do término)", http.StatusBadRequest)
		return
	}

	diag, err := m.CheckConflicts(r.Context(), espacoID, data, inicio, fim, q.Get("excluir_evento"))
	if engine.HandleError(w, err) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(diag)
}

func (m *Module) handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	hoje := dateutil.DateOf(time.Now().In(icalLocation))
	ano, mes, err := parseMonthQuery(r, hoje)
	if err != nil {
		engine.ClientError(w, "Dados Inválidos", err.Error(), http.StatusBadRequest)
		return
	}

	month, err := m.monthGrid(r.Context(), ano, mes, hoje)
	if engine.HandleError(w, err) {
		return
	}

	anterior := dateutil.NewDate(ano, mes-1, 1)
	proximo := dateutil.NewDate(ano, mes+1, 1)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	calendarTemplate.Execute(w, map[string]any{
		"Month":    month,
		"Anterior": anterior,
		"Proximo":  proximo,
		"Semana":   []string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"},
	})
}

func (m *Module) handleEventoForm(w http.ResponseWriter, r *http.Request) {
	m.renderEventoForm(w, r, &Evento{Status: EventoConfirmado})
}

func (m *Module) handleEventoEditForm(w http.ResponseWriter, r *http.Request) {
	e, err := m.GetEvento(r.Context(), r.PathValue("id"))
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, errSkipRow) {
		engine.ClientError(w, "Não Encontrado", "Evento não encontrado", http.StatusNotFound)
		return
	}
	if engine.HandleError(w, err) {
		return
	}
	m.renderEventoForm(w, r, e)
}

func (m *Module) renderEventoForm(w http.ResponseWriter, r *http.Request, e *Evento) {
	espacosList, err := m.espacos.ListAtivos(r.Context())
	if engine.HandleError(w, err) {
		return
	}
	pessoasList, err := m.pessoas.ListAtivas(r.Context())
	if engine.HandleError(w, err) {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	eventoFormTemplate.Execute(w, map[string]any{
		"Evento":  e,
		"Espacos": espacosList,
		"Pessoas": pessoasList,
	})
}

func (m *Module) handleEventoDetail(w http.ResponseWriter, r *http.Request) {
	e, err := m.GetEvento(r.Context(), r.PathValue("id"))
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, errSkipRow) {
		engine.ClientError(w, "Não Encontrado", "Evento não encontrado", http.StatusNotFound)
		return
	}
	if engine.HandleError(w, err) {
		return
	}

	espacoNome := ""
	if e.EspacoID != nil {
		espacoNome = m.espacos.Nome(r.Context(), *e.EspacoID)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	eventoDetailTemplate.Execute(w, map[string]any{
		"Evento":     e,
		"EspacoNome": espacoNome,
		"DataBR":     dateutil.FormatBR(e.DataEvento),
	})
}

func (m *Module) handleReservaForm(w http.ResponseWriter, r *http.Request) {
	espacosList, err := m.espacos.ListAtivos(r.Context())
	if engine.HandleError(w, err) {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	reservaFormTemplate.Execute(w, map[string]any{"Espacos": espacosList})
}

var templateFuncs = template.FuncMap{
	"mod":   func(a, b int) int { return a % b },
	"deref": func(s *string) string { return *s },
}

var calendarTemplate = template.Must(template.New("calendar").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="utf-8"><title>Agenda - {{ .Month.NomeMes }} {{ .Month.Ano }}</title></head>
<body>
<main>
<h1>{{ .Month.NomeMes }} {{ .Month.Ano }}</h1>
<nav>
  <a href="/agenda?ano={{ .Anterior.Year }}&mes={{ printf "%d" .Anterior.Month }}">&laquo; Anterior</a>
  <a href="/agenda">Hoje</a>
  <a href="/agenda?ano={{ .Proximo.Year }}&mes={{ printf "%d" .Proximo.Month }}">Próximo &raquo;</a>
  <a href="/eventos/novo">Novo evento</a>
  <a href="/reservas/nova">Nova reserva</a>
</nav>
<table class="calendario">
  <thead><tr>{{ range .Semana }}<th>{{ . }}</th>{{ end }}</tr></thead>
  <tbody>
  {{ range $i, $dia := .Month.Dias }}
    {{ if eq (mod $i 7) 0 }}<tr>{{ end }}
    <td class="{{ if not $dia.EhMesAtual }}fora-do-mes{{ end }}{{ if $dia.EhHoje }} hoje{{ end }}">
      <span class="dia">{{ $dia.Dia }}</span>
      {{ with $dia.Feriado }}<span class="feriado">{{ .Nome }}</span>{{ end }}
      {{ range $dia.Eventos }}<a class="evento {{ .Status }}" href="/eventos/{{ .ID }}">{{ .Nome }}</a>{{ end }}
      {{ range $dia.Reservas }}<span class="reserva">{{ with .Finalidade }}{{ . }}{{ else }}Reserva{{ end }}</span>{{ end }}
    </td>
    {{ if eq (mod $i 7) 6 }}</tr>{{ end }}
  {{ end }}
  </tbody>
</table>
</main>
</body>
</html>
`))

var eventoFormTemplate = template.Must(template.New("evento-form").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="utf-8"><title>Evento</title></head>
<body>
<main>
<h1>{{ if .Evento.ID }}Editar Evento{{ else }}Novo Evento{{ end }}</h1>
<form method="post" action="/eventos{{ with .Evento.ID }}/{{ . }}{{ end }}">
  <label>Nome <input name="nome" value="{{ .Evento.Nome }}" required></label>
  <label>Descrição <textarea name="descricao">{{ with .Evento.Descricao }}{{ . }}{{ end }}</textarea></label>
  <label>Data <input type="date" name="data_evento" value="{{ if not .Evento.DataEvento.IsZero }}{{ .Evento.DataEvento }}{{ end }}" required></label>
  <label>Data final <input type="date" name="data_fim" value="{{ if not .Evento.DataFim.IsZero }}{{ .Evento.DataFim }}{{ end }}"></label>
  <label>Dia inteiro <input type="checkbox" name="dia_inteiro" value="true" {{ if .Evento.DiaInteiro }}checked{{ end }}></label>
  <label>Início <input type="time" name="hora_inicio" value="{{ with .Evento.HoraInicio }}{{ . }}{{ end }}"></label>
  <label>Término <input type="time" name="hora_fim" value="{{ with .Evento.HoraFim }}{{ . }}{{ end }}"></label>
  <label>Espaço
    <select name="espaco_id">
      <option value="">(sem espaço)</option>
      {{ $sel := .Evento.EspacoID }}
      {{ range .Espacos }}<option value="{{ .ID }}" {{ if and $sel (eq .ID (deref $sel)) }}selected{{ end }}>{{ .Nome }}</option>{{ end }}
    </select>
  </label>
  <label>Status
    <select name="status">
      <option value="confirmado" {{ if eq .Evento.Status "confirmado" }}selected{{ end }}>Confirmado</option>
      <option value="pendente" {{ if eq .Evento.Status "pendente" }}selected{{ end }}>Pendente</option>
      <option value="cancelado" {{ if eq .Evento.Status "cancelado" }}selected{{ end }}>Cancelado</option>
    </select>
  </label>
  <fieldset>
    <legend>Participantes</legend>
    {{ range .Pessoas }}
    <label><input type="checkbox" name="participantes" value="{{ .ID }}"> {{ .NomeCompleto }}</label>
    {{ end }}
  </fieldset>
  <label>Observações <textarea name="observacoes">{{ with .Evento.Observacoes }}{{ . }}{{ end }}</textarea></label>
  <button type="submit">Salvar</button>
</form>
</main>
</body>
</html>
`))

var eventoDetailTemplate = template.Must(template.New("evento-detail").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="utf-8"><title>{{ .Evento.Nome }}</title></head>
<body>
<main>
<h1>{{ .Evento.Nome }}</h1>
<p>{{ .DataBR }}{{ if not .Evento.DataFim.IsZero }} até {{ .Evento.DataFim }}{{ end }}
{{ if .Evento.DiaInteiro }}(dia inteiro){{ else }}{{ with .Evento.HoraInicio }}{{ . }}{{ end }}{{ with .Evento.HoraFim }} - {{ . }}{{ end }}{{ end }}</p>
{{ with .EspacoNome }}<p>Local: {{ . }}</p>{{ end }}
{{ with .Evento.Descricao }}<p>{{ . }}</p>{{ end }}
<p>Status: {{ .Evento.Status }}</p>
{{ with .Evento.Observacoes }}<p>{{ . }}</p>{{ end }}
<nav>
  <a href="/eventos/{{ .Evento.ID }}/editar">Editar</a>
  <form method="post" action="/eventos/{{ .Evento.ID }}/excluir"><button type="submit">Excluir</button></form>
  <a href="/agenda">Voltar</a>
</nav>
</main>
</body>
</html>
`))

var reservaFormTemplate = template.Must(template.New("reserva-form").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="utf-8"><title>Nova Reserva</title></head>
<body>
<main>
<h1>Nova Reserva</h1>
<form method="post" action="/reservas">
  <label>Espaço
    <select name="espaco_id" required>
      {{ range .Espacos }}<option value="{{ .ID }}">{{ .Nome }}</option>{{ end }}
    </select>
  </label>
  <label>Data <input type="date" name="data_reserva" required></label>
  <label>Início <input type="time" name="hora_inicio" required></label>
  <label>Término <input type="time" name="hora_fim" required></label>
  <label>Finalidade <input name="finalidade"></label>
  <label>Responsável <input name="responsavel"></label>
  <label>Valor de locação (centavos) <input type="number" name="valor_locacao" min="0"></label>
  <button type="submit">Reservar</button>
</form>
</main>
</body>
</html>
`))
