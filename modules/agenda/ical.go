package agenda

import (
	"net/http"
	"time"

	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/engine"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/internal/dateutil"
	ics "github.com/arran4/golang-ical"
)

var icalLocation = func() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// handleICal serves the next year of confirmed events as an iCalendar feed
// so members can subscribe from their phone's calendar app.
func (m *Module) handleICal(w http.ResponseWriter, r *http.Request) {
	hoje := dateutil.DateOf(time.Now().In(icalLocation))
	eventos, err := m.EventosNoPeriodo(r.Context(), hoje.AddDays(-30), hoje.AddDays(365))
	if engine.HandleError(w, err) {
		return
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//SistemaRestauracao//Agenda//PT")

	for _, e := range eventos {
		if e.Status != EventoConfirmado {
			continue
		}
		ev := cal.AddEvent("evento-" + e.ID + "@" + m.self.Hostname())
		ev.SetSummary(e.Nome)
		if e.Descricao != nil {
			ev.SetDescription(*e.Descricao)
		}
		if e.EspacoID != nil {
			if nome := m.espacos.Nome(r.Context(), *e.EspacoID); nome != "" {
				ev.SetLocation(nome)
			}
		}

		fim := e.DataFim
		if fim.IsZero() {
			fim = e.DataEvento
		}
		if e.DiaInteiro || e.HoraInicio == nil || e.HoraFim == nil {
			// DTEND is exclusive for all-day events.
			ev.SetAllDayStartAt(dateTime(e.DataEvento, 0))
			ev.SetAllDayEndAt(dateTime(fim.AddDays(1), 0))
		} else {
			ev.SetStartAt(dateTime(e.DataEvento, *e.HoraInicio))
			ev.SetEndAt(dateTime(fim, *e.HoraFim))
		}
	}

	w.Header().Set("Content-Type", "text/calendar")
	w.Write([]byte(cal.Serialize()))
}

func dateTime(d dateutil.Date, t dateutil.TimeOfDay) time.Time {
	return time.Date(d.Year, d.Month, d.Day, t.Minutes()/60, t.Minutes()%60, 0, 0, icalLocation)
}
