package agenda

import (
	"context"
	"time"

	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/internal/dateutil"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/feriados"
)

// GridCells is the fixed size of a month grid: six Sunday-aligned weeks.
// Rendering a constant number of rows keeps the calendar from jumping in
// height as the user pages through months.
const GridCells = 42

// CalendarDay is one cell of the month grid.
type CalendarDay struct {
	Data       dateutil.Date     `json:"data"`
	Dia        int               `json:"dia"`
	EhMesAtual bool              `json:"eh_mes_atual"`
	EhHoje     bool              `json:"eh_hoje"`
	Feriado    *feriados.Feriado `json:"feriado,omitempty"`
	Eventos    []*Evento         `json:"eventos,omitempty"`
	Reservas   []*Reserva        `json:"reservas,omitempty"`
}

// CalendarMonth is a fully populated month grid ready for rendering.
type CalendarMonth struct {
	Ano     int            `json:"ano"`
	Mes     time.Month     `json:"mes"`
	NomeMes string         `json:"nome_mes"`
	Dias    []*CalendarDay `json:"dias"`
}

// BuildMonth assembles the grid for the given month. The first cell is the
// Sunday on or before the 1st, so cells before and after the month carry days
// of the adjacent months. hoje is passed in rather than read from the clock
// so the same inputs always produce the same grid.
//
// Per-day placement rules:
//   - an event appears on every day of [DataEvento, DataFim], end date
//     defaulting to the start for single-day events
//   - a reservation appears only on its exact date
//   - a holiday appears only on its exact date
func BuildMonth(ano int, mes time.Month, hoje dateutil.Date, fers []*feriados.Feriado, eventos []*Evento, reservas []*Reserva) *CalendarMonth {
	first := dateutil.NewDate(ano, mes, 1)
	start := first.AddDays(-int(first.Weekday()))

	month := &CalendarMonth{
		Ano:     ano,
		Mes:     mes,
		NomeMes: dateutil.MonthName(mes),
		Dias:    make([]*CalendarDay, 0, GridCells),
	}
	for i := range GridCells {
		d := start.AddDays(i)
		day := &CalendarDay{
			Data:       d,
			Dia:        d.Day,
			EhMesAtual: d.Year == ano && d.Month == mes,
			EhHoje:     d == hoje,
		}
		for _, f := range fers {
			if f.Data == d {
				day.Feriado = f
				break
			}
		}
		for _, e := range eventos {
			if d.InRange(e.DataEvento, e.DataFim) {
				day.Eventos = append(day.Eventos, e)
			}
		}
		for _, r := range reservas {
			if r.DataReserva == d {
				day.Reservas = append(day.Reservas, r)
			}
		}
		month.Dias = append(month.Dias, day)
	}
	return month
}

// monthGrid loads everything the grid for one month needs and builds it.
func (m *Module) monthGrid(ctx context.Context, ano int, mes time.Month, hoje dateutil.Date) (*CalendarMonth, error) {
	first := dateutil.NewDate(ano, mes, 1)
	start := first.AddDays(-int(first.Weekday()))
	end := start.AddDays(GridCells - 1)

	fers, err := m.feriados.ForRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	eventos, err := m.EventosNoPeriodo(ctx, start, end)
	if err != nil {
		return nil, err
	}
	reservas, err := m.ReservasNoPeriodo(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return BuildMonth(ano, mes, hoje, fers, eventos, reservas), nil
}
