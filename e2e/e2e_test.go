package e2e

import (
	"net/http"
	"testing"
)

func TestHealthz(t *testing.T) {
	ts := newServer(t)
	ts.login(t, "membro@example.com", false).
		GET("/healthz").Expect().Status(http.StatusOK)
}

func TestAnonymousIsRedirectedToLogin(t *testing.T) {
	ts := newServer(t)

	client := &http.Client{CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(ts.srv.URL + "/agenda")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}
}

func TestMemberCannotAdministrate(t *testing.T) {
	ts := newServer(t)
	e := ts.login(t, "membro@example.com", false)

	e.POST("/admin/espacos").WithFormField("nome", "Salão").
		Expect().Status(http.StatusForbidden)
	e.POST("/eventos").
		WithFormField("nome", "Culto").
		WithFormField("data_evento", "2025-03-09").
		WithFormField("dia_inteiro", "true").
		Expect().Status(http.StatusForbidden)
}

func TestSchedulingFlow(t *testing.T) {
	ts := newServer(t)
	e := ts.login(t, "lider@example.com", true)

	// Register the venue.
	e.POST("/admin/espacos").
		WithFormField("nome", "Salão Principal").
		WithFormField("capacidade", "120").
		Expect().Status(http.StatusOK)
	espacoID := e.GET("/espacos").Expect().Status(http.StatusOK).
		JSON().Array().Value(0).Object().Value("id").String().NotEmpty().Raw()

	// Schedule the Sunday service from 18:00 to 20:00.
	e.POST("/eventos").
		WithFormField("nome", "Culto de Domingo").
		WithFormField("data_evento", "2025-03-09").
		WithFormField("hora_inicio", "18:00").
		WithFormField("hora_fim", "20:00").
		WithFormField("espaco_id", espacoID).
		Expect().Status(http.StatusOK)

	// The event records who created it.
	var criadoPor string
	if err := ts.db.QueryRow("SELECT criado_por FROM eventos_agenda LIMIT 1").Scan(&criadoPor); err != nil {
		t.Fatal(err)
	}
	if criadoPor != "lider@example.com" {
		t.Fatalf("unexpected criado_por: %q", criadoPor)
	}

	// An overlapping reservation for the same venue is refused.
	e.POST("/reservas").
		WithFormField("espaco_id", espacoID).
		WithFormField("data_reserva", "2025-03-09").
		WithFormField("hora_inicio", "19:00").
		WithFormField("hora_fim", "21:00").
		WithFormField("finalidade", "Aniversário").
		Expect().Status(http.StatusConflict)

	// The back to back slot right after the service is fine.
	e.POST("/reservas").
		WithFormField("espaco_id", espacoID).
		WithFormField("data_reserva", "2025-03-09").
		WithFormField("hora_inicio", "20:00").
		WithFormField("hora_fim", "22:00").
		WithFormField("finalidade", "Aniversário").
		Expect().Status(http.StatusOK)

	// The availability probe explains what blocks the slot.
	diag := e.GET("/agenda/disponibilidade").
		WithQuery("espaco", espacoID).
		WithQuery("data", "2025-03-09").
		WithQuery("inicio", "19:00").
		WithQuery("fim", "21:00").
		Expect().Status(http.StatusOK).JSON().Object()
	diag.Value("tem_conflito").Boolean().IsTrue()
	diag.Value("tipo").String().IsEqual("horario")
	diag.Value("conflitos").Array().Length().IsEqual(2)

	free := e.GET("/agenda/disponibilidade").
		WithQuery("espaco", espacoID).
		WithQuery("data", "2025-03-09").
		WithQuery("inicio", "16:00").
		WithQuery("fim", "18:00").
		Expect().Status(http.StatusOK).JSON().Object()
	free.Value("tem_conflito").Boolean().IsFalse()
	free.Value("mensagem").String().IsEqual("Sem conflitos")

	// The month grid carries both bookings.
	resp := e.GET("/agenda/grade").
		WithQuery("ano", "2025").WithQuery("mes", "3").
		Expect().Status(http.StatusOK)
	grid := resp.JSON().Object()
	grid.Value("nome_mes").String().IsEqual("Março")
	grid.Value("dias").Array().Length().IsEqual(42)
	resp.Body().Contains("Culto de Domingo")
	resp.Body().Contains("Aniversário")

	// And the feed publishes the confirmed event.
	e.GET("/agenda/ical").Expect().Status(http.StatusOK).
		Body().Contains("BEGIN:VCALENDAR").Contains("SUMMARY:Culto de Domingo")
}

func TestCalendarPageRendersHolidays(t *testing.T) {
	ts := newServer(t)
	e := ts.login(t, "membro@example.com", false)

	// Christmas comes from the seeded national holidays.
	e.GET("/agenda").
		WithQuery("ano", "2025").WithQuery("mes", "12").
		Expect().Status(http.StatusOK).
		Body().Contains("Dezembro 2025").Contains("Natal")
}
