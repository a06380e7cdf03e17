package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/engine"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/agenda"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/espacos"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/feriados"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/pessoas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookKey = "whsec_test"

func newTestModule(t *testing.T) *Module {
	db := engine.OpenTestDB(t)
	self, err := url.Parse("http://localhost:8080")
	require.NoError(t, err)

	// The agenda module owns the reservations table.
	agenda.New(db, self, espacos.New(db), feriados.New(db), pessoas.New(db))
	return New(db, self, "", testWebhookKey)
}

func insertReserva(t *testing.T, m *Module, id string, valor any, pago bool) {
	_, err := m.db.Exec(`
		INSERT INTO reservas_espacos (id, espaco_id, data_reserva, hora_inicio, hora_fim, valor_locacao, pago)
		VALUES ($1, 'salao', '2025-03-15', '14:00', '18:00', $2, $3)`, id, valor, pago)
	require.NoError(t, err)
}

func getPagamento(m *Module, id string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/reservas/"+id+"/pagamento", nil)
	r.SetPathValue("id", id)
	m.handlePagamento(w, r)
	return w
}

func TestPagamentoUnknownReserva(t *testing.T) {
	m := newTestModule(t)
	assert.Equal(t, 404, getPagamento(m, "nope").Code)
}

func TestPagamentoWithoutFeeRedirectsBack(t *testing.T) {
	m := newTestModule(t)
	insertReserva(t, m, "r1", nil, false)

	w := getPagamento(m, "r1")
	require.Equal(t, 303, w.Code)
	assert.Equal(t, "/agenda", w.Header().Get("Location"))
}

func TestPagamentoAlreadyPaidRedirectsBack(t *testing.T) {
	m := newTestModule(t)
	insertReserva(t, m, "r1", 25000, true)

	w := getPagamento(m, "r1")
	require.Equal(t, 303, w.Code)
	assert.Equal(t, "/agenda", w.Header().Get("Location"))
}

func TestPagamentoWithoutStripeConfigured(t *testing.T) {
	m := newTestModule(t)
	insertReserva(t, m, "r1", 25000, false)
	assert.Equal(t, 503, getPagamento(m, "r1").Code)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	m := newTestModule(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader(`{"type":"checkout.session.completed"}`))
	r.Header.Set("Stripe-Signature", "t=123,v1=bogus")
	m.handleWebhook(w, r)
	assert.Equal(t, 400, w.Code)
}

// signPayload builds a Stripe-Signature header: v1 is an HMAC-SHA256 of
// "<timestamp>.<payload>" under the webhook secret.
func signPayload(payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookKey))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(m *Module, payload []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader(string(payload)))
	r.Header.Set("Stripe-Signature", signPayload(payload))
	m.handleWebhook(w, r)
	return w
}

func TestWebhookMarksReservaPaid(t *testing.T) {
	m := newTestModule(t)
	insertReserva(t, m, "r1", 25000, false)

	payload := []byte(`{
		"type": "checkout.session.completed",
		"data": {"object": {"metadata": {"reserva_id": "r1"}}}
	}`)
	w := postWebhook(m, payload)
	require.Equal(t, 200, w.Code, w.Body.String())

	var pago bool
	require.NoError(t, m.db.QueryRow("SELECT pago FROM reservas_espacos WHERE id = 'r1'").Scan(&pago))
	assert.True(t, pago)
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	m := newTestModule(t)
	insertReserva(t, m, "r1", 25000, false)

	payload := []byte(`{
		"type": "invoice.paid",
		"data": {"object": {"metadata": {"reserva_id": "r1"}}}
	}`)
	require.Equal(t, 200, postWebhook(m, payload).Code)

	var pago bool
	require.NoError(t, m.db.QueryRow("SELECT pago FROM reservas_espacos WHERE id = 'r1'").Scan(&pago))
	assert.False(t, pago)
}
