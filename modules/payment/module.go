// Package payment charges rental fees on space reservations through Stripe
// Checkout. Reservations are written by the agenda module; this module only
// reads them and flips the paid flag when the webhook confirms payment.
package payment

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/engine"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/internal/dateutil"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/webhook"
)

type Module struct {
	db         *sql.DB
	self       *url.URL
	webhookKey string
	enabled    bool
}

func New(db *sql.DB, self *url.URL, stripeKey, webhookKey string) *Module {
	stripe.Key = stripeKey
	return &Module{db: db, self: self, webhookKey: webhookKey, enabled: stripeKey != ""}
}

func (m *Module) AttachRoutes(router *engine.Router) {
	router.HandleFunc("GET /reservas/{id}/pagamento", router.WithAuthn(m.handlePagamento))
	router.HandleFunc("GET /reservas/pagamento/sucesso", m.handleSucesso)
	router.HandleFunc("POST /webhooks/stripe", m.handleWebhook)
}

// handlePagamento redirects the member to a Stripe Checkout session for the
// reservation's rental fee.
func (m *Module) handlePagamento(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var (
		data  string
		valor *int64
		pago  bool
	)
	err := m.db.QueryRowContext(r.Context(),
		"SELECT data_reserva, valor_locacao, pago FROM reservas_espacos WHERE id = $1", id).
		Scan(&data, &valor, &pago)
	if err == sql.ErrNoRows {
		engine.ClientError(w, "Não Encontrada", "Reserva não encontrada", http.StatusNotFound)
		return
	}
	if engine.HandleError(w, err) {
		return
	}

	if pago || valor == nil || *valor <= 0 {
		http.Redirect(w, r, "/agenda", http.StatusSeeOther)
		return
	}
	if !m.enabled {
		engine.ClientError(w, "Pagamento Indisponível",
			"O pagamento online não está configurado. Procure a secretaria.", http.StatusServiceUnavailable)
		return
	}

	nome := "Locação de espaço"
	if d, err := dateutil.ParseDate(data); err == nil {
		nome += " - " + dateutil.FormatBR(d)
	}

	sess, err := session.New(&stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(m.self.String() + "/reservas/pagamento/sucesso"),
		CancelURL:  stripe.String(m.self.String() + "/agenda"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("brl"),
				UnitAmount: valor,
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(nome),
				},
			},
		}},
		Metadata: map[string]string{"reserva_id": id},
	})
	if engine.HandleError(w, err) {
		return
	}

	_, err = m.db.ExecContext(r.Context(),
		"UPDATE reservas_espacos SET stripe_session_id = $1 WHERE id = $2", sess.ID, id)
	if engine.HandleError(w, err) {
		return
	}
	http.Redirect(w, r, sess.URL, http.StatusSeeOther)
}

func (m *Module) handleSucesso(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(`<p>Pagamento recebido. Obrigado!</p><p><a href="/agenda">Voltar para a agenda</a></p>`))
}

func (m *Module) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		http.Error(w, "error while reading request body", 400)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), m.webhookKey)
	if err != nil {
		http.Error(w, "invalid signature", 400)
		return
	}
	if event.Type != "checkout.session.completed" {
		return
	}

	sess := &stripe.CheckoutSession{}
	if err := json.Unmarshal(event.Data.Raw, sess); err != nil {
		http.Error(w, "invalid payload", 400)
		return
	}
	if engine.HandleError(w, m.markPaid(r, sess.Metadata["reserva_id"])) {
		return
	}
}

func (m *Module) markPaid(r *http.Request, reservaID string) error {
	if reservaID == "" {
		return nil
	}
	_, err := m.db.ExecContext(r.Context(),
		"UPDATE reservas_espacos SET pago = 1 WHERE id = $1", reservaID)
	return err
}
