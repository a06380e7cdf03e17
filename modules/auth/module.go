// Package auth implements cookie sessions for members using emailed login
// links. When no mailer is configured the link is logged, which is how local
// development works.
package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/engine"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"
)

const migration = `
CREATE TABLE IF NOT EXISTS members (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
    email TEXT NOT NULL UNIQUE,
    name TEXT,
    leadership INTEGER NOT NULL DEFAULT 0
) STRICT;
`

const issuerName = "sr2"

// Mailer delivers a login link to the given address, returning false when
// delivery failed.
type Mailer func(ctx context.Context, to, link string) bool

type Module struct {
	Mailer Mailer

	db      *sql.DB
	self    *url.URL
	iss     *engine.TokenIssuer
	limiter *rate.Limiter
}

func New(db *sql.DB, self *url.URL, iss *engine.TokenIssuer) *Module {
	engine.MustMigrate(db, migration)
	return &Module{
		Mailer:  logMailer,
		db:      db,
		self:    self,
		iss:     iss,
		limiter: rate.NewLimiter(rate.Every(10*time.Second), 5),
	}
}

func logMailer(ctx context.Context, to, link string) bool {
	slog.Info("login link issued (no mailer configured)", "to", to, "link", link)
	return true
}

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="utf-8"><title>Entrar</title></head>
<body>
<main>
<h1>Entrar</h1>
<form method="post" action="/login">
  <input type="hidden" name="callback_uri" value="{{ .Callback }}">
  <label>E-mail <input type="email" name="email" required></label>
  <button type="submit">Enviar link de acesso</button>
</form>
</main>
</body>
</html>
`))

func (m *Module) AttachRoutes(router *engine.Router) {
	router.HandleFunc("GET /login", m.handleLoginForm)
	router.HandleFunc("POST /login", m.handleLoginFormPost)
	router.HandleFunc("GET /login/token", m.handleLoginToken)
	router.HandleFunc("GET /logout", m.handleLogout)
	router.HandleFunc("GET /whoami", m.WithAuthn(m.handleWhoami))
}

func (m *Module) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	loginTemplate.Execute(w, map[string]string{"Callback": r.URL.Query().Get("callback_uri")})
}

// handleLoginFormPost starts a login flow for the given member (by email).
func (m *Module) handleLoginFormPost(w http.ResponseWriter, r *http.Request) {
	if !m.limiter.Allow() {
		engine.ClientError(w, "Muitas Tentativas", "Aguarde alguns instantes e tente novamente", http.StatusTooManyRequests)
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	if email == "" || !strings.Contains(email, "@") {
		engine.ClientError(w, "E-mail Inválido", "Informe um endereço de e-mail válido", http.StatusBadRequest)
		return
	}

	// Find the member ID or insert a new row if one doesn't exist for this email.
	var memberID int64
	err := m.db.QueryRowContext(r.Context(),
		"INSERT INTO members (email) VALUES ($1) ON CONFLICT (email) DO UPDATE SET email=email RETURNING id",
		email).Scan(&memberID)
	if engine.HandleError(w, err) {
		return
	}

	tok, err := m.iss.Sign(&jwt.RegisteredClaims{
		Issuer:    issuerName,
		Subject:   strconv.FormatInt(memberID, 10),
		Audience:  jwt.ClaimStrings{"login"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	if engine.HandleError(w, err) {
		return
	}

	q := url.Values{}
	q.Add("t", tok)
	q.Add("callback_uri", r.FormValue("callback_uri"))
	link := m.self.String() + "/login/token?" + q.Encode()

	if !m.Mailer(r.Context(), email, link) {
		engine.SystemError(w, "sending login link failed", "email", email)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte("<p>Link de acesso enviado. Verifique seu e-mail.</p>"))
}

// handleLoginToken exchanges an emailed link token for a session cookie.
func (m *Module) handleLoginToken(w http.ResponseWriter, r *http.Request) {
	claims, err := m.iss.Verify(r.URL.Query().Get("t"))
	if err != nil || len(claims.Audience) == 0 || claims.Audience[0] != "login" {
		engine.ClientError(w, "Link Expirado", "O link de acesso é inválido ou expirou. Solicite um novo.", http.StatusBadRequest)
		return
	}

	exp := time.Now().Add(30 * 24 * time.Hour)
	tok, err := m.iss.Sign(&jwt.RegisteredClaims{
		Issuer:    issuerName,
		Subject:   claims.Subject,
		Audience:  jwt.ClaimStrings{issuerName},
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	if engine.HandleError(w, err) {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    tok,
		Path:     "/",
		SameSite: http.SameSiteStrictMode,
		Expires:  exp,
		Secure:   strings.Contains(m.self.Scheme, "s"),
	})

	callback := r.URL.Query().Get("callback_uri")
	if callback == "" || !strings.HasPrefix(callback, "/") {
		callback = "/agenda"
	}
	http.Redirect(w, r, callback, http.StatusFound)
}

func (m *Module) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: "token", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (m *Module) handleWhoami(w http.ResponseWriter, r *http.Request) {
	meta := GetUserMeta(r.Context())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":         meta.ID,
		"email":      meta.Email,
		"leadership": meta.Leadership,
	})
}

// WithAuthn authenticates incoming requests, or redirects them to the login page.
func (m *Module) WithAuthn(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meta, ok := m.authenticate(r)
		if !ok {
			q := url.Values{}
			q.Add("callback_uri", r.URL.String())
			http.Redirect(w, r, "/login?"+q.Encode(), http.StatusFound)
			return
		}
		next(w, r.WithContext(withUserMeta(r.Context(), meta)))
	}
}

// WithLeadership additionally requires the member's leadership flag.
func (m *Module) WithLeadership(next http.HandlerFunc) http.HandlerFunc {
	return m.WithAuthn(func(w http.ResponseWriter, r *http.Request) {
		if !GetUserMeta(r.Context()).Leadership {
			engine.ClientError(w, "Acesso Restrito", "Esta página é restrita à liderança", http.StatusForbidden)
			return
		}
		next(w, r)
	})
}

func (m *Module) authenticate(r *http.Request) (*UserMetadata, bool) {
	cook, err := r.Cookie("token")
	if err != nil {
		return nil, false
	}
	claims, err := m.iss.Verify(cook.Value)
	if err != nil || len(claims.Audience) == 0 || claims.Audience[0] != issuerName {
		return nil, false
	}

	meta := &UserMetadata{}
	err = m.db.QueryRowContext(r.Context(),
		"SELECT id, email, leadership FROM members WHERE id = $1 LIMIT 1", claims.Subject).
		Scan(&meta.ID, &meta.Email, &meta.Leadership)
	if err != nil {
		return nil, false
	}
	return meta, true
}
