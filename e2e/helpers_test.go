package e2e

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/engine"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/agenda"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/auth"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/espacos"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/feriados"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/payment"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/pessoas"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/pruning"
	"github.com/gavv/httpexpect/v2"
	"github.com/stretchr/testify/require"
)

// testServer wires the full application against an in-process http server,
// the same way main does.
type testServer struct {
	db   *sql.DB
	srv  *httptest.Server
	auth *auth.Module
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	db := engine.OpenTestDB(t)

	router := engine.NewRouter()
	router.HandleFunc("GET /healthz", engine.ServeHealthProbe(db))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	self, err := url.Parse(srv.URL)
	require.NoError(t, err)

	authModule := auth.New(db, self, engine.NewTokenIssuer(filepath.Join(t.TempDir(), "auth.pem")))
	router.Authenticator = authModule
	authModule.AttachRoutes(router)

	espacosModule := espacos.New(db)
	feriadosModule := feriados.New(db)
	pessoasModule := pessoas.New(db)
	espacosModule.AttachRoutes(router)
	feriadosModule.AttachRoutes(router)
	pessoasModule.AttachRoutes(router)
	agenda.New(db, self, espacosModule, feriadosModule, pessoasModule).AttachRoutes(router)
	payment.New(db, self, "", "whsec_test").AttachRoutes(router)
	pruning.New(db)

	return &testServer{db: db, srv: srv, auth: authModule}
}

// login drives the real email-link flow and returns a client holding the
// resulting session cookie.
func (ts *testServer) login(t *testing.T, email string, leadership bool) *httpexpect.Expect {
	t.Helper()

	var link string
	ts.auth.Mailer = func(ctx context.Context, to, l string) bool {
		link = l
		return true
	}

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	e := httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  ts.srv.URL,
		Client:   &http.Client{Jar: jar},
		Reporter: httpexpect.NewAssertReporter(t),
	})

	e.POST("/login").WithFormField("email", email).Expect().Status(http.StatusOK)
	require.NotEmpty(t, link)

	if leadership {
		_, err := ts.db.Exec("UPDATE members SET leadership = 1 WHERE email = $1", email)
		require.NoError(t, err)
	}

	// Following the link lands on the agenda with the cookie set. httpexpect
	// urlencodes the path argument, so the link's query must go through
	// WithQueryString instead.
	linkURL, err := url.Parse(link)
	require.NoError(t, err)
	e.GET(linkURL.Path).WithQueryString(linkURL.RawQuery).Expect().Status(http.StatusOK)
	return e
}
