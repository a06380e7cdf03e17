// Sistema Restauração is the administrative server of the church: it keeps
// the event agenda, books physical spaces and charges rental fees, storing
// persistent state in sqlite.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"

	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/engine"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/agenda"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/auth"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/espacos"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/feriados"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/payment"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/pessoas"
	"github.com/aldinjohnsson43-commits/SistemaRestaura-o2/modules/pruning"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	HttpAddr string `envDefault:":8080"`

	// SelfURL is the public base URL of this server, used in login links
	// and payment redirects.
	SelfURL string `envDefault:"http://localhost:8080"`

	DBPath string `envDefault:"restauracao.sqlite3"`

	StripeKey        string
	StripeWebhookKey string
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	conf, err := env.ParseAsWithOptions[Config](env.Options{Prefix: "SR2_", UseFieldNameByDefault: true})
	if err != nil {
		panic(err)
	}

	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		err := engine.CheckHealthProbe("http://localhost:8080/healthz") // assume server is running on the default port
		if err != nil {
			panic(err)
		}
		return
	}

	self, err := url.Parse(conf.SelfURL)
	if err != nil {
		panic(err)
	}

	newApp(conf, self).Run(context.TODO())
}

func newApp(conf Config, self *url.URL) *engine.App {
	db, err := engine.OpenDB(conf.DBPath)
	if err != nil {
		panic(err)
	}

	router := engine.NewRouter()
	router.HandleFunc("GET /healthz", engine.ServeHealthProbe(db))

	a := engine.NewApp(conf.HttpAddr, router)

	authModule := auth.New(db, self, engine.NewTokenIssuer("auth.pem"))
	a.Add(authModule)
	a.Router.Authenticator = authModule // IMPORTANT

	espacosModule := espacos.New(db)
	feriadosModule := feriados.New(db)
	pessoasModule := pessoas.New(db)
	a.Add(espacosModule)
	a.Add(feriadosModule)
	a.Add(pessoasModule)

	a.Add(agenda.New(db, self, espacosModule, feriadosModule, pessoasModule))
	a.Add(payment.New(db, self, conf.StripeKey, conf.StripeWebhookKey))
	a.Add(pruning.New(db))
	return a
}
