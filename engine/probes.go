package engine

import (
	"database/sql"
	"fmt"
	"net/http"
)

// ServeHealthProbe answers liveness checks by opening and immediately rolling
// back a transaction, proving the database file is still reachable.
func ServeHealthProbe(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txn, err := db.BeginTx(r.Context(), nil)
		if err != nil {
			w.WriteHeader(500)
			return
		}
		if err := txn.Rollback(); err != nil {
			w.WriteHeader(500)
			return
		}
		w.WriteHeader(200)
	}
}

// CheckHealthProbe hits the health endpoint of a running instance. The main
// binary calls this in healthcheck mode so containers can probe themselves.
func CheckHealthProbe(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("health probe returned status %d", resp.StatusCode)
	}
	return nil
}
