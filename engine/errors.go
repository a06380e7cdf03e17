package engine

import (
	"html/template"
	"net/http"
)

var errorTemplate = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="utf-8"><title>{{ .Title }}</title></head>
<body>
<main>
<h1>{{ .Title }}</h1>
<p>{{ .Message }}</p>
<p><a href="javascript:history.back()">Voltar</a></p>
</main>
</body>
</html>
`))

type httpError struct {
	Title   string
	Message string
}

// ClientError renders a human-readable 4xx page. Use it for failures the user
// can act on (validation problems, scheduling conflicts, missing records).
func ClientError(w http.ResponseWriter, title, message string, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	errorTemplate.Execute(w, &httpError{Title: title, Message: message})
}
