// Package web agrega as views HTML do GoContatos: templates embutidos no
// binário e o suporte a notificações one-shot (flashes), o equivalente
// server-side dos toasts da interface.
package web

import (
	"embed"
	"encoding/gob"
	"html/template"
	"net/http"

	"github.com/gorilla/sessions"

	"gocontatos/internal/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// Flash é uma notificação descartável exibida uma única vez.
// Kind é "success" ou "error" (classe CSS da notificação).
type Flash struct {
	Kind    string
	Message string
}

func init() {
	// O CookieStore serializa os flashes com gob.
	gob.Register(Flash{})
}

// Renderer renderiza as páginas HTML e administra os flashes.
// Os flashes vivem num cookie próprio, separado do cookie de sessão, para
// sobreviverem à limpeza da sessão (e.g., a notificação de logout).
type Renderer struct {
	tmpl        *template.Template
	cookies     sessions.Store
	flashCookie string
	logger      logger.Logger
}

// NewRenderer compila os templates embutidos e retorna o Renderer.
func NewRenderer(cookies sessions.Store, sessionCookie string, log logger.Logger) (*Renderer, error) {
	funcs := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{
		tmpl:        tmpl,
		cookies:     cookies,
		flashCookie: sessionCookie + "_flash",
		logger:      log,
	}, nil
}

// AddFlash enfileira uma notificação para a próxima página renderizada.
func (rd *Renderer) AddFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	cookie, _ := rd.cookies.Get(r, rd.flashCookie)
	cookie.AddFlash(Flash{Kind: kind, Message: message})
	if err := cookie.Save(r, w); err != nil {
		rd.logger.Error("Falha ao gravar flash.", err)
	}
}

// popFlashes consome e retorna as notificações pendentes.
func (rd *Renderer) popFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	cookie, _ := rd.cookies.Get(r, rd.flashCookie)
	raw := cookie.Flashes()
	if len(raw) > 0 {
		if err := cookie.Save(r, w); err != nil {
			rd.logger.Error("Falha ao consumir flashes.", err)
		}
	}

	flashes := make([]Flash, 0, len(raw))
	for _, item := range raw {
		if flash, ok := item.(Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	return flashes
}

// Render executa o template da página, injetando os flashes pendentes.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["Flashes"] = rd.popFlashes(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rd.tmpl.ExecuteTemplate(w, name, data); err != nil {
		rd.logger.Error("Falha ao renderizar template.", err)
		http.Error(w, "Erro ao renderizar a página", http.StatusInternalServerError)
	}
}
