package contacts

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"gocontatos/internal/domain"
	"gocontatos/internal/editor"
	apperror "gocontatos/internal/errors"
	"gocontatos/internal/mapembed"
	"gocontatos/internal/pkg/logger"
	"gocontatos/internal/pkg/middleware"
	"gocontatos/internal/registry"
	"gocontatos/internal/web"
)

// ContactService define o contrato que o Handler espera da camada de serviço.
type ContactService interface {
	Fetch(ctx context.Context, token, sid string, q domain.ContactQuery) (*registry.Registry, error)
	Delete(ctx context.Context, token, sid string, id int) error
	Find(sid string, id int) (domain.Contact, bool)
	NewEditor(token string) *editor.Editor
	Commit(sid string, wasNew bool, saved domain.Contact)
	AddressByZipcode(ctx context.Context, token, zipcode string) (domain.AddressData, error)
}

// SessionController centraliza a invalidação de sessão em 401 (design: o
// redirect não acontece espalhado pelos call sites, e o token é sempre limpo).
type SessionController interface {
	RevokeSession(ctx context.Context, sid string)
}

// Handler agrupa as páginas e ações da agenda de contatos.
type Handler struct {
	Service    ContactService
	Sessions   SessionController
	Renderer   *web.Renderer
	Cookies    sessions.Store
	CookieName string
	Logger     logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando as dependências.
func NewHandler(svc ContactService, sessionsCtl SessionController, renderer *web.Renderer, cookies sessions.Store, cookieName string, log logger.Logger) *Handler {
	return &Handler{
		Service:    svc,
		Sessions:   sessionsCtl,
		Renderer:   renderer,
		Cookies:    cookies,
		CookieName: cookieName,
		Logger:     log,
	}
}

// handleUnauthorized aplica a política única de 401: revoga a sessão, limpa o
// cookie e manda o navegador para o login.
func (h *Handler) handleUnauthorized(w http.ResponseWriter, r *http.Request, sid string) {
	h.Sessions.RevokeSession(r.Context(), sid)
	middleware.ClearSessionCookie(w, r, h.Cookies, h.CookieName)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// HomeHandler renderiza a tela principal (GET /): lista paginada, busca,
// direção de ordenação e o painel de mapa do contato selecionado.
func (h *Handler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	query := r.URL.Query()
	page := 1
	if raw := query.Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			page = parsed
		}
	}
	search := query.Get("search")
	order := query.Get("order")

	reg, err := h.Service.Fetch(r.Context(), sess.Token, sess.SID, domain.ContactQuery{
		Page:   page,
		Search: search,
		Order:  order,
	})
	if err != nil {
		if apperror.IsUnauthorized(err) {
			h.handleUnauthorized(w, r, sess.SID)
			return
		}
		h.Logger.Error("Falha ao carregar contatos.", err)
		h.Renderer.AddFlash(w, r, "error", "Erro ao carregar contatos")
	}

	// O mapa abre na região padrão; selecionar um contato com coordenadas
	// troca o embed para a posição dele.
	mapURL := mapembed.DefaultURL()
	if raw := query.Get("selected"); raw != "" {
		if id, convErr := strconv.Atoi(raw); convErr == nil {
			if contact, found := h.Service.Find(sess.SID, id); found {
				mapURL = mapembed.ContactURL(contact)
			}
		}
	}

	h.Renderer.Render(w, r, "home.html", map[string]interface{}{
		"Contacts":   reg.Contacts(),
		"Page":       reg.Page(),
		"TotalPages": reg.TotalPages(),
		"Search":     search,
		"Order":      order,
		"MapURL":     mapURL,
	})
}

// NewContactHandler abre o editor no template em branco (GET /contacts/new).
func (h *Handler) NewContactHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ed := h.Service.NewEditor(sess.Token)
	ed.Open(nil)
	h.renderForm(w, r, ed, true)
}

// EditContactHandler abre o editor sobre um contato do espelho
// (GET /contacts/{id}/edit).
func (h *Handler) EditContactHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.NotFound(w, r)
		return
	}

	contact, found := h.Service.Find(sess.SID, id)
	if !found {
		h.Renderer.AddFlash(w, r, "error", "Contato não encontrado")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	ed := h.Service.NewEditor(sess.Token)
	ed.Open(&contact)
	h.renderForm(w, r, ed, false)
}

// SaveContactHandler aplica o formulário ao editor e submete
// (POST /contacts/save). id 0 cria, id > 0 atualiza.
func (h *Handler) SaveContactHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulário inválido", http.StatusBadRequest)
		return
	}

	id, _ := strconv.Atoi(r.PostFormValue("id"))
	isNew := id == 0

	ed := h.Service.NewEditor(sess.Token)
	if isNew {
		ed.Open(nil)
	} else if base, found := h.Service.Find(sess.SID, id); found {
		ed.Open(&base)
	} else {
		base := domain.Contact{ID: id}
		ed.Open(&base)
	}

	if err := h.applyForm(r, ed); err != nil {
		// Só a consulta de CEP propaga erro, e só quando é 401.
		h.handleUnauthorized(w, r, sess.SID)
		return
	}

	saved, err := ed.Submit(r.Context())
	if err != nil {
		switch {
		case apperror.IsUnauthorized(err):
			h.handleUnauthorized(w, r, sess.SID)
		default:
			if _, isValidation := apperror.AsValidation(err); !isValidation {
				if _, isConflict := apperror.AsConflict(err); !isConflict {
					h.Logger.Error("Falha ao salvar contato.", err)
					h.Renderer.AddFlash(w, r, "error", "Erro ao salvar contato")
				}
			}
			// Validação e conflito já deixaram o mapa de erros no editor;
			// o formulário permanece aberto com o estado corrente.
			h.renderForm(w, r, ed, isNew)
		}
		return
	}

	h.Service.Commit(sess.SID, isNew, saved)
	h.Renderer.AddFlash(w, r, "success", "Contato salvo com sucesso")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteContactHandler remove um contato (POST /contacts/{id}/delete).
// Nada sai do espelho antes da confirmação do servidor.
func (h *Handler) DeleteContactHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.Service.Delete(r.Context(), sess.Token, sess.SID, id); err != nil {
		if apperror.IsUnauthorized(err) {
			h.handleUnauthorized(w, r, sess.SID)
			return
		}
		h.Logger.Error("Falha ao deletar contato.", err)
		h.Renderer.AddFlash(w, r, "error", "Erro ao deletar contato")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.Renderer.AddFlash(w, r, "success", "Contato deletado com sucesso")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// AddressLookupHandler resolve um CEP em JSON para o preenchimento inline do
// formulário (GET /address_lookup?zipcode=). A resposta espelha o shape da
// API upstream.
func (h *Handler) AddressLookupHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Error(w, "Não autorizado", http.StatusUnauthorized)
		return
	}

	zipcode := r.URL.Query().Get("zipcode")
	data, err := h.Service.AddressByZipcode(r.Context(), sess.Token, zipcode)
	if err != nil {
		status, category, message := apperror.MapToHTTPStatus(err)
		if status >= 500 {
			h.Logger.Error("Falha na consulta de CEP.", err)
		}
		if apperror.IsUnauthorized(err) {
			h.Sessions.RevokeSession(r.Context(), sess.SID)
			middleware.ClearSessionCookie(w, r, h.Cookies, h.CookieName)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":     status,
			"category": category,
			"message":  message,
		})
		return
	}

	response := map[string]interface{}{
		"address": map[string]string{
			"address":      data.Street,
			"neighborhood": data.Neighborhood,
			"city":         data.City,
			"state":        data.State,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// renderForm renderiza o formulário de contato com o estado corrente do editor.
func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, ed *editor.Editor, isNew bool) {
	h.Renderer.Render(w, r, "contact_form.html", map[string]interface{}{
		"Contact": ed.Contact(),
		"Errors":  ed.Errors(),
		"IsNew":   isNew,
	})
}

// applyForm replica os campos do POST na cópia local do editor. O CEP entra
// primeiro (e só quando mudou), para que a consulta de endereço não
// sobrescreva o que o usuário digitou nos demais campos.
func (h *Handler) applyForm(r *http.Request, ed *editor.Editor) error {
	ctx := r.Context()

	if zipcode := r.PostFormValue("zipcode"); zipcode != ed.Contact().Address.Zipcode {
		if err := ed.SetAddressField(ctx, "zipcode", zipcode); err != nil {
			return err
		}
	}

	for _, field := range []string{"name", "cpf", "phone"} {
		ed.SetField(field, r.PostFormValue(field))
	}
	for _, field := range []string{"street", "number", "neighborhood", "complement", "city", "state", "country", "latitude", "longitude"} {
		if err := ed.SetAddressField(ctx, field, r.PostFormValue(field)); err != nil {
			return err
		}
	}
	return nil
}
