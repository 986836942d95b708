package auth

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"

	"gocontatos/internal/domain"
	apperror "gocontatos/internal/errors"
	"gocontatos/internal/pkg/logger"
	"gocontatos/internal/pkg/middleware"
	"gocontatos/internal/web"
)

// AuthService define o contrato que o Handler espera da camada de serviço.
type AuthService interface {
	Login(ctx context.Context, credentials domain.Credentials) (string, error)
	Signup(ctx context.Context, form domain.SignupForm) error
	Logout(ctx context.Context, sid, token string)
	DeleteAccount(ctx context.Context, sid, token, password string) error
	RevokeSession(ctx context.Context, sid string)
}

// RegistryPurger descarta o espelho de contatos da sessão encerrada
// (implementado pelo contactservice).
type RegistryPurger interface {
	DropSession(sid string)
}

// Handler agrupa as páginas e ações de autenticação e conta.
type Handler struct {
	Service    AuthService
	Registries RegistryPurger
	Renderer   *web.Renderer
	Cookies    sessions.Store
	CookieName string
	Logger     logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando as dependências.
func NewHandler(svc AuthService, registries RegistryPurger, renderer *web.Renderer, cookies sessions.Store, cookieName string, log logger.Logger) *Handler {
	return &Handler{
		Service:    svc,
		Registries: registries,
		Renderer:   renderer,
		Cookies:    cookies,
		CookieName: cookieName,
		Logger:     log,
	}
}

// ShowLoginHandler renderiza a página de login (GET /login).
func (h *Handler) ShowLoginHandler(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, r, "login.html", map[string]interface{}{
		"Email": "",
	})
}

// LoginHandler processa o formulário de login (POST /login).
// Em sucesso, grava o session id no cookie e navega para a home.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulário inválido", http.StatusBadRequest)
		return
	}

	credentials := domain.Credentials{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	sid, err := h.Service.Login(r.Context(), credentials)
	if err != nil {
		if apperror.IsUnauthorized(err) {
			h.Renderer.AddFlash(w, r, "error", "E-mail ou senha inválidos")
		} else {
			h.Logger.Error("Falha no login.", err)
			h.Renderer.AddFlash(w, r, "error", "Erro ao fazer login")
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := middleware.SaveSessionCookie(w, r, h.Cookies, h.CookieName, sid); err != nil {
		h.Logger.Error("Falha ao gravar o cookie de sessão.", err)
		h.Renderer.AddFlash(w, r, "error", "Erro ao fazer login")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ShowSignupHandler renderiza a página de cadastro (GET /signup).
func (h *Handler) ShowSignupHandler(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, r, "signup.html", map[string]interface{}{
		"Form":   domain.SignupForm{},
		"Errors": map[string]string{},
	})
}

// SignupHandler processa o formulário de cadastro (POST /signup).
// Erros de validação voltam campo a campo; conflito ou falha upstream viram
// notificação genérica; sucesso redireciona ao login com notificação.
func (h *Handler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulário inválido", http.StatusBadRequest)
		return
	}

	form := domain.SignupForm{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	err := h.Service.Signup(r.Context(), form)
	if err == nil {
		h.Renderer.AddFlash(w, r, "success", "Usuário criado com sucesso")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if validation, ok := apperror.AsValidation(err); ok {
		h.Renderer.Render(w, r, "signup.html", map[string]interface{}{
			"Form":   form,
			"Errors": validation.Fields,
		})
		return
	}

	h.Logger.Error("Falha no cadastro.", err)
	h.Renderer.AddFlash(w, r, "error", "Erro ao criar usuário")
	h.Renderer.Render(w, r, "signup.html", map[string]interface{}{
		"Form":   form,
		"Errors": map[string]string{},
	})
}

// LogoutHandler encerra a sessão (POST /logout). A sessão local e o espelho
// de contatos são descartados mesmo que a chamada upstream falhe.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.Service.Logout(r.Context(), sess.SID, sess.Token)
	h.Registries.DropSession(sess.SID)
	middleware.ClearSessionCookie(w, r, h.Cookies, h.CookieName)

	h.Renderer.AddFlash(w, r, "success", "Logout realizado com sucesso")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// DeleteAccountHandler apaga a conta mediante confirmação de senha
// (POST /account/delete). Senha errada mantém o usuário na home com a
// notificação de erro; sucesso encerra a sessão e volta ao login.
func (h *Handler) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulário inválido", http.StatusBadRequest)
		return
	}

	err := h.Service.DeleteAccount(r.Context(), sess.SID, sess.Token, r.PostFormValue("password"))
	if err != nil {
		if apperror.IsUnauthorized(err) {
			// 401: política única — sessão limpa e volta ao login.
			h.Service.RevokeSession(r.Context(), sess.SID)
			h.Registries.DropSession(sess.SID)
			middleware.ClearSessionCookie(w, r, h.Cookies, h.CookieName)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.Renderer.AddFlash(w, r, "error", "Senha incorreta")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.Registries.DropSession(sess.SID)
	middleware.ClearSessionCookie(w, r, h.Cookies, h.CookieName)
	h.Renderer.AddFlash(w, r, "success", "Conta apagada com sucesso")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
