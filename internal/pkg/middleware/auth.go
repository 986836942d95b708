package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"

	"gocontatos/internal/pkg/logger"
)

// ContextKey é o tipo da chave usada para anexar a sessão ao contexto.
// Usamos um tipo próprio para garantir que não haja conflito com outras chaves.
type ContextKey int

const (
	SessionKey ContextKey = iota
)

// Session são os dados da sessão anexados ao contexto da requisição:
// o session id do cookie e o token opaco da API upstream.
type Session struct {
	SID   string
	Token string
}

// TokenResolver define o contrato de resolução de sessão necessário para o
// middleware (implementado por session.Store).
type TokenResolver interface {
	Token(ctx context.Context, sid string) (string, error)
}

// NewAuthMiddleware cria o middleware que resolve o cookie de sessão para o
// token upstream e o anexa ao contexto. Sem cookie, sem sessão ou com sessão
// expirada, o navegador é mandado para /login — a limpeza do cookie acontece
// aqui, num único lugar, nunca nos handlers.
func NewAuthMiddleware(cookies sessions.Store, cookieName string, resolver TokenResolver, log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Extrair o session id do cookie assinado.
			// Get devolve uma sessão nova (vazia) quando o cookie é inválido.
			cookie, _ := cookies.Get(r, cookieName)
			sid, ok := cookie.Values["sid"].(string)
			if !ok || sid == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			// 2. Resolver o session id para o token upstream.
			token, err := resolver.Token(r.Context(), sid)
			if err != nil {
				log.Debug("Sessão não resolvida; redirecionando ao login.", map[string]interface{}{"sid": sid})
				ClearSessionCookie(w, r, cookies, cookieName)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			// 3. Anexar a sessão ao contexto e seguir.
			ctx := context.WithValue(r.Context(), SessionKey, Session{SID: sid, Token: token})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession é a função utilitária para extrair a sessão nos handlers.
func GetSession(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(SessionKey).(Session)
	return sess, ok
}

// SaveSessionCookie grava o session id no cookie assinado (chamado no login).
func SaveSessionCookie(w http.ResponseWriter, r *http.Request, cookies sessions.Store, cookieName, sid string) error {
	cookie, _ := cookies.Get(r, cookieName)
	cookie.Values["sid"] = sid
	return cookie.Save(r, w)
}

// ClearSessionCookie descarta o cookie de sessão (logout, conta apagada, 401).
func ClearSessionCookie(w http.ResponseWriter, r *http.Request, cookies sessions.Store, cookieName string) {
	cookie, _ := cookies.Get(r, cookieName)
	delete(cookie.Values, "sid")
	cookie.Options.MaxAge = -1
	_ = cookie.Save(r, w)
}
