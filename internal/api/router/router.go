package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"gocontatos/internal/api/auth"
	"gocontatos/internal/api/contacts"
)

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências, o
// middleware de sessão (rotas privadas) e o rate limiter (login/cadastro).
func NewRouter(authHandler *auth.Handler, contactsHandler *contacts.Handler, sessionMw mux.MiddlewareFunc, loginLimiter mux.MiddlewareFunc) http.Handler {
	r := mux.NewRouter()

	// --- 1. Health Check ---
	r.HandleFunc("/ping", PingHandler).Methods(http.MethodGet)

	// --- 2. Rotas públicas (login e cadastro) ---
	r.HandleFunc("/login", authHandler.ShowLoginHandler).Methods(http.MethodGet)
	r.Handle("/login", loginLimiter(http.HandlerFunc(authHandler.LoginHandler))).Methods(http.MethodPost)
	r.HandleFunc("/signup", authHandler.ShowSignupHandler).Methods(http.MethodGet)
	r.Handle("/signup", loginLimiter(http.HandlerFunc(authHandler.SignupHandler))).Methods(http.MethodPost)

	// --- 3. Rotas privadas (exigem sessão resolvida) ---
	private := r.NewRoute().Subrouter()
	private.Use(sessionMw)

	private.HandleFunc("/", contactsHandler.HomeHandler).Methods(http.MethodGet)
	private.HandleFunc("/contacts/new", contactsHandler.NewContactHandler).Methods(http.MethodGet)
	private.HandleFunc("/contacts/{id:[0-9]+}/edit", contactsHandler.EditContactHandler).Methods(http.MethodGet)
	private.HandleFunc("/contacts/save", contactsHandler.SaveContactHandler).Methods(http.MethodPost)
	private.HandleFunc("/contacts/{id:[0-9]+}/delete", contactsHandler.DeleteContactHandler).Methods(http.MethodPost)
	private.HandleFunc("/address_lookup", contactsHandler.AddressLookupHandler).Methods(http.MethodGet)
	private.HandleFunc("/logout", authHandler.LogoutHandler).Methods(http.MethodPost)
	private.HandleFunc("/account/delete", authHandler.DeleteAccountHandler).Methods(http.MethodPost)

	return r
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
