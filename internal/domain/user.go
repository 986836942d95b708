package domain

import "context"

// Credentials é o par de login enviado à API upstream.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupForm são os dados de criação de conta.
type SignupForm struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthGateway é a interface que a camada de acesso à API upstream DEVE
// implementar para autenticação e gestão de conta. Login retorna o token
// opaco do header Authorization da resposta.
type AuthGateway interface {
	Login(ctx context.Context, credentials Credentials) (string, error)
	Signup(ctx context.Context, form SignupForm) error
	Logout(ctx context.Context, token string) error
	DeleteUser(ctx context.Context, token string, password string) error
}
