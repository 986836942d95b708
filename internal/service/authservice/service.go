package authservice

import (
	"context"

	"gocontatos/internal/domain"
	apperror "gocontatos/internal/errors"
	"gocontatos/internal/pkg/logger"
	"gocontatos/internal/pkg/session"
	"gocontatos/internal/validation"
)

// Service orquestra autenticação e gestão de conta: conversa com a API
// upstream e administra a sessão local (token opaco por session id).
type Service struct {
	gateway  domain.AuthGateway
	sessions *session.Store
	logger   logger.Logger
}

// NewService cria uma nova instância do Service, injetando o gateway da API
// upstream e o Store de sessões.
func NewService(gateway domain.AuthGateway, sessions *session.Store, log logger.Logger) *Service {
	return &Service{
		gateway:  gateway,
		sessions: sessions,
		logger:   log,
	}
}

// Login autentica na API upstream e, com o token recebido, emite uma sessão
// local. Retorna o session id a ser gravado no cookie.
func (s *Service) Login(ctx context.Context, credentials domain.Credentials) (string, error) {
	token, err := s.gateway.Login(ctx, credentials)
	if err != nil {
		return "", err
	}

	sid, err := s.sessions.Issue(ctx, token)
	if err != nil {
		return "", err
	}

	s.logger.Info("Sessão emitida.", map[string]interface{}{"email": credentials.Email})
	return sid, nil
}

// Signup valida o formulário e cria a conta na API upstream.
// Erros de validação nunca chegam à API.
func (s *Service) Signup(ctx context.Context, form domain.SignupForm) error {
	if errs := validation.ValidateSignup(form); len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return s.gateway.Signup(ctx, form)
}

// Logout encerra a sessão na API upstream e descarta a sessão local.
// A sessão local é limpa mesmo quando a chamada upstream falha: depois de um
// logout o usuário sempre volta ao login sem token.
func (s *Service) Logout(ctx context.Context, sid, token string) {
	if err := s.gateway.Logout(ctx, token); err != nil {
		s.logger.Warn("Logout upstream falhou; sessão local descartada mesmo assim.", map[string]interface{}{"error": err.Error()})
	}
	if err := s.sessions.Revoke(ctx, sid); err != nil {
		s.logger.Error("Falha ao descartar a sessão local.", err)
	}
}

// DeleteAccount apaga a conta na API upstream mediante confirmação de senha.
// Só em caso de sucesso a sessão local é descartada; senha errada mantém a
// sessão viva e o usuário na tela (o handler mostra a notificação).
func (s *Service) DeleteAccount(ctx context.Context, sid, token, password string) error {
	if err := s.gateway.DeleteUser(ctx, token, password); err != nil {
		return err
	}
	if err := s.sessions.Revoke(ctx, sid); err != nil {
		s.logger.Error("Falha ao descartar a sessão após apagar a conta.", err)
	}
	s.logger.Info("Conta apagada e sessão encerrada.", nil)
	return nil
}

// RevokeSession descarta a sessão local sem chamar a API upstream.
// Usado pelo tratamento uniforme de 401: o token é sempre limpo antes do redirect.
func (s *Service) RevokeSession(ctx context.Context, sid string) {
	if err := s.sessions.Revoke(ctx, sid); err != nil {
		s.logger.Error("Falha ao revogar a sessão.", err)
	}
}
