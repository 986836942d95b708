package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gocontatos/internal/errors"
	"gocontatos/internal/pkg/cache"
)

const keyPrefix = "session:"

// Store guarda o token opaco emitido pela API upstream para cada sessão de
// navegador. O navegador carrega apenas o session id (no cookie assinado);
// o token em si nunca sai do servidor.
type Store struct {
	cache cache.Client
	ttl   time.Duration
}

// NewStore cria um novo Store de sessões sobre o cache compartilhado.
func NewStore(cacheClient cache.Client, ttl time.Duration) *Store {
	return &Store{
		cache: cacheClient,
		ttl:   ttl,
	}
}

// Issue cria uma nova sessão para o token informado e retorna o session id.
func (s *Store) Issue(ctx context.Context, token string) (string, error) {
	sid := uuid.NewString()
	if err := s.cache.Set(ctx, keyPrefix+sid, token, s.ttl); err != nil {
		return "", errors.NewUpstreamError("falha ao gravar a sessão", err)
	}
	return sid, nil
}

// Token resolve o session id para o token upstream. Sessões desconhecidas ou
// expiradas retornam UnauthorizedError: a política é sempre reautenticar.
func (s *Store) Token(ctx context.Context, sid string) (string, error) {
	token, err := s.cache.Get(ctx, keyPrefix+sid)
	if err == cache.ErrCacheMiss {
		return "", errors.NewUnauthorizedError("sessão expirada ou inexistente")
	}
	if err != nil {
		return "", errors.NewUpstreamError("falha ao consultar a sessão", err)
	}
	return token, nil
}

// Revoke descarta a sessão. Chamado no logout, na exclusão de conta e em
// qualquer 401 vindo da API upstream (o token é sempre limpo antes do redirect).
func (s *Store) Revoke(ctx context.Context, sid string) error {
	return s.cache.Delete(ctx, keyPrefix+sid)
}
