package contactservice

import (
	"context"
	"sync/atomic"

	"gocontatos/internal/domain"
	"gocontatos/internal/editor"
	"gocontatos/internal/pkg/logger"
	"gocontatos/internal/registry"
)

// Parâmetros fixos da listagem: o servidor pagina de 10 em 10 e a ordenação
// é sempre pelo nome (só a direção muda).
const (
	defaultPerPage = 10
	defaultSort    = "name"
)

// Service orquestra a lista de contatos: busca paginada na API upstream,
// sincronização do espelho por sessão e o ciclo de vida do editor.
type Service struct {
	gateway    domain.ContactGateway
	registries *registry.Store
	seq        atomic.Uint64 // sequência global de fetches (last-request-wins)
	logger     logger.Logger
}

// NewService cria uma nova instância do Service, injetando o gateway da API
// upstream e o Store de espelhos por sessão.
func NewService(gateway domain.ContactGateway, registries *registry.Store, log logger.Logger) *Service {
	return &Service{
		gateway:    gateway,
		registries: registries,
		logger:     log,
	}
}

// Fetch busca uma página de contatos e substitui o espelho da sessão pelo
// resultado. Páginas fora do intervalo [1, totalPages] são no-op: o espelho
// corrente é retornado sem nova chamada à API (os controles de página ficam
// desabilitados nas bordas). O erro retornado preserva o espelho anterior.
func (s *Service) Fetch(ctx context.Context, token, sid string, q domain.ContactQuery) (*registry.Registry, error) {
	reg := s.registries.Get(sid)

	q = normalize(q)
	if q.Page < 1 || q.Page > reg.TotalPages() {
		s.logger.Debug("Página fora do intervalo; fetch ignorado.", map[string]interface{}{"page": q.Page})
		return reg, nil
	}

	// A sequência é atribuída no disparo: respostas que cheguem atrasadas
	// (depois de um fetch mais novo) são descartadas pelo Replace.
	seq := s.seq.Add(1)

	page, err := s.gateway.List(ctx, token, q)
	if err != nil {
		return reg, err
	}

	if !reg.Replace(seq, page.Contacts, page.TotalPages, q.Page) {
		s.logger.Debug("Resposta de fetch obsoleta descartada.", map[string]interface{}{"seq": seq})
	}
	return reg, nil
}

// Refresh recarrega a primeira página com os parâmetros informados (busca ou
// troca de direção de ordenação sempre voltam à página 1).
func (s *Service) Refresh(ctx context.Context, token, sid string, search, order string) (*registry.Registry, error) {
	return s.Fetch(ctx, token, sid, domain.ContactQuery{
		Page:   1,
		Search: search,
		Order:  order,
	})
}

// Delete remove o contato na API upstream e, só após a confirmação, tira a
// entrada do espelho da sessão (nenhuma remoção otimista).
func (s *Service) Delete(ctx context.Context, token, sid string, id int) error {
	if err := s.gateway.Delete(ctx, token, id); err != nil {
		return err
	}
	s.registries.Get(sid).Delete(id)
	s.logger.Info("Contato deletado.", map[string]interface{}{"contact_id": id})
	return nil
}

// Find procura um contato no espelho da sessão (para edição e seleção no mapa).
func (s *Service) Find(sid string, id int) (domain.Contact, bool) {
	return s.registries.Get(sid).Find(id)
}

// NewEditor cria um editor de contato com os colaboradores já vinculados ao
// token da sessão: o editor em si não conhece tokens.
func (s *Service) NewEditor(token string) *editor.Editor {
	bound := boundGateway{gateway: s.gateway, token: token}
	return editor.New(bound, bound, s.logger)
}

// Commit aplica ao espelho o resultado de uma submissão confirmada pelo
// servidor: append para criação, replace-by-id para edição.
func (s *Service) Commit(sid string, wasNew bool, saved domain.Contact) {
	reg := s.registries.Get(sid)
	if wasNew {
		reg.Add(saved)
		return
	}
	reg.Edit(saved.ID, saved)
}

// AddressByZipcode expõe a consulta de CEP para o endpoint de lookup inline.
func (s *Service) AddressByZipcode(ctx context.Context, token, zipcode string) (domain.AddressData, error) {
	return s.gateway.AddressByZipcode(ctx, token, zipcode)
}

// DropSession descarta o espelho da sessão (logout, conta apagada, 401).
func (s *Service) DropSession(sid string) {
	s.registries.Drop(sid)
}

// normalize aplica os padrões da listagem: página 1, 10 por página,
// ordenação por nome ascendente.
func normalize(q domain.ContactQuery) domain.ContactQuery {
	if q.PerPage == 0 {
		q.PerPage = defaultPerPage
	}
	if q.Sort == "" {
		q.Sort = defaultSort
	}
	if q.Order != "desc" {
		q.Order = "asc"
	}
	return q
}

// boundGateway adapta o ContactGateway para os contratos do editor,
// fixando o token da sessão.
type boundGateway struct {
	gateway domain.ContactGateway
	token   string
}

func (b boundGateway) AddressByZipcode(ctx context.Context, zipcode string) (domain.AddressData, error) {
	return b.gateway.AddressByZipcode(ctx, b.token, zipcode)
}

func (b boundGateway) Create(ctx context.Context, contact domain.Contact) (domain.Contact, error) {
	return b.gateway.Create(ctx, b.token, contact)
}

func (b boundGateway) Update(ctx context.Context, contact domain.Contact) (domain.Contact, error) {
	return b.gateway.Update(ctx, b.token, contact)
}
