// Package registry mantém o espelho em memória da última página de contatos
// buscada na API upstream, por sessão. O conteúdo é sempre o reflexo do último
// fetch bem-sucedido ou de uma mutação confirmada pelo servidor; nenhum
// contato "local" sobrevive a um refresh completo da lista.
package registry

import (
	"sync"

	"gocontatos/internal/domain"
)

// Registry é o espelho de contatos de uma sessão.
type Registry struct {
	mu         sync.Mutex
	contacts   []domain.Contact
	totalPages int
	page       int
	seq        uint64 // sequência do último fetch aplicado
}

// New cria um Registry vazio.
func New() *Registry {
	return &Registry{totalPages: 1, page: 1}
}

// Replace substitui o espelho inteiro pelo resultado de um fetch.
// seq é a sequência monotônica atribuída à requisição no momento do disparo:
// uma resposta atrasada (seq menor que a última aplicada) é ignorada,
// garantindo a disciplina last-request-wins. Retorna se a resposta foi aplicada.
func (r *Registry) Replace(seq uint64, contacts []domain.Contact, totalPages int, page int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if seq <= r.seq {
		return false
	}
	r.seq = seq
	r.contacts = append([]domain.Contact(nil), contacts...)
	if totalPages < 1 {
		totalPages = 1
	}
	r.totalPages = totalPages
	r.page = page
	return true
}

// Add anexa um contato recém-criado (confirmado pelo servidor) ao final da lista.
func (r *Registry) Add(contact domain.Contact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contacts = append(r.contacts, contact)
}

// Edit substitui o contato de mesmo id pela cópia editada, preservando a
// posição na lista. Contatos com outro id não são tocados.
func (r *Registry) Edit(id int, edited domain.Contact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, contact := range r.contacts {
		if contact.ID == id {
			r.contacts[i] = edited
			return
		}
	}
}

// Delete remove o contato com o id informado, se presente.
func (r *Registry) Delete(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	filtered := r.contacts[:0]
	for _, contact := range r.contacts {
		if contact.ID != id {
			filtered = append(filtered, contact)
		}
	}
	r.contacts = filtered
}

// Find retorna o contato com o id informado, se presente no espelho.
func (r *Registry) Find(id int) (domain.Contact, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, contact := range r.contacts {
		if contact.ID == id {
			return contact, true
		}
	}
	return domain.Contact{}, false
}

// Contacts retorna uma cópia da lista espelhada.
func (r *Registry) Contacts() []domain.Contact {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Contact(nil), r.contacts...)
}

// TotalPages retorna o total de páginas do último fetch aplicado.
func (r *Registry) TotalPages() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalPages
}

// Page retorna a página corrente do último fetch aplicado.
func (r *Registry) Page() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.page
}

// Store guarda o Registry de cada sessão ativa.
type Store struct {
	mu         sync.RWMutex
	registries map[string]*Registry
}

// NewStore cria um Store vazio.
func NewStore() *Store {
	return &Store{registries: make(map[string]*Registry)}
}

// Get retorna o Registry da sessão, criando um vazio na primeira visita.
func (s *Store) Get(sid string) *Registry {
	s.mu.RLock()
	reg, ok := s.registries[sid]
	s.mu.RUnlock()
	if ok {
		return reg
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if reg, ok := s.registries[sid]; ok {
		return reg
	}
	reg = New()
	s.registries[sid] = reg
	return reg
}

// Drop descarta o Registry da sessão (logout, conta apagada, 401).
func (s *Store) Drop(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registries, sid)
}
