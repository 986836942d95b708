package domain

import "context"

// Address representa o endereço postal de um Contact.
// complement, latitude e longitude são opcionais; os demais campos são
// obrigatórios para salvar. O ciclo de vida é atrelado ao Contact dono
// (não existe endereço com identidade própria).
type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood"`
	Complement   string `json:"complement"`
	State        string `json:"state"`
	Country      string `json:"country"`
	Zipcode      string `json:"zipcode"`
	Latitude     string `json:"latitude"`
	Longitude    string `json:"longitude"`
}

// HasCoordinates informa se o endereço carrega coordenadas para o mapa.
func (a Address) HasCoordinates() bool {
	return a.Latitude != "" && a.Longitude != ""
}

// Contact representa a entidade principal da agenda.
// ID 0 significa um contato ainda não salvo na API upstream.
type Contact struct {
	ID      int     `json:"id"`
	CPF     string  `json:"cpf"`
	Phone   string  `json:"phone"`
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

// IsNew informa se o contato ainda não foi persistido pela API upstream.
func (c Contact) IsNew() bool { return c.ID == 0 }

// BlankContact retorna o template vazio usado pelo editor ao criar um contato
// (todos os campos string vazios, id 0, endereço aninhado vazio).
func BlankContact() Contact {
	return Contact{}
}

// ContactPage é o resultado de uma busca paginada na API upstream.
type ContactPage struct {
	Contacts   []Contact `json:"contacts"`
	TotalPages int       `json:"total_pages"`
}

// ContactQuery define os parâmetros de busca, ordenação e paginação.
type ContactQuery struct {
	Page    int
	PerPage int
	Sort    string
	Order   string // "asc" ou "desc"
	Search  string
}

// AddressData é o resultado da consulta de endereço por CEP.
type AddressData struct {
	Street       string
	Neighborhood string
	City         string
	State        string
}

// --- Interfaces de Contrato ---

// ContactGateway é a interface que a camada de acesso à API upstream DEVE
// implementar para as operações de contato. Todas as chamadas autenticadas
// recebem o token opaco emitido pela API no login.
type ContactGateway interface {
	List(ctx context.Context, token string, query ContactQuery) (ContactPage, error)
	Create(ctx context.Context, token string, contact Contact) (Contact, error)
	Update(ctx context.Context, token string, contact Contact) (Contact, error)
	Delete(ctx context.Context, token string, id int) error
	AddressByZipcode(ctx context.Context, token string, zipcode string) (AddressData, error)
}
