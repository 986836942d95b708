// Package editor implementa a máquina de estados do formulário de contato:
// Creating (template em branco) ↔ Editing (cópia local de um contato) →
// Submitting → Closed. As edições mutam apenas a cópia local; nada chega à
// API upstream antes do Submit.
package editor

import (
	"context"

	"gocontatos/internal/domain"
	apperror "gocontatos/internal/errors"
	"gocontatos/internal/pkg/logger"
	"gocontatos/internal/validation"
)

// State é o estado corrente do editor.
type State int

const (
	StateClosed State = iota
	StateCreating
	StateEditing
	StateSubmitting
)

const (
	// zipcodeLength é o comprimento do CEP com máscara ("01311-000").
	// A consulta de endereço só dispara quando o campo atinge esse tamanho:
	// é o predicado explícito de gatilho, desacoplado do handler genérico.
	zipcodeLength = 9

	// defaultCountry preenche o país quando o CEP resolve o endereço.
	defaultCountry = "Brasil"
)

// AddressLookup é o colaborador que resolve um CEP em dados de endereço.
// O token da sessão já deve estar vinculado pela camada de serviço.
type AddressLookup interface {
	AddressByZipcode(ctx context.Context, zipcode string) (domain.AddressData, error)
}

// ContactSaver é o colaborador que persiste o contato na API upstream.
type ContactSaver interface {
	Create(ctx context.Context, contact domain.Contact) (domain.Contact, error)
	Update(ctx context.Context, contact domain.Contact) (domain.Contact, error)
}

// Editor é a máquina de estados de um formulário de contato.
type Editor struct {
	state   State
	contact domain.Contact
	errs    map[string]string
	lookup  AddressLookup
	saver   ContactSaver
	logger  logger.Logger
}

// New cria um Editor fechado; chame Open para começar a editar.
func New(lookup AddressLookup, saver ContactSaver, log logger.Logger) *Editor {
	return &Editor{
		state:  StateClosed,
		errs:   map[string]string{},
		lookup: lookup,
		saver:  saver,
		logger: log,
	}
}

// Open abre o editor. Com contato, entra em Editing sobre uma cópia local;
// sem contato, entra em Creating sobre o template em branco (sempre o mesmo:
// strings vazias, id 0, endereço aninhado vazio).
func (e *Editor) Open(contact *domain.Contact) {
	e.errs = map[string]string{}
	if contact != nil {
		e.state = StateEditing
		e.contact = *contact
		return
	}
	e.state = StateCreating
	e.contact = domain.BlankContact()
}

// State retorna o estado corrente.
func (e *Editor) State() State { return e.state }

// Contact retorna a cópia local corrente.
func (e *Editor) Contact() domain.Contact { return e.contact }

// Errors retorna o mapa de erros de campo da última submissão.
func (e *Editor) Errors() map[string]string { return e.errs }

// ClearError limpa o erro de um campo (comportamento de blur do formulário).
func (e *Editor) ClearError(field string) {
	delete(e.errs, field)
}

// SetField muta um campo de topo da cópia local. Campos desconhecidos são ignorados.
func (e *Editor) SetField(name, value string) {
	switch name {
	case "name":
		e.contact.Name = value
	case "cpf":
		e.contact.CPF = value
	case "phone":
		e.contact.Phone = value
	}
}

// SetAddressField muta um campo do endereço aninhado. O campo zipcode dispara
// a consulta de CEP quando (e somente quando) o valor atinge o comprimento
// completo da máscara; o resultado sobrescreve rua, bairro, cidade e estado e
// preenche o país com o padrão. Um 401 na consulta é propagado para que o
// chamador invalide a sessão; qualquer outra falha de consulta é ignorada
// (o usuário ainda pode preencher o endereço à mão).
func (e *Editor) SetAddressField(ctx context.Context, name, value string) error {
	switch name {
	case "street":
		e.contact.Address.Street = value
	case "number":
		e.contact.Address.Number = value
	case "city":
		e.contact.Address.City = value
	case "neighborhood":
		e.contact.Address.Neighborhood = value
	case "complement":
		e.contact.Address.Complement = value
	case "state":
		e.contact.Address.State = value
	case "country":
		e.contact.Address.Country = value
	case "latitude":
		e.contact.Address.Latitude = value
	case "longitude":
		e.contact.Address.Longitude = value
	case "zipcode":
		e.contact.Address.Zipcode = value
		if len(value) == zipcodeLength {
			return e.resolveZipcode(ctx, value)
		}
	}
	return nil
}

// resolveZipcode executa a consulta de CEP e aplica o resultado à cópia local.
func (e *Editor) resolveZipcode(ctx context.Context, zipcode string) error {
	data, err := e.lookup.AddressByZipcode(ctx, zipcode)
	if err != nil {
		if apperror.IsUnauthorized(err) {
			return err
		}
		e.logger.Debug("Consulta de CEP falhou (ignorada).", map[string]interface{}{"zipcode": zipcode})
		return nil
	}

	e.contact.Address.Street = data.Street
	e.contact.Address.Neighborhood = data.Neighborhood
	e.contact.Address.City = data.City
	e.contact.Address.State = data.State
	e.contact.Address.Country = defaultCountry
	return nil
}

// Submit valida e persiste a cópia local. Em erro de validação, o editor
// volta ao estado de edição com o mapa de erros preenchido e nada é enviado.
// Em sucesso, o contato salvo é retornado e o editor fecha. Um 422 de CPF
// duplicado vira erro do campo cpf e o editor permanece aberto; um 401 é
// propagado; qualquer outra falha mantém o editor aberto para nova tentativa.
func (e *Editor) Submit(ctx context.Context) (domain.Contact, error) {
	if errs := validation.ValidateContact(e.contact); len(errs) > 0 {
		e.errs = errs
		return domain.Contact{}, apperror.NewValidationError(errs)
	}

	editing := e.state
	e.state = StateSubmitting

	var saved domain.Contact
	var err error
	if e.contact.IsNew() {
		saved, err = e.saver.Create(ctx, e.contact)
	} else {
		saved, err = e.saver.Update(ctx, e.contact)
	}

	if err != nil {
		e.state = editing
		if conflict, ok := apperror.AsConflict(err); ok {
			e.errs = map[string]string{conflict.Field: conflict.Msg}
		}
		return domain.Contact{}, err
	}

	e.contact = saved
	e.errs = map[string]string{}
	e.state = StateClosed
	return saved, nil
}
