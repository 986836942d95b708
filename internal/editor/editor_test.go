package editor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gocontatos/internal/domain"
	"gocontatos/internal/editor"
	apperror "gocontatos/internal/errors"
	"gocontatos/internal/pkg/logger"
	"gocontatos/internal/validation"
)

// MockAddressLookup é uma implementação mock da interface AddressLookup.
type MockAddressLookup struct {
	mock.Mock
}

func (m *MockAddressLookup) AddressByZipcode(ctx context.Context, zipcode string) (domain.AddressData, error) {
	args := m.Called(ctx, zipcode)
	return args.Get(0).(domain.AddressData), args.Error(1)
}

// MockContactSaver é uma implementação mock da interface ContactSaver.
type MockContactSaver struct {
	mock.Mock
}

func (m *MockContactSaver) Create(ctx context.Context, contact domain.Contact) (domain.Contact, error) {
	args := m.Called(ctx, contact)
	return args.Get(0).(domain.Contact), args.Error(1)
}

func (m *MockContactSaver) Update(ctx context.Context, contact domain.Contact) (domain.Contact, error) {
	args := m.Called(ctx, contact)
	return args.Get(0).(domain.Contact), args.Error(1)
}

func newEditor() (*editor.Editor, *MockAddressLookup, *MockContactSaver) {
	lookup := new(MockAddressLookup)
	saver := new(MockContactSaver)
	return editor.New(lookup, saver, logger.NewLogger("error")), lookup, saver
}

func contatoValido() domain.Contact {
	return domain.Contact{
		ID:    10,
		CPF:   "52998224725",
		Phone: "11 97777-0000",
		Name:  "Maria Silva",
		Address: domain.Address{
			Street:       "Avenida Paulista",
			Number:       "1578",
			City:         "São Paulo",
			Neighborhood: "Bela Vista",
			State:        "SP",
			Country:      "Brasil",
			Zipcode:      "01310200",
		},
	}
}

// TestOpen_SemContatoEIdempotente verifica que abrir sem contato duas vezes
// seguidas produz exatamente o mesmo template em branco.
func TestOpen_SemContatoEIdempotente(t *testing.T) {
	ed, _, _ := newEditor()

	ed.Open(nil)
	primeiro := ed.Contact()
	assert.Equal(t, editor.StateCreating, ed.State())

	ed.Open(nil)
	segundo := ed.Contact()

	assert.Equal(t, primeiro, segundo)
	assert.Equal(t, domain.BlankContact(), segundo)
	assert.True(t, segundo.IsNew())
}

// TestOpen_ComContatoEditaCopiaLocal verifica que as edições mutam só a cópia.
func TestOpen_ComContatoEditaCopiaLocal(t *testing.T) {
	ed, _, _ := newEditor()
	original := contatoValido()

	ed.Open(&original)
	assert.Equal(t, editor.StateEditing, ed.State())

	ed.SetField("name", "Outro Nome")

	assert.Equal(t, "Outro Nome", ed.Contact().Name)
	assert.Equal(t, "Maria Silva", original.Name)
}

// TestSetAddressField_CEPCompletoDisparaUmaConsulta verifica o predicado de
// gatilho: um CEP com a máscara completa (9 caracteres) dispara exatamente
// uma consulta, e o resultado sobrescreve o endereço com país padrão.
func TestSetAddressField_CEPCompletoDisparaUmaConsulta(t *testing.T) {
	ed, lookup, _ := newEditor()
	ed.Open(nil)

	lookup.On("AddressByZipcode", mock.Anything, "01311-000").Return(domain.AddressData{
		Street:       "Avenida Paulista",
		Neighborhood: "Bela Vista",
		City:         "São Paulo",
		State:        "SP",
	}, nil).Once()

	err := ed.SetAddressField(context.Background(), "zipcode", "01311-000")

	assert.NoError(t, err)
	address := ed.Contact().Address
	assert.Equal(t, "01311-000", address.Zipcode)
	assert.Equal(t, "Avenida Paulista", address.Street)
	assert.Equal(t, "Bela Vista", address.Neighborhood)
	assert.Equal(t, "São Paulo", address.City)
	assert.Equal(t, "SP", address.State)
	assert.Equal(t, "Brasil", address.Country)
	lookup.AssertExpectations(t)
	lookup.AssertNumberOfCalls(t, "AddressByZipcode", 1)
}

// TestSetAddressField_CEPIncompletoNaoConsulta verifica que um valor abaixo
// do comprimento esperado não dispara consulta nenhuma.
func TestSetAddressField_CEPIncompletoNaoConsulta(t *testing.T) {
	ed, lookup, _ := newEditor()
	ed.Open(nil)

	err := ed.SetAddressField(context.Background(), "zipcode", "0131")

	assert.NoError(t, err)
	assert.Equal(t, "0131", ed.Contact().Address.Zipcode)
	lookup.AssertNotCalled(t, "AddressByZipcode", mock.Anything, mock.Anything)
}

// TestSetAddressField_ConsultaFalhaEIgnorada verifica que uma falha comum de
// consulta não derruba a edição (o usuário preenche à mão).
func TestSetAddressField_ConsultaFalhaEIgnorada(t *testing.T) {
	ed, lookup, _ := newEditor()
	ed.Open(nil)

	lookup.On("AddressByZipcode", mock.Anything, "01311-000").
		Return(domain.AddressData{}, apperror.NewUpstreamError("fora do ar", nil))

	err := ed.SetAddressField(context.Background(), "zipcode", "01311-000")

	assert.NoError(t, err)
	assert.Empty(t, ed.Contact().Address.Street)
}

// TestSetAddressField_401Propaga verifica que um 401 na consulta é propagado
// para o chamador invalidar a sessão.
func TestSetAddressField_401Propaga(t *testing.T) {
	ed, lookup, _ := newEditor()
	ed.Open(nil)

	lookup.On("AddressByZipcode", mock.Anything, "01311-000").
		Return(domain.AddressData{}, apperror.NewUnauthorizedError("token rejeitado"))

	err := ed.SetAddressField(context.Background(), "zipcode", "01311-000")

	assert.True(t, apperror.IsUnauthorized(err))
}

// TestSubmit_ValidacaoBloqueia verifica que erros de validação impedem
// qualquer chamada à API e mantêm o editor aberto com o mapa de erros.
func TestSubmit_ValidacaoBloqueia(t *testing.T) {
	ed, _, saver := newEditor()
	ed.Open(nil)

	_, err := ed.Submit(context.Background())

	assert.Error(t, err)
	_, ok := apperror.AsValidation(err)
	assert.True(t, ok)
	assert.Equal(t, editor.StateCreating, ed.State())
	assert.Equal(t, validation.MsgRequired, ed.Errors()["name"])
	saver.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	saver.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// TestSubmit_CriaQuandoIDZero verifica o caminho de criação e o fechamento.
func TestSubmit_CriaQuandoIDZero(t *testing.T) {
	ed, _, saver := newEditor()
	ed.Open(nil)

	novo := contatoValido()
	novo.ID = 0
	aplicaContato(t, ed, novo)

	salvo := novo
	salvo.ID = 55
	saver.On("Create", mock.Anything, novo).Return(salvo, nil)

	saved, err := ed.Submit(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 55, saved.ID)
	assert.Equal(t, editor.StateClosed, ed.State())
	saver.AssertExpectations(t)
}

// TestSubmit_AtualizaQuandoIDPositivo verifica o caminho de atualização.
func TestSubmit_AtualizaQuandoIDPositivo(t *testing.T) {
	ed, _, saver := newEditor()
	existente := contatoValido()
	ed.Open(&existente)
	ed.SetField("name", "Nome Editado")

	esperado := existente
	esperado.Name = "Nome Editado"
	saver.On("Update", mock.Anything, esperado).Return(esperado, nil)

	saved, err := ed.Submit(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, "Nome Editado", saved.Name)
	assert.Equal(t, editor.StateClosed, ed.State())
	saver.AssertExpectations(t)
}

// TestSubmit_ConflitoDeCPFMantemAberto verifica que o 422 de CPF duplicado
// vira erro do campo cpf e o editor continua aberto para correção.
func TestSubmit_ConflitoDeCPFMantemAberto(t *testing.T) {
	ed, _, saver := newEditor()
	existente := contatoValido()
	ed.Open(&existente)

	saver.On("Update", mock.Anything, existente).
		Return(domain.Contact{}, apperror.NewConflictError("cpf", "CPF já cadastrado"))

	_, err := ed.Submit(context.Background())

	assert.Error(t, err)
	assert.Equal(t, editor.StateEditing, ed.State())
	assert.Equal(t, "CPF já cadastrado", ed.Errors()["cpf"])
}

// TestSubmit_FalhaGenericaMantemAberto verifica que qualquer outra falha
// mantém o editor aberto sem erros de campo.
func TestSubmit_FalhaGenericaMantemAberto(t *testing.T) {
	ed, _, saver := newEditor()
	ed.Open(nil)
	novo := contatoValido()
	novo.ID = 0
	aplicaContato(t, ed, novo)

	saver.On("Create", mock.Anything, novo).
		Return(domain.Contact{}, apperror.NewUpstreamError("fora do ar", nil))

	_, err := ed.Submit(context.Background())

	assert.Error(t, err)
	assert.Equal(t, editor.StateCreating, ed.State())
	assert.Empty(t, ed.Errors())
}

// aplicaContato replica um contato campo a campo na cópia local do editor.
func aplicaContato(t *testing.T, ed *editor.Editor, c domain.Contact) {
	t.Helper()
	ctx := context.Background()

	ed.SetField("name", c.Name)
	ed.SetField("cpf", c.CPF)
	ed.SetField("phone", c.Phone)
	assert.NoError(t, ed.SetAddressField(ctx, "street", c.Address.Street))
	assert.NoError(t, ed.SetAddressField(ctx, "number", c.Address.Number))
	assert.NoError(t, ed.SetAddressField(ctx, "neighborhood", c.Address.Neighborhood))
	assert.NoError(t, ed.SetAddressField(ctx, "city", c.Address.City))
	assert.NoError(t, ed.SetAddressField(ctx, "state", c.Address.State))
	assert.NoError(t, ed.SetAddressField(ctx, "country", c.Address.Country))
	assert.NoError(t, ed.SetAddressField(ctx, "complement", c.Address.Complement))
	assert.NoError(t, ed.SetAddressField(ctx, "latitude", c.Address.Latitude))
	assert.NoError(t, ed.SetAddressField(ctx, "longitude", c.Address.Longitude))

	assert.NoError(t, ed.SetAddressField(ctx, "zipcode", c.Address.Zipcode))
}
