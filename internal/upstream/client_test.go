package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gocontatos/internal/domain"
	apperror "gocontatos/internal/errors"
	"gocontatos/internal/pkg/cache"
	"gocontatos/internal/pkg/logger"
	"gocontatos/internal/upstream"
)

// memoryCache é um cache em memória para os testes, sem expiração.
type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}}
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return val, nil
}

func (m *memoryCache) GetInt(ctx context.Context, key string) (int, error) {
	return 0, cache.ErrCacheMiss
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	return nil
}

func (m *memoryCache) Incr(ctx context.Context, key string) error { return nil }

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func newClient(server *httptest.Server) *upstream.Client {
	return upstream.NewClient(server.URL, 5*time.Second, newMemoryCache(), logger.NewLogger("error"))
}

// TestLogin_ExtraiTokenDoHeader verifica o contrato de login: credenciais
// aninhadas em "user" no corpo e token opaco no header Authorization.
func TestLogin_ExtraiTokenDoHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)

		var payload struct {
			User struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			} `json:"user"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "maria@example.com", payload.User.Email)
		assert.Equal(t, "s3nh4forte", payload.User.Password)

		w.Header().Set("Authorization", "tok123")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	token, err := newClient(server).Login(context.Background(), domain.Credentials{
		Email:    "maria@example.com",
		Password: "s3nh4forte",
	})

	assert.NoError(t, err)
	assert.Equal(t, "tok123", token)
}

func TestLogin_CredenciaisInvalidas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newClient(server).Login(context.Background(), domain.Credentials{})

	assert.True(t, apperror.IsUnauthorized(err))
}

func TestLogin_SemHeaderAuthorization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := newClient(server).Login(context.Background(), domain.Credentials{})

	assert.Error(t, err)
	assert.False(t, apperror.IsUnauthorized(err))
}

// TestList_CodificaConsultaEDecodificaPagina verifica a codificação dos
// parâmetros de paginação e o parse do envelope {contacts, total_pages}.
func TestList_CodificaConsultaEDecodificaPagina(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contacts", r.URL.Path)
		assert.Equal(t, "tok123", r.Header.Get("Authorization"))

		query := r.URL.Query()
		assert.Equal(t, "2", query.Get("page"))
		assert.Equal(t, "10", query.Get("per_page"))
		assert.Equal(t, "name", query.Get("sort"))
		assert.Equal(t, "desc", query.Get("order"))
		assert.Equal(t, "silva", query.Get("search"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"contacts":[{"id":42,"name":"Maria Silva","cpf":"52998224725"}],"total_pages":3}`))
	}))
	defer server.Close()

	page, err := newClient(server).List(context.Background(), "tok123", domain.ContactQuery{
		Page:    2,
		PerPage: 10,
		Sort:    "name",
		Order:   "desc",
		Search:  "silva",
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Contacts, 1)
	assert.Equal(t, 42, page.Contacts[0].ID)
	assert.Equal(t, "Maria Silva", page.Contacts[0].Name)
}

func TestList_BuscaVaziaOmiteParametro(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, presente := r.URL.Query()["search"]
		assert.False(t, presente)
		_, _ = w.Write([]byte(`{"contacts":[],"total_pages":1}`))
	}))
	defer server.Close()

	_, err := newClient(server).List(context.Background(), "tok123", domain.ContactQuery{Page: 1, PerPage: 10})

	assert.NoError(t, err)
}

// TestCreate_CPFDuplicadoViraConflito verifica o mapeamento do 422 da API
// para o conflito do campo cpf.
func TestCreate_CPFDuplicadoViraConflito(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	_, err := newClient(server).Create(context.Background(), "tok123", domain.Contact{})

	conflict, ok := apperror.AsConflict(err)
	assert.True(t, ok)
	assert.Equal(t, "cpf", conflict.Field)
}

// TestUpdate_CorpoVazioDevolveCopiaEnviada cobre APIs que respondem 200 sem
// corpo: a cópia local enviada é devolvida intacta, com o id preservado.
func TestUpdate_CorpoVazioDevolveCopiaEnviada(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/contacts/42", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	enviado := domain.Contact{ID: 42, Name: "Maria Silva"}
	salvo, err := newClient(server).Update(context.Background(), "tok123", enviado)

	assert.NoError(t, err)
	assert.Equal(t, enviado, salvo)
}

func TestDelete_ChamaRotaDoContato(t *testing.T) {
	var chamado string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chamado = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := newClient(server).Delete(context.Background(), "tok123", 42)

	assert.NoError(t, err)
	assert.Equal(t, "DELETE /contacts/42", chamado)
}

func TestDelete_TokenRejeitado(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	err := newClient(server).Delete(context.Background(), "tok123", 42)

	assert.True(t, apperror.IsUnauthorized(err))
}

// TestAddressByZipcode_ConsultaECacheia verifica a codificação da chave
// address[zipcode], o parse do envelope aninhado e o cache por CEP: a
// segunda consulta do mesmo CEP não volta à API.
func TestAddressByZipcode_ConsultaECacheia(t *testing.T) {
	chamadas := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chamadas++
		assert.Equal(t, "/address_by_zipcode", r.URL.Path)
		assert.Equal(t, "01311-000", r.URL.Query().Get("address[zipcode]"))

		_, _ = w.Write([]byte(`{"address":{"address":"Avenida Paulista","neighborhood":"Bela Vista","city":"São Paulo","state":"SP"}}`))
	}))
	defer server.Close()

	client := newClient(server)

	data, err := client.AddressByZipcode(context.Background(), "tok123", "01311-000")
	assert.NoError(t, err)
	assert.Equal(t, domain.AddressData{
		Street:       "Avenida Paulista",
		Neighborhood: "Bela Vista",
		City:         "São Paulo",
		State:        "SP",
	}, data)

	deNovo, err := client.AddressByZipcode(context.Background(), "tok123", "01311-000")
	assert.NoError(t, err)
	assert.Equal(t, data, deNovo)
	assert.Equal(t, 1, chamadas)
}

func TestDeleteUser_EnviaSenhaNaQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/delete_user", r.URL.Path)
		assert.Equal(t, "s3nh4forte", r.URL.Query().Get("password"))
		assert.Equal(t, "tok123", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := newClient(server).DeleteUser(context.Background(), "tok123", "s3nh4forte")

	assert.NoError(t, err)
}

func TestSignup_Criado(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/signup", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	err := newClient(server).Signup(context.Background(), domain.SignupForm{
		Name:     "Maria Silva",
		Email:    "maria@example.com",
		Password: "s3nh4forte",
	})

	assert.NoError(t, err)
}
