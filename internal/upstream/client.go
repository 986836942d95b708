package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gocontatos/internal/domain"
	apperror "gocontatos/internal/errors"
	"gocontatos/internal/pkg/cache"
	"gocontatos/internal/pkg/logger"
)

// Client é o cliente HTTP da API de contatos (upstream). Ele ocupa o lugar da
// camada de repositório: toda a persistência vive do outro lado destas chamadas.
// Implementa domain.ContactGateway e domain.AuthGateway.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	cache   cache.Client
	logger  logger.Logger
}

// cepCacheTTL limita por quanto tempo uma resposta de CEP fica no cache.
const cepCacheTTL = 24 * time.Hour

// NewClient cria um novo cliente da API upstream.
// O cache é usado apenas para respostas de CEP (dados estáveis).
func NewClient(baseURL string, timeout time.Duration, cacheClient cache.Client, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
		cache:   cacheClient,
		logger:  log,
	}
}

// --- Autenticação e Conta (domain.AuthGateway) ---

// Login envia as credenciais e extrai o token opaco do header Authorization.
func (c *Client) Login(ctx context.Context, credentials domain.Credentials) (string, error) {
	payload := map[string]interface{}{
		"user": map[string]string{
			"email":    credentials.Email,
			"password": credentials.Password,
		},
	}

	resp, err := c.do(ctx, http.MethodPost, "/login", "", nil, payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.mapStatus(resp, "login recusado")
	}

	token := resp.Header.Get("Authorization")
	if token == "" {
		return "", apperror.NewUpstreamError("resposta de login sem header Authorization", nil)
	}

	c.logger.Info("Login aceito pela API upstream.", map[string]interface{}{"email": credentials.Email})
	return token, nil
}

// Signup cria uma nova conta. A API responde 201 em caso de sucesso.
func (c *Client) Signup(ctx context.Context, form domain.SignupForm) error {
	payload := map[string]interface{}{
		"user": map[string]string{
			"name":     form.Name,
			"email":    form.Email,
			"password": form.Password,
		},
	}

	resp, err := c.do(ctx, http.MethodPost, "/signup", "", nil, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return c.mapStatus(resp, "falha ao criar usuário")
	}
	return nil
}

// Logout encerra a sessão na API upstream.
func (c *Client) Logout(ctx context.Context, token string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/logout", token, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.mapStatus(resp, "falha ao encerrar a sessão")
	}
	return nil
}

// DeleteUser apaga a conta do usuário. A senha vai como query parameter,
// conforme o contrato da API (DELETE /delete_user?password=).
func (c *Client) DeleteUser(ctx context.Context, token string, password string) error {
	query := url.Values{}
	query.Set("password", password)

	resp, err := c.do(ctx, http.MethodDelete, "/delete_user", token, query, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.mapStatus(resp, "falha ao apagar a conta")
	}
	return nil
}

// --- Contatos (domain.ContactGateway) ---

// List busca uma página de contatos com busca, ordenação e paginação server-side.
func (c *Client) List(ctx context.Context, token string, q domain.ContactQuery) (domain.ContactPage, error) {
	query := url.Values{}
	query.Set("page", fmt.Sprintf("%d", q.Page))
	query.Set("per_page", fmt.Sprintf("%d", q.PerPage))
	query.Set("sort", q.Sort)
	query.Set("order", q.Order)
	if q.Search != "" {
		query.Set("search", q.Search)
	}

	resp, err := c.do(ctx, http.MethodGet, "/contacts", token, query, nil)
	if err != nil {
		return domain.ContactPage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ContactPage{}, c.mapStatus(resp, "falha ao carregar contatos")
	}

	var page domain.ContactPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return domain.ContactPage{}, apperror.NewUpstreamError("resposta de contatos inválida", err)
	}
	return page, nil
}

// Create cadastra um novo contato (POST /contacts) e devolve a cópia persistida.
func (c *Client) Create(ctx context.Context, token string, contact domain.Contact) (domain.Contact, error) {
	resp, err := c.do(ctx, http.MethodPost, "/contacts", token, nil, contact)
	if err != nil {
		return domain.Contact{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return domain.Contact{}, c.mapStatus(resp, "falha ao salvar o contato")
	}

	return c.decodeContact(resp.Body, contact)
}

// Update atualiza um contato existente (PUT /contacts/:id).
func (c *Client) Update(ctx context.Context, token string, contact domain.Contact) (domain.Contact, error) {
	path := fmt.Sprintf("/contacts/%d", contact.ID)
	resp, err := c.do(ctx, http.MethodPut, path, token, nil, contact)
	if err != nil {
		return domain.Contact{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Contact{}, c.mapStatus(resp, "falha ao salvar o contato")
	}

	return c.decodeContact(resp.Body, contact)
}

// Delete remove um contato (DELETE /contacts/:id).
func (c *Client) Delete(ctx context.Context, token string, id int) error {
	path := fmt.Sprintf("/contacts/%d", id)
	resp, err := c.do(ctx, http.MethodDelete, path, token, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.mapStatus(resp, "falha ao deletar o contato")
	}
	return nil
}

// addressResponse espelha o payload do endpoint de CEP da API upstream.
// O logradouro vem no campo "address" dentro de "address".
type addressResponse struct {
	Address struct {
		Address      string `json:"address"`
		Neighborhood string `json:"neighborhood"`
		City         string `json:"city"`
		State        string `json:"state"`
	} `json:"address"`
}

// AddressByZipcode consulta o endereço de um CEP (GET /address_by_zipcode).
// Respostas são cacheadas por CEP normalizado; o cache indisponível nunca
// derruba a consulta, apenas a torna mais cara.
func (c *Client) AddressByZipcode(ctx context.Context, token string, zipcode string) (domain.AddressData, error) {
	cacheKey := "cep:" + onlyDigits(zipcode)

	if cached, err := c.cache.Get(ctx, cacheKey); err == nil {
		var data domain.AddressData
		if err := json.Unmarshal([]byte(cached), &data); err == nil {
			c.logger.Debug("CEP resolvido pelo cache.", map[string]interface{}{"zipcode": zipcode})
			return data, nil
		}
	}

	query := url.Values{}
	query.Set("address[zipcode]", zipcode)

	resp, err := c.do(ctx, http.MethodGet, "/address_by_zipcode", token, query, nil)
	if err != nil {
		return domain.AddressData{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.AddressData{}, c.mapStatus(resp, "falha ao consultar o CEP")
	}

	var body addressResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.AddressData{}, apperror.NewUpstreamError("resposta de CEP inválida", err)
	}

	data := domain.AddressData{
		Street:       body.Address.Address,
		Neighborhood: body.Address.Neighborhood,
		City:         body.Address.City,
		State:        body.Address.State,
	}

	if encoded, err := json.Marshal(data); err == nil {
		if cacheErr := c.cache.Set(ctx, cacheKey, string(encoded), cepCacheTTL); cacheErr != nil {
			c.logger.Debug("Falha ao cachear CEP (ignorada).", map[string]interface{}{"zipcode": zipcode})
		}
	}

	return data, nil
}

// --- Auxiliares ---

// do monta e executa uma requisição à API upstream, com timeout de contexto
// e o token no header Authorization quando presente.
func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body interface{}) (*http.Response, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, apperror.NewUpstreamError("falha ao serializar o payload", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctxTimeout, method, endpoint, reader)
	if err != nil {
		return nil, apperror.NewUpstreamError("falha ao montar a requisição", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Falha de transporte ao chamar a API upstream.", err)
		return nil, apperror.NewUpstreamError("API de contatos indisponível", err)
	}
	return resp, nil
}

// mapStatus traduz um status de erro da API upstream para o AppError correspondente.
// 401 vira Unauthorized (sessão invalidada), 422 vira Conflict de CPF,
// o resto é erro genérico de upstream.
func (c *Client) mapStatus(resp *http.Response, msg string) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return apperror.NewUnauthorizedError("a API upstream rejeitou o token")
	case http.StatusUnprocessableEntity:
		return apperror.NewConflictError("cpf", "CPF já cadastrado")
	case http.StatusNotFound:
		return apperror.NewNotFoundError(msg)
	default:
		return apperror.NewUpstreamError(fmt.Sprintf("%s (status %d)", msg, resp.StatusCode), nil)
	}
}

// decodeContact lê o contato persistido do corpo da resposta. Algumas
// implementações da API respondem corpo vazio; nesse caso devolvemos a
// cópia local enviada, que já reflete o estado salvo.
func (c *Client) decodeContact(body io.Reader, sent domain.Contact) (domain.Contact, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return domain.Contact{}, apperror.NewUpstreamError("falha ao ler a resposta", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return sent, nil
	}

	var saved domain.Contact
	if err := json.Unmarshal(raw, &saved); err != nil {
		return domain.Contact{}, apperror.NewUpstreamError("resposta de contato inválida", err)
	}
	// APIs que respondem sem o id (ou zerado) não devem apagar o id local.
	if saved.ID == 0 {
		saved.ID = sent.ID
	}
	return saved, nil
}

// onlyDigits remove a máscara do CEP para compor a chave de cache.
func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
