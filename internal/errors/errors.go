package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// AppError é a interface central para todos os erros customizados do GoContatos.
// Ela permite que o código externo (Handler) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION_ERROR", "UNAUTHORIZED")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa falhas de validação de formulários.
// Fields mapeia o nome do campo para a mensagem exibida ao usuário.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	// Ordena os campos para que a mensagem seja determinística.
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("Erro de Validação: campos inválidos (%s)", strings.Join(names, ", "))
}
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação a partir do mapa de campos.
func NewValidationError(fields map[string]string) AppError {
	return &ValidationError{Fields: fields}
}

// UnauthorizedError representa uma sessão ausente, inválida ou expirada (401 upstream).
// A política do GoContatos é única: qualquer 401 invalida a sessão e redireciona ao login.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um novo erro de autorização.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// ConflictError representa um conflito de dados reportado pela API upstream
// (e.g., CPF já cadastrado). Field indica o campo do formulário em conflito.
type ConflictError struct {
	Field string
	Msg   string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de dados: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusUnprocessableEntity } // 422
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito scoped a um campo do formulário.
func NewConflictError(field, msg string) AppError {
	return &ConflictError{Field: field, Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// UpstreamError representa qualquer outra falha ao falar com a API upstream
// (rede fora, 5xx, payload inesperado). Para o usuário é sempre uma notificação
// genérica; a operação é abandonada sem retry.
type UpstreamError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro de transporte)
}

func (e *UpstreamError) Error() string    { return fmt.Sprintf("Erro na API de contatos: %s", e.Msg) }
func (e *UpstreamError) Category() string { return "UPSTREAM_ERROR" }
func (e *UpstreamError) HTTPStatus() int  { return http.StatusBadGateway } // 502
func (e *UpstreamError) Unwrap() error    { return e.Err }

// NewUpstreamError cria um erro de comunicação com a API upstream.
func NewUpstreamError(msg string, err error) AppError {
	return &UpstreamError{Msg: msg, Err: err}
}

// --- Helpers para os Handlers (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP e corpo de resposta.
func MapToHTTPStatus(err error) (int, string, string) {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado: tratar como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}

// IsUnauthorized informa se o erro exige a invalidação da sessão + redirect ao login.
func IsUnauthorized(err error) bool {
	var unauthorized *UnauthorizedError
	return errors.As(err, &unauthorized)
}

// AsValidation extrai o mapa de campos de um erro de validação, se houver.
func AsValidation(err error) (*ValidationError, bool) {
	var validation *ValidationError
	ok := errors.As(err, &validation)
	return validation, ok
}

// AsConflict extrai o erro de conflito (e o campo afetado), se houver.
func AsConflict(err error) (*ConflictError, bool) {
	var conflict *ConflictError
	ok := errors.As(err, &conflict)
	return conflict, ok
}
