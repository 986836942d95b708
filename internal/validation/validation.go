// Package validation concentra as validações puras de formulário: nenhuma
// função aqui tem efeito colateral, tudo é calculado sobre os argumentos.
package validation

import (
	"regexp"
	"strings"

	"gocontatos/internal/domain"
)

// Mensagens exibidas nos formulários.
const (
	MsgRequired       = "Campo obrigatório"
	MsgInvalidCPF     = "CPF inválido"
	MsgInvalidEmail   = "E-mail inválido"
	MsgShortPassword  = "Senha deve ter no mínimo 6 caracteres"
	MinPasswordLength = 6
)

// emailRegex segue o shape simples local@dominio.tld usado no cadastro.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// ValidateContact verifica o contato e o endereço aninhado. Todo campo
// obrigatório vazio (ou só com espaços) entra no mapa como "Campo obrigatório";
// complement, latitude e longitude são opcionais. Um CPF preenchido que falhe
// no checksum gera o erro dedicado de CPF, que prevalece sobre tudo e também
// bloqueia a submissão.
func ValidateContact(c domain.Contact) map[string]string {
	errs := map[string]string{}

	required := map[string]string{
		"name":         c.Name,
		"cpf":          c.CPF,
		"phone":        c.Phone,
		"street":       c.Address.Street,
		"number":       c.Address.Number,
		"city":         c.Address.City,
		"neighborhood": c.Address.Neighborhood,
		"state":        c.Address.State,
		"country":      c.Address.Country,
		"zipcode":      c.Address.Zipcode,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			errs[field] = MsgRequired
		}
	}

	// O erro de checksum prevalece sobre o de campo obrigatório.
	if strings.TrimSpace(c.CPF) != "" && !ValidCPF(c.CPF) {
		errs["cpf"] = MsgInvalidCPF
	}

	return errs
}

// ValidateSignup valida o formulário de criação de conta. As três checagens
// rodam de forma independente: campos em branco, e-mail malformado e senha
// curta são todos coletados no mesmo mapa.
func ValidateSignup(form domain.SignupForm) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(form.Name) == "" {
		errs["name"] = MsgRequired
	}

	if strings.TrimSpace(form.Email) == "" {
		errs["email"] = MsgRequired
	} else if !emailRegex.MatchString(form.Email) {
		errs["email"] = MsgInvalidEmail
	}

	if len(form.Password) < MinPasswordLength {
		errs["password"] = MsgShortPassword
	}

	return errs
}

// ValidCPF valida o checksum do CPF (Cadastro de Pessoas Físicas).
// Aceita o valor com ou sem máscara; exige 11 dígitos, rejeita sequências de
// um dígito só e confere os dois dígitos verificadores do módulo 11.
func ValidCPF(cpf string) bool {
	digits := make([]int, 0, 11)
	for _, r := range cpf {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, int(r-'0'))
		case r == '.' || r == '-' || r == ' ':
			// máscara aceita
		default:
			return false
		}
	}
	if len(digits) != 11 {
		return false
	}

	// CPFs com todos os dígitos iguais passam no módulo 11, mas são inválidos.
	allEqual := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return false
	}

	return checkDigit(digits, 9) == digits[9] && checkDigit(digits, 10) == digits[10]
}

// checkDigit calcula o dígito verificador sobre os primeiros n dígitos.
func checkDigit(digits []int, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += digits[i] * (n + 1 - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}
