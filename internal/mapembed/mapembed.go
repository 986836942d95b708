// Package mapembed deriva a URL do mapa incorporado na tela principal.
package mapembed

import (
	"fmt"
	"net/url"

	"gocontatos/internal/domain"
)

// defaultRegion é a visão regional exibida antes de qualquer contato ser selecionado.
const defaultRegion = "Brazil"

// urlTemplate é o template de embed do Google Maps usado pelo painel.
const urlTemplate = "https://maps.google.com/maps?q=%s&t=&z=13&ie=UTF8&iwloc=&output=embed"

// DefaultURL retorna a URL de embed da região padrão.
func DefaultURL() string {
	return fmt.Sprintf(urlTemplate, url.QueryEscape(defaultRegion))
}

// ContactURL retorna a URL de embed centrada nas coordenadas do contato.
// Contatos sem coordenadas caem na visão regional padrão.
func ContactURL(contact domain.Contact) string {
	if !contact.Address.HasCoordinates() {
		return DefaultURL()
	}
	query := contact.Address.Latitude + "," + contact.Address.Longitude
	return fmt.Sprintf(urlTemplate, url.QueryEscape(query))
}
