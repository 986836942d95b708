package mapembed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gocontatos/internal/domain"
	"gocontatos/internal/mapembed"
)

func TestDefaultURL(t *testing.T) {
	assert.Equal(t,
		"https://maps.google.com/maps?q=Brazil&t=&z=13&ie=UTF8&iwloc=&output=embed",
		mapembed.DefaultURL())
}

func TestContactURL_ComCoordenadas(t *testing.T) {
	contact := domain.Contact{
		Address: domain.Address{Latitude: "-23.5613", Longitude: "-46.6565"},
	}

	assert.Equal(t,
		"https://maps.google.com/maps?q=-23.5613%2C-46.6565&t=&z=13&ie=UTF8&iwloc=&output=embed",
		mapembed.ContactURL(contact))
}

// TestContactURL_SemCoordenadas verifica que contatos sem latitude/longitude
// caem na visão regional padrão em vez de gerar uma URL quebrada.
func TestContactURL_SemCoordenadas(t *testing.T) {
	casos := []struct {
		nome    string
		address domain.Address
	}{
		{"sem nada", domain.Address{}},
		{"só latitude", domain.Address{Latitude: "-23.5613"}},
		{"só longitude", domain.Address{Longitude: "-46.6565"}},
	}

	for _, caso := range casos {
		t.Run(caso.nome, func(t *testing.T) {
			contact := domain.Contact{Address: caso.address}
			assert.Equal(t, mapembed.DefaultURL(), mapembed.ContactURL(contact))
		})
	}
}
