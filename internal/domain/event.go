package domain

import "time"

// Event representa um evento esportivo cadastrado.
// Subscribers é um contador derivado: precisa sempre refletir o número de
// linhas de inscrição do evento (o repositório de inscrições mantém os dois
// em uma única transação).
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	CEP         string    `json:"cep"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	PhotoPath   string    `json:"photo,omitempty"`
	Rating      float64   `json:"rating"`
	RatingCount int       `json:"rating_count"`
	Subscribers int       `json:"subscribers"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Coordinates devolve a posição do evento para o ranqueamento por distância.
func (e Event) Coordinates() Coordinates {
	return Coordinates{Latitude: e.Latitude, Longitude: e.Longitude}
}

// EventRegistration é o payload de cadastro de evento.
type EventRegistration struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        string `json:"date"` // formato YYYY-MM-DD
	CEP         string `json:"cep"`
	PhotoPath   string `json:"photo,omitempty"`
}

// NearbyEvent é um evento anotado com a distância (km) até o usuário.
type NearbyEvent struct {
	Event
	DistanceKM float64 `json:"distance_km"`
}
