package domain

import "time"

// Court representa uma quadra esportiva cadastrada.
// Rating e RatingCount só são alterados pelo agregador de avaliações
// (leitura-cálculo-escrita atômica no repositório); nunca diretamente.
type Court struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CEP         string    `json:"cep"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	PhotoPath   string    `json:"photo,omitempty"`
	Rating      float64   `json:"rating"`
	RatingCount int       `json:"rating_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Coordinates devolve a posição da quadra para o ranqueamento por distância.
func (c Court) Coordinates() Coordinates {
	return Coordinates{Latitude: c.Latitude, Longitude: c.Longitude}
}

// CourtRegistration é o payload de cadastro de quadra. As coordenadas não
// entram aqui: são resolvidas a partir do CEP no momento do cadastro.
type CourtRegistration struct {
	Name      string `json:"name"`
	CEP       string `json:"cep"`
	PhotoPath string `json:"photo,omitempty"`
}

// NearbyCourt é uma quadra anotada com a distância (km) até o usuário.
type NearbyCourt struct {
	Court
	DistanceKM float64 `json:"distance_km"`
}
