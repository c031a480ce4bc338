package domain

import "time"

// User representa a entidade do usuário no sistema.
// Latitude e Longitude são sempre derivadas do CEP atual: toda alteração de
// CEP passa pelo geocoding antes de qualquer escrita no banco.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Oculta o hash da senha no JSON de resposta
	CEP          string    `json:"cep"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Coordinates devolve a posição armazenada do usuário, usada como referência
// nas listagens por proximidade.
func (u User) Coordinates() Coordinates {
	return Coordinates{Latitude: u.Latitude, Longitude: u.Longitude}
}

// UserRegistration representa o payload de entrada para o cadastro.
type UserRegistration struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	CEP      string `json:"cep"`
	Password string `json:"password"`
}

// ProfileUpdate representa uma atualização de um único campo do perfil.
// O campo precisa estar na lista de campos permitidos do serviço; valores
// arbitrários de coluna não são aceitos.
type ProfileUpdate struct {
	Field    string `json:"field"`
	NewValue string `json:"new_value"`
}

// UserSummary é a projeção pública usada na listagem de usuários.
type UserSummary struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}
