package domain

// Coordinates representa um par latitude/longitude em graus decimais.
// É sempre derivado do CEP corrente da entidade dona — nunca editado à mão.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Address é o endereço normalizado devolvido pela consulta de CEP (ViaCEP).
// Serve apenas de insumo para a consulta de coordenadas (Nominatim).
type Address struct {
	CEP    string `json:"cep"`
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
}
