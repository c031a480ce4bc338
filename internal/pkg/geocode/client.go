package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"quadrahub/internal/domain"
	apperror "quadrahub/internal/errors"
	"quadrahub/internal/pkg/logger"
)

// Resolver define o contrato de resolução de CEP -> coordenadas.
// Os serviços de cadastro dependem desta interface, nunca do cliente concreto.
type Resolver interface {
	Resolve(ctx context.Context, cep string) (domain.Coordinates, error)
}

// country é fixo: o app só atende CEPs brasileiros.
const country = "Brazil"

// Client resolve um CEP em coordenadas encadeando dois serviços externos:
// ViaCEP (CEP -> endereço normalizado) e Nominatim (endereço -> lat/lon).
// Não há cache: cada resolução consulta os dois serviços de novo. Os dois
// call sites (cadastro/atualização de usuário e cadastro de quadra/evento)
// rejeitam a escrita inteira se a resolução falhar.
type Client struct {
	ViaCEPBaseURL    string
	NominatimBaseURL string
	HTTPClient       *http.Client
	Timeout          time.Duration
	logger           logger.Logger
}

// NewClient cria e retorna uma nova instância do resolvedor de CEP.
func NewClient(viaCEPBase, nominatimBase string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		ViaCEPBaseURL:    strings.TrimRight(viaCEPBase, "/"),
		NominatimBaseURL: strings.TrimRight(nominatimBase, "/"),
		HTTPClient:       &http.Client{},
		Timeout:          timeout,
		logger:           log,
	}
}

// viaCEPResponse é o corpo devolvido pelo ViaCEP. Só três campos interessam.
type viaCEPResponse struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       bool   `json:"erro"`
}

// nominatimResult é um candidato devolvido pelo Nominatim. Lat/Lon chegam
// como strings e precisam ser parseadas.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve transforma um CEP em coordenadas. Falhas têm dois sabores:
// CEP inválido (erro de entrada do usuário, 400) e todo o resto
// (indisponibilidade transitória, 503, seguro repetir com backoff).
func (c *Client) Resolve(ctx context.Context, cep string) (domain.Coordinates, error) {
	addr, err := c.lookupAddress(ctx, cep)
	if err != nil {
		return domain.Coordinates{}, err
	}

	return c.lookupCoordinates(ctx, addr)
}

// lookupAddress consulta o ViaCEP e extrai rua, cidade e estado.
func (c *Client) lookupAddress(ctx context.Context, cep string) (domain.Address, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/ws/%s/json/", c.ViaCEPBaseURL, url.PathEscape(cep))

	req, err := http.NewRequestWithContext(ctxTimeout, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Address{}, apperror.NewInternalError("Falha ao montar requisição do ViaCEP.", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		// Timeout e erro de transporte são indistinguíveis do ponto de vista
		// do chamador: a consulta de endereço está indisponível.
		c.logger.Error("Falha de transporte na consulta ao ViaCEP.", err)
		return domain.Address{}, apperror.NewUnavailableError("Erro ao buscar o CEP.", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var body viaCEPResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			c.logger.Error("Resposta do ViaCEP não parseável.", err)
			return domain.Address{}, apperror.NewUnavailableError("Erro ao buscar o CEP.", err)
		}
		// O ViaCEP responde 200 com {"erro": true} para CEPs bem-formados
		// que não existem; tratamos igual ao 400.
		if body.Erro {
			return domain.Address{}, apperror.NewInvalidPostalCodeError(cep)
		}
		return domain.Address{
			CEP:    cep,
			Street: body.Logradouro,
			City:   body.Localidade,
			State:  body.UF,
		}, nil

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// 400-class: o CEP em si é inválido. Erro de entrada, não de infra.
		return domain.Address{}, apperror.NewInvalidPostalCodeError(cep)

	default:
		c.logger.Warn("ViaCEP devolveu status inesperado.", map[string]interface{}{"status": resp.StatusCode, "cep": cep})
		return domain.Address{}, apperror.NewUnavailableError("Erro ao buscar o CEP.", nil)
	}
}

// lookupCoordinates consulta o Nominatim com o endereço normalizado e parseia
// o primeiro candidato devolvido.
func (c *Client) lookupCoordinates(ctx context.Context, addr domain.Address) (domain.Coordinates, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	query := url.Values{}
	query.Set("street", addr.Street)
	query.Set("city", addr.City)
	query.Set("state", addr.State)
	query.Set("country", country)
	query.Set("format", "json")

	endpoint := fmt.Sprintf("%s/search?%s", c.NominatimBaseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctxTimeout, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Coordinates{}, apperror.NewInternalError("Falha ao montar requisição do Nominatim.", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.logger.Error("Falha de transporte na consulta ao Nominatim.", err)
		return domain.Coordinates{}, apperror.NewUnavailableError("Erro na consulta das coordenadas.", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Nominatim devolveu status inesperado.", map[string]interface{}{"status": resp.StatusCode})
		return domain.Coordinates{}, apperror.NewUnavailableError("Erro na consulta das coordenadas.", nil)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		c.logger.Error("Resposta do Nominatim não parseável.", err)
		return domain.Coordinates{}, apperror.NewUnavailableError("Erro na consulta das coordenadas.", err)
	}

	if len(results) == 0 {
		// Endereço válido mas sem match geográfico. Ainda é um erro de infra
		// do ponto de vista do chamador (pode aparecer depois).
		return domain.Coordinates{}, apperror.NewUnavailableError("Nenhuma coordenada encontrada para o endereço.", nil)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, apperror.NewUnavailableError("Latitude devolvida pelo Nominatim não é numérica.", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, apperror.NewUnavailableError("Longitude devolvida pelo Nominatim não é numérica.", err)
	}

	return domain.Coordinates{Latitude: lat, Longitude: lon}, nil
}
