package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperror "quadrahub/internal/errors"
	"quadrahub/internal/pkg/geocode"
	"quadrahub/internal/pkg/logger"
)

// newTestClient monta um Client apontando para os dois servidores de teste.
func newTestClient(viaCEP, nominatim string) *geocode.Client {
	return geocode.NewClient(viaCEP, nominatim, 2*time.Second, logger.NewLogger("error"))
}

// TestResolve_Success cobre o caminho feliz: ViaCEP devolve o endereço e o
// Nominatim devolve lat/lon como strings, que precisam virar float64.
func TestResolve_Success(t *testing.T) {
	viaCEP := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/01310-100/json/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"cep":"01310-100","logradouro":"Avenida Paulista","localidade":"São Paulo","uf":"SP"}`))
	}))
	defer viaCEP.Close()

	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Avenida Paulista", q.Get("street"))
		assert.Equal(t, "São Paulo", q.Get("city"))
		assert.Equal(t, "SP", q.Get("state"))
		assert.Equal(t, "Brazil", q.Get("country"))
		assert.Equal(t, "json", q.Get("format"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"-23.5613","lon":"-46.6565"},{"lat":"-23.0","lon":"-46.0"}]`))
	}))
	defer nominatim.Close()

	client := newTestClient(viaCEP.URL, nominatim.URL)

	coords, err := client.Resolve(context.Background(), "01310-100")

	assert.NoError(t, err)
	assert.InDelta(t, -23.5613, coords.Latitude, 0.0001)
	assert.InDelta(t, -46.6565, coords.Longitude, 0.0001)
}

// TestResolve_MalformedCEP_Returns400Class: o ViaCEP responde 400 para CEPs
// malformados. Isso é erro de entrada do usuário, não indisponibilidade.
func TestResolve_MalformedCEP_Returns400Class(t *testing.T) {
	viaCEP := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer viaCEP.Close()

	client := newTestClient(viaCEP.URL, "http://127.0.0.1:0")

	_, err := client.Resolve(context.Background(), "abc")

	assert.Error(t, err)
	assert.IsType(t, &apperror.InvalidPostalCodeError{}, err)
}

// TestResolve_UnknownCEP_ErroTrue: CEP bem-formado mas inexistente chega como
// 200 com {"erro": true}; deve ser tratado igual ao 400.
func TestResolve_UnknownCEP_ErroTrue(t *testing.T) {
	viaCEP := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"erro": true}`))
	}))
	defer viaCEP.Close()

	client := newTestClient(viaCEP.URL, "http://127.0.0.1:0")

	_, err := client.Resolve(context.Background(), "99999-999")

	assert.Error(t, err)
	assert.IsType(t, &apperror.InvalidPostalCodeError{}, err)
}

// TestResolve_ViaCEPDown: 5xx do ViaCEP é indisponibilidade transitória,
// nunca CEP inválido.
func TestResolve_ViaCEPDown(t *testing.T) {
	viaCEP := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer viaCEP.Close()

	client := newTestClient(viaCEP.URL, "http://127.0.0.1:0")

	_, err := client.Resolve(context.Background(), "01310-100")

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnavailableError{}, err)
}

// TestResolve_NominatimDown: falha no segundo serviço da cadeia também é
// indisponibilidade.
func TestResolve_NominatimDown(t *testing.T) {
	viaCEP := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"logradouro":"Rua A","localidade":"Cidade","uf":"SP"}`))
	}))
	defer viaCEP.Close()

	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer nominatim.Close()

	client := newTestClient(viaCEP.URL, nominatim.URL)

	_, err := client.Resolve(context.Background(), "01310-100")

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnavailableError{}, err)
}

// TestResolve_NominatimEmptyResults: endereço válido sem match geográfico
// devolve lista vazia; vira indisponibilidade, não CEP inválido.
func TestResolve_NominatimEmptyResults(t *testing.T) {
	viaCEP := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"logradouro":"Rua A","localidade":"Cidade","uf":"SP"}`))
	}))
	defer viaCEP.Close()

	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer nominatim.Close()

	client := newTestClient(viaCEP.URL, nominatim.URL)

	_, err := client.Resolve(context.Background(), "01310-100")

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnavailableError{}, err)
}

// TestResolve_NominatimNonNumericLatLon: lat/lon chegam como string; lixo
// não numérico não pode passar adiante.
func TestResolve_NominatimNonNumericLatLon(t *testing.T) {
	viaCEP := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"logradouro":"Rua A","localidade":"Cidade","uf":"SP"}`))
	}))
	defer viaCEP.Close()

	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"not-a-number","lon":"-46.0"}]`))
	}))
	defer nominatim.Close()

	client := newTestClient(viaCEP.URL, nominatim.URL)

	_, err := client.Resolve(context.Background(), "01310-100")

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnavailableError{}, err)
}

// TestResolve_ViaCEPGarbageBody: corpo não parseável do ViaCEP é tratado como
// indisponibilidade (não dá para afirmar nada sobre o CEP).
func TestResolve_ViaCEPGarbageBody(t *testing.T) {
	viaCEP := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>erro</html>`))
	}))
	defer viaCEP.Close()

	client := newTestClient(viaCEP.URL, "http://127.0.0.1:0")

	_, err := client.Resolve(context.Background(), "01310-100")

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnavailableError{}, err)
}
