package court

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"quadrahub/internal/domain"
	apperror "quadrahub/internal/errors"
	"quadrahub/internal/pkg/logger"
	"quadrahub/internal/pkg/middleware"
	"quadrahub/internal/pkg/storage"
)

// maxUploadBytes limita o tamanho do multipart de cadastro (foto inclusa).
const maxUploadBytes = 10 << 20 // 10 MiB

// CourtService define o contrato que o Handler espera da camada de Serviço.
type CourtService interface {
	RegisterCourt(ctx context.Context, reg domain.CourtRegistration) (domain.Court, error)
	ListNearby(ctx context.Context, userID string, limit int) ([]domain.NearbyCourt, error)
	RateCourt(ctx context.Context, courtID string, rating float64) (float64, error)
}

// RatingRequest é o payload de avaliação.
type RatingRequest struct {
	Rating float64 `json:"rating"`
}

// Handler agrupa todos os métodos de Handler de quadras.
type Handler struct {
	Service CourtService
	Store   storage.Store
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando Service, Store e Logger.
func NewHandler(svc CourtService, store storage.Store, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Store:   store,
		Logger:  log,
	}
}

// handleServiceResponse padroniza o tratamento de erros e respostas HTTP.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			json.NewEncoder(w).Encode(data)
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error("Erro interno no serviço de quadras.", err)
	} else {
		h.Logger.Debug("Requisição rejeitada.", map[string]interface{}{"path": r.URL.Path, "status": status, "category": category})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: message})
}

// CreateHandler lida com POST /v1/courts (autenticado, multipart).
// @Summary Cadastra uma nova quadra
// @Description Campos multipart: name, cep e (opcional) photo. O CEP é resolvido em coordenadas antes da escrita; falha de geocoding rejeita o cadastro.
// @Tags courts
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Nome da quadra"
// @Param cep formData string true "CEP da quadra"
// @Param photo formData file false "Foto da quadra"
// @Success 201 {object} domain.Court
// @Failure 400 {object} domain.ErrorResponse "CEP inválido"
// @Failure 503 {object} domain.ErrorResponse "Geocoding indisponível"
// @Router /courts [post]
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Formulário multipart inválido."), http.StatusCreated)
		return
	}

	reg := domain.CourtRegistration{
		Name: r.FormValue("name"),
		CEP:  r.FormValue("cep"),
	}

	// A foto é opcional; quando presente, é gravada antes do cadastro e o
	// caminho devolvido vira a referência de mídia da quadra.
	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		path, saveErr := h.Store.Save(header.Filename, file)
		if saveErr != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewInternalError("Falha ao gravar a foto enviada.", saveErr), http.StatusCreated)
			return
		}
		reg.PhotoPath = path
	}

	court, err := h.Service.RegisterCourt(ctx, reg)
	h.handleServiceResponse(w, r, court, err, http.StatusCreated)
}

// ListHandler lida com GET /v1/courts (autenticado).
// @Summary Lista quadras próximas do usuário autenticado
// @Description Ordena por distância (km) até a posição armazenada do usuário; query param limit (padrão 20).
// @Tags courts
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Máximo de resultados"
// @Success 200 {array} domain.NearbyCourt
// @Router /courts [get]
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := middleware.GetUserClaimsFromContext(ctx)
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Autorização necessária."), http.StatusOK)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O parâmetro limit deve ser um inteiro não negativo."), http.StatusOK)
			return
		}
		limit = parsed
	}

	nearby, err := h.Service.ListNearby(ctx, claims.UserID, limit)
	h.handleServiceResponse(w, r, nearby, err, http.StatusOK)
}

// RateHandler lida com POST /v1/courts/{id}/rate (autenticado).
// @Summary Avalia uma quadra
// @Description Aplica uma nota (0 a 5) à média corrente da quadra e devolve a nova média.
// @Tags courts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da quadra"
// @Param rating body RatingRequest true "Nota"
// @Success 200 {object} map[string]interface{} "Nova média"
// @Failure 400 {object} domain.ErrorResponse "Nota fora da escala"
// @Failure 404 {object} domain.ErrorResponse "Quadra não encontrada"
// @Router /courts/{id}/rate [post]
func (h *Handler) RateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courtID := r.PathValue("id")

	var req RatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	newMean, err := h.Service.RateCourt(ctx, courtID, req.Rating)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, map[string]interface{}{
		"message":    "Avaliação enviada!",
		"new_rating": newMean,
	}, nil, http.StatusOK)
}
