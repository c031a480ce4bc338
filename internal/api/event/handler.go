package event

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

const maxUploadBytes = 10 << 20 // 10 MiB

// EventService define o contrato que o Handler espera da camada de Serviço.
type EventService interface {
	RegisterEvent(ctx context.Context, reg domain.EventRegistration) (domain.Event, error)
	ListNearby(ctx context.Context, userID string, limit int) ([]domain.NearbyEvent, error)
	RateEvent(ctx context.Context, eventID string, rating float64) (float64, error)
	Subscribe(ctx context.Context, userID, eventID string) error
	Unsubscribe(ctx context.Context, userID, eventID string) error
	ListSubscriptions(ctx context.Context, userID string) ([]domain.SubscribedEvent, error)
}

// RatingRequest é o payload de avaliação.
type RatingRequest struct {
	Rating float64 `json:"rating"`
}

// Handler agrupa todos os métodos de Handler de eventos.
type Handler struct {
	Service EventService
	Store   storage.Store
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando Service, Store e Logger.
func NewHandler(svc EventService, store storage.Store, log logger.Logger) *Handler {
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
		h.Logger.Error("Erro interno no serviço de eventos.", err)
	} else {
		h.Logger.Debug("Requisição rejeitada.", map[string]interface{}{"path": r.URL.Path, "status": status, "category": category})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: message})
}

// requireClaims extrai as claims do contexto ou encerra com 401.
func (h *Handler) requireClaims(w http.ResponseWriter, r *http.Request) (middleware.UserClaims, bool) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Autorização necessária."), http.StatusOK)
	}
	return claims, ok
}

// CreateHandler lida com POST /v1/events (autenticado, multipart).
// @Summary Cadastra um novo evento
// @Description Campos multipart: name, cep, date (YYYY-MM-DD), description e (opcional) photo.
// @Tags events
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Nome do evento"
// @Param cep formData string true "CEP do evento"
// @Param date formData string true "Data (YYYY-MM-DD)"
// @Param description formData string false "Descrição"
// @Param photo formData file false "Foto do evento"
// @Success 201 {object} domain.Event
// @Failure 400 {object} domain.ErrorResponse "CEP ou data inválidos"
// @Failure 503 {object} domain.ErrorResponse "Geocoding indisponível"
// @Router /events [post]
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Formulário multipart inválido."), http.StatusCreated)
		return
	}

	reg := domain.EventRegistration{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Date:        r.FormValue("date"),
		CEP:         r.FormValue("cep"),
	}

	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		path, saveErr := h.Store.Save(header.Filename, file)
		if saveErr != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewInternalError("Falha ao gravar a foto enviada.", saveErr), http.StatusCreated)
			return
		}
		reg.PhotoPath = path
	}

	event, err := h.Service.RegisterEvent(ctx, reg)
	h.handleServiceResponse(w, r, event, err, http.StatusCreated)
}

// ListHandler lida com GET /v1/events (autenticado).
// @Summary Lista eventos próximos do usuário autenticado
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Máximo de resultados"
// @Success 200 {array} domain.NearbyEvent
// @Router /events [get]
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.requireClaims(w, r)
	if !ok {
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

	nearby, err := h.Service.ListNearby(r.Context(), claims.UserID, limit)
	h.handleServiceResponse(w, r, nearby, err, http.StatusOK)
}

// RateHandler lida com POST /v1/events/{id}/rate (autenticado).
// @Summary Avalia um evento
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do evento"
// @Param rating body RatingRequest true "Nota (0 a 5)"
// @Success 200 {object} map[string]interface{} "Nova média"
// @Failure 404 {object} domain.ErrorResponse "Evento não encontrado"
// @Router /events/{id}/rate [post]
func (h *Handler) RateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID := r.PathValue("id")

	var req RatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	newMean, err := h.Service.RateEvent(ctx, eventID, req.Rating)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, map[string]interface{}{
		"message":    "Avaliação enviada!",
		"new_rating": newMean,
	}, nil, http.StatusOK)
}

// SubscribeHandler lida com POST /v1/events/{id}/subscribe (autenticado).
// @Summary Inscreve o usuário autenticado no evento
// @Description Idempotente: inscrever-se duas vezes não é erro e não conta duas vezes.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do evento"
// @Success 200 {object} map[string]string
// @Failure 404 {object} domain.ErrorResponse "Evento não encontrado"
// @Router /events/{id}/subscribe [post]
func (h *Handler) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.requireClaims(w, r)
	if !ok {
		return
	}

	err := h.Service.Subscribe(r.Context(), claims.UserID, r.PathValue("id"))
	h.handleServiceResponse(w, r, map[string]string{"message": "Inscrição realizada com sucesso!"}, err, http.StatusOK)
}

// UnsubscribeHandler lida com DELETE /v1/events/{id}/subscribe (autenticado).
// A remoção é síncrona: a resposta só sai depois do commit (ou da falha).
// @Summary Cancela a inscrição do usuário autenticado no evento
// @Description Idempotente: cancelar uma inscrição inexistente não é erro.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do evento"
// @Success 200 {object} map[string]string
// @Router /events/{id}/subscribe [delete]
func (h *Handler) UnsubscribeHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.requireClaims(w, r)
	if !ok {
		return
	}

	err := h.Service.Unsubscribe(r.Context(), claims.UserID, r.PathValue("id"))
	h.handleServiceResponse(w, r, map[string]string{"message": "Inscrição cancelada com sucesso."}, err, http.StatusOK)
}

// ListSubscriptionsHandler lida com GET /v1/events/subscriptions (autenticado).
// @Summary Lista os eventos em que o usuário autenticado está inscrito
// @Description Sem inscrições devolve lista vazia (200), não erro.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.SubscribedEvent
// @Router /events/subscriptions [get]
func (h *Handler) ListSubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.requireClaims(w, r)
	if !ok {
		return
	}

	subscribed, err := h.Service.ListSubscriptions(r.Context(), claims.UserID)
	h.handleServiceResponse(w, r, subscribed, err, http.StatusOK)
}
