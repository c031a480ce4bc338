package user

import (
	"context"
	"encoding/json"
	"net/http"

	"quadrahub/internal/domain"
	apperror "quadrahub/internal/errors"
	"quadrahub/internal/pkg/logger"
	"quadrahub/internal/pkg/middleware"
	"quadrahub/internal/service/userservice"
)

// UserService define o contrato que o Handler espera da camada de Serviço.
type UserService interface {
	Register(ctx context.Context, reg domain.UserRegistration) (userservice.AuthResponse, error)
	Login(ctx context.Context, email, username, password string) (userservice.AuthResponse, error)
	UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) error
	GetByID(ctx context.Context, userID string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.UserSummary, error)
}

// LoginRequest representa o payload de entrada para o login.
// Email ou username: qualquer um dos dois identifica a conta.
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
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
		h.Logger.Error("Erro interno no serviço de usuário.", err)
	} else {
		h.Logger.Debug("Requisição rejeitada.", map[string]interface{}{"path": r.URL.Path, "status": status, "category": category})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: message})
}

// RegisterHandler lida com POST /v1/users/register.
// @Summary Cadastra um novo usuário
// @Description Resolve o CEP em coordenadas, hasheia a senha e cria a conta. Devolve o perfil com um JWT.
// @Tags users
// @Accept json
// @Produce json
// @Param registration body domain.UserRegistration true "Dados de cadastro"
// @Success 201 {object} userservice.AuthResponse "Usuário criado"
// @Failure 400 {object} domain.ErrorResponse "Payload ou CEP inválido"
// @Failure 409 {object} domain.ErrorResponse "Email ou username já cadastrado"
// @Failure 503 {object} domain.ErrorResponse "Geocoding indisponível"
// @Router /users/register [post]
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reg domain.UserRegistration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusCreated)
		return
	}

	resp, err := h.Service.Register(ctx, reg)
	h.handleServiceResponse(w, r, resp, err, http.StatusCreated)
}

// LoginHandler lida com POST /v1/users/login.
// @Summary Autentica um usuário e devolve um JWT
// @Tags users
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Credenciais (email ou username + senha)"
// @Success 200 {object} userservice.AuthResponse "Perfil + token"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Router /users/login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	resp, err := h.Service.Login(ctx, req.Email, req.Username, req.Password)
	h.handleServiceResponse(w, r, resp, err, http.StatusOK)
}

// UpdateProfileHandler lida com PUT /v1/users/profile (autenticado).
// @Summary Atualiza um campo do perfil do usuário autenticado
// @Description Campos permitidos: full_name, username, email, cep. Alterar o cep re-geocodifica e atualiza as coordenadas junto.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param update body domain.ProfileUpdate true "Campo e novo valor"
// @Success 200 {object} map[string]string "Dados atualizados"
// @Failure 400 {object} domain.ErrorResponse "Campo não editável ou CEP inválido"
// @Router /users/profile [put]
func (h *Handler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := middleware.GetUserClaimsFromContext(ctx)
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Autorização necessária."), http.StatusOK)
		return
	}

	var update domain.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	err := h.Service.UpdateProfile(ctx, claims.UserID, update)
	h.handleServiceResponse(w, r, map[string]string{"message": "Dados atualizados com sucesso!"}, err, http.StatusOK)
}

// MeHandler lida com GET /v1/users/me (autenticado).
// @Summary Devolve o perfil do usuário autenticado
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.User
// @Router /users/me [get]
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := middleware.GetUserClaimsFromContext(ctx)
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Autorização necessária."), http.StatusOK)
		return
	}

	user, err := h.Service.GetByID(ctx, claims.UserID)
	h.handleServiceResponse(w, r, user, err, http.StatusOK)
}

// ListUsersHandler lida com GET /v1/users (autenticado).
// @Summary Lista nome e email de todos os usuários
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.UserSummary
// @Router /users [get]
func (h *Handler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Service.ListUsers(r.Context())
	h.handleServiceResponse(w, r, summaries, err, http.StatusOK)
}
