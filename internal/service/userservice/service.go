package userservice

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"quadrahub/internal/domain"
	apperror "quadrahub/internal/errors"
	"quadrahub/internal/pkg/geocode"
	"quadrahub/internal/pkg/logger"
)

// UserRepository define o contrato que o serviço espera da persistência.
type UserRepository interface {
	Save(ctx context.Context, user domain.User) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (domain.User, error)
	UpdateProfileField(ctx context.Context, userID, field, newValue string) error
	UpdateCEP(ctx context.Context, userID, cep string, coords domain.Coordinates) error
	ListAll(ctx context.Context) ([]domain.UserSummary, error)
}

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(userID string) (string, error)
}

// AuthResponse é o que o cliente recebe após cadastro ou login.
type AuthResponse struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	CEP      string `json:"cep"`
	Token    string `json:"token"`
}

// Service implementa a lógica de negócio de usuários: cadastro (com
// geocoding), login e atualização de perfil.
type Service struct {
	repo     UserRepository
	resolver geocode.Resolver
	tokenSvc TokenService
	logger   logger.Logger
}

// NewService cria uma nova instância do serviço de usuários.
func NewService(repo UserRepository, resolver geocode.Resolver, tokenSvc TokenService, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		tokenSvc: tokenSvc,
		logger:   log,
	}
}

// Register cadastra um novo usuário. A ordem importa: hash da senha e
// resolução do CEP acontecem ANTES de qualquer escrita — se o geocoding
// falhar, nenhum registro parcial fica para trás.
func (s *Service) Register(ctx context.Context, reg domain.UserRegistration) (AuthResponse, error) {
	if reg.FullName == "" || reg.Username == "" || reg.Email == "" || reg.CEP == "" || reg.Password == "" {
		return AuthResponse{}, apperror.NewValidationError("Nome, usuário, email, CEP e senha são obrigatórios.")
	}

	// Checagem de duplicidade antecipada (a constraint única do banco cobre a
	// corrida entre a checagem e o INSERT).
	if _, err := s.repo.FindByEmailOrUsername(ctx, reg.Email, reg.Username); err == nil {
		return AuthResponse{}, apperror.NewConflictError("Usuário já cadastrado.")
	} else {
		var notFound *apperror.NotFoundError
		if !errors.As(err, &notFound) {
			return AuthResponse{}, err
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	coords, err := s.resolver.Resolve(ctx, reg.CEP)
	if err != nil {
		// CEP inválido ou geocoding fora do ar: o cadastro inteiro é rejeitado.
		return AuthResponse{}, err
	}

	newUser := domain.User{
		FullName:     reg.FullName,
		Username:     reg.Username,
		Email:        reg.Email,
		CEP:          reg.CEP,
		PasswordHash: string(hashedPassword),
		Latitude:     coords.Latitude,
		Longitude:    coords.Longitude,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	user, err := s.repo.Save(ctx, newUser)
	if err != nil {
		return AuthResponse{}, err
	}

	tokenString, err := s.tokenSvc.GenerateToken(user.ID)
	if err != nil {
		return AuthResponse{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Usuário cadastrado.", map[string]interface{}{"user_id": user.ID})
	return AuthResponse{
		FullName: user.FullName,
		Email:    user.Email,
		CEP:      user.CEP,
		Token:    tokenString,
	}, nil
}

// Login autentica por email ou nome de usuário e emite um JWT.
func (s *Service) Login(ctx context.Context, email, username, password string) (AuthResponse, error) {
	if (email == "" && username == "") || password == "" {
		return AuthResponse{}, apperror.NewUnauthorizedError("Credenciais são obrigatórias.")
	}

	user, err := s.repo.FindByEmailOrUsername(ctx, email, username)
	if err != nil {
		// NotFound vira Unauthorized: não damos dica de quais contas existem.
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return AuthResponse{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return AuthResponse{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	tokenString, err := s.tokenSvc.GenerateToken(user.ID)
	if err != nil {
		return AuthResponse{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	return AuthResponse{
		FullName: user.FullName,
		Email:    user.Email,
		CEP:      user.CEP,
		Token:    tokenString,
	}, nil
}

// UpdateProfile atualiza um único campo permitido do perfil. Mudança de CEP
// re-geocodifica antes de escrever: CEP e coordenadas mudam juntos, ou nada
// muda.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) error {
	if update.Field == "" || update.NewValue == "" {
		return apperror.NewValidationError("Campo e novo valor são obrigatórios.")
	}

	if update.Field == "cep" {
		coords, err := s.resolver.Resolve(ctx, update.NewValue)
		if err != nil {
			return err
		}
		return s.repo.UpdateCEP(ctx, userID, update.NewValue, coords)
	}

	return s.repo.UpdateProfileField(ctx, userID, update.Field, update.NewValue)
}

// GetByID devolve o usuário dono do token (perfil próprio).
func (s *Service) GetByID(ctx context.Context, userID string) (domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// ListUsers devolve a projeção pública de todos os usuários.
func (s *Service) ListUsers(ctx context.Context) ([]domain.UserSummary, error) {
	return s.repo.ListAll(ctx)
}
