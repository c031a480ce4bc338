package courtservice

import (
	"context"

	"quadrahub/internal/domain"
	apperror "quadrahub/internal/errors"
	"quadrahub/internal/geo"
	"quadrahub/internal/pkg/geocode"
	"quadrahub/internal/pkg/logger"
)

// Limites da escala de avaliação aceita (0 a 5 estrelas).
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// CourtRepository define o contrato que o serviço espera da persistência.
type CourtRepository interface {
	Save(ctx context.Context, court domain.Court) (domain.Court, error)
	FindByID(ctx context.Context, id string) (domain.Court, error)
	FindAll(ctx context.Context) ([]domain.Court, error)
	ApplyRating(ctx context.Context, id string, newRating float64) (float64, error)
}

// UserDirectory é a fatia do repositório de usuários que o serviço usa para
// obter a posição de referência do solicitante.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
}

// Service implementa a lógica de negócio de quadras: cadastro com geocoding,
// listagem por proximidade e avaliação.
type Service struct {
	repo     CourtRepository
	users    UserDirectory
	resolver geocode.Resolver
	logger   logger.Logger
}

// NewService cria uma nova instância do serviço de quadras.
func NewService(repo CourtRepository, users UserDirectory, resolver geocode.Resolver, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		resolver: resolver,
		logger:   log,
	}
}

// RegisterCourt cadastra uma quadra: resolve o CEP primeiro e só então
// persiste — falha de geocoding rejeita o cadastro inteiro.
func (s *Service) RegisterCourt(ctx context.Context, reg domain.CourtRegistration) (domain.Court, error) {
	if reg.Name == "" || reg.CEP == "" {
		return domain.Court{}, apperror.NewValidationError("Nome e CEP da quadra são obrigatórios.")
	}

	coords, err := s.resolver.Resolve(ctx, reg.CEP)
	if err != nil {
		return domain.Court{}, err
	}

	court := domain.Court{
		Name:      reg.Name,
		CEP:       reg.CEP,
		PhotoPath: reg.PhotoPath,
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
	}

	return s.repo.Save(ctx, court)
}

// ListNearby devolve as quadras ordenadas pela distância até a posição
// armazenada do usuário, truncadas em limit (padrão 20).
func (s *Service) ListNearby(ctx context.Context, userID string, limit int) ([]domain.NearbyCourt, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	courts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	ranked := geo.RankByProximity(user.Coordinates(), courts, limit)

	nearby := make([]domain.NearbyCourt, 0, len(ranked))
	for _, r := range ranked {
		nearby = append(nearby, domain.NearbyCourt{Court: r.Item, DistanceKM: r.DistanceKM})
	}
	return nearby, nil
}

// RateCourt aplica uma avaliação à quadra e devolve a nova média.
// A escala aceita é validada aqui; a atomicidade é do repositório.
func (s *Service) RateCourt(ctx context.Context, courtID string, rating float64) (float64, error) {
	if rating < MinRating || rating > MaxRating {
		return 0, apperror.NewValidationError("A avaliação deve estar entre 0 e 5.")
	}

	newMean, err := s.repo.ApplyRating(ctx, courtID, rating)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Quadra avaliada.", map[string]interface{}{"court_id": courtID, "new_mean": newMean})
	return newMean, nil
}
