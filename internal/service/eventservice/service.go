package eventservice

import (
	"context"
	"time"

	"quadrahub/internal/domain"
	apperror "quadrahub/internal/errors"
	"quadrahub/internal/geo"
	"quadrahub/internal/pkg/geocode"
	"quadrahub/internal/pkg/logger"
)

// Limites da escala de avaliação aceita (mesma escala das quadras).
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// dateLayout é o formato de data aceito no cadastro de eventos.
const dateLayout = "2006-01-02"

// EventRepository define o contrato que o serviço espera da persistência de eventos.
type EventRepository interface {
	Save(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id string) (domain.Event, error)
	FindAll(ctx context.Context) ([]domain.Event, error)
	ApplyRating(ctx context.Context, id string, newRating float64) (float64, error)
	InvalidateCache(ctx context.Context, id string)
}

// SubscriptionLedger é o contrato do ledger de inscrições.
type SubscriptionLedger interface {
	Subscribe(ctx context.Context, userID, eventID string) error
	Unsubscribe(ctx context.Context, userID, eventID string) error
	ListByUser(ctx context.Context, userID string) ([]domain.SubscribedEvent, error)
}

// UserDirectory é a fatia do repositório de usuários usada para obter a
// posição de referência do solicitante.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
}

// Service implementa a lógica de negócio de eventos: cadastro com geocoding,
// listagem por proximidade, avaliação e inscrições.
type Service struct {
	repo     EventRepository
	ledger   SubscriptionLedger
	users    UserDirectory
	resolver geocode.Resolver
	logger   logger.Logger
}

// NewService cria uma nova instância do serviço de eventos.
func NewService(repo EventRepository, ledger SubscriptionLedger, users UserDirectory, resolver geocode.Resolver, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		ledger:   ledger,
		users:    users,
		resolver: resolver,
		logger:   log,
	}
}

// RegisterEvent cadastra um evento. Data em YYYY-MM-DD; CEP resolvido antes
// de qualquer escrita.
func (s *Service) RegisterEvent(ctx context.Context, reg domain.EventRegistration) (domain.Event, error) {
	if reg.Name == "" || reg.CEP == "" || reg.Date == "" {
		return domain.Event{}, apperror.NewValidationError("Nome, CEP e data do evento são obrigatórios.")
	}

	date, err := time.Parse(dateLayout, reg.Date)
	if err != nil {
		return domain.Event{}, apperror.NewValidationError("Data do evento inválida; use o formato YYYY-MM-DD.")
	}

	coords, err := s.resolver.Resolve(ctx, reg.CEP)
	if err != nil {
		return domain.Event{}, err
	}

	event := domain.Event{
		Name:        reg.Name,
		Description: reg.Description,
		Date:        date,
		CEP:         reg.CEP,
		PhotoPath:   reg.PhotoPath,
		Latitude:    coords.Latitude,
		Longitude:   coords.Longitude,
	}

	return s.repo.Save(ctx, event)
}

// ListNearby devolve os eventos ordenados pela distância até a posição
// armazenada do usuário, truncados em limit (padrão 20).
func (s *Service) ListNearby(ctx context.Context, userID string, limit int) ([]domain.NearbyEvent, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	events, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	ranked := geo.RankByProximity(user.Coordinates(), events, limit)

	nearby := make([]domain.NearbyEvent, 0, len(ranked))
	for _, r := range ranked {
		nearby = append(nearby, domain.NearbyEvent{Event: r.Item, DistanceKM: r.DistanceKM})
	}
	return nearby, nil
}

// RateEvent aplica uma avaliação ao evento e devolve a nova média.
func (s *Service) RateEvent(ctx context.Context, eventID string, rating float64) (float64, error) {
	if rating < MinRating || rating > MaxRating {
		return 0, apperror.NewValidationError("A avaliação deve estar entre 0 e 5.")
	}

	newMean, err := s.repo.ApplyRating(ctx, eventID, rating)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Evento avaliado.", map[string]interface{}{"event_id": eventID, "new_mean": newMean})
	return newMean, nil
}

// Subscribe inscreve o usuário no evento. Inscrição repetida é no-op.
func (s *Service) Subscribe(ctx context.Context, userID, eventID string) error {
	// Evento inexistente vira 404 limpo antes de tocar o ledger.
	if _, err := s.repo.FindByID(ctx, eventID); err != nil {
		return err
	}

	if err := s.ledger.Subscribe(ctx, userID, eventID); err != nil {
		return err
	}

	// O contador de inscritos mudou (ou pode ter mudado); derruba o cache.
	s.repo.InvalidateCache(ctx, eventID)
	return nil
}

// Unsubscribe cancela a inscrição do usuário no evento, de forma síncrona:
// a resposta só sai depois que a remoção foi commitada ou falhou.
func (s *Service) Unsubscribe(ctx context.Context, userID, eventID string) error {
	if err := s.ledger.Unsubscribe(ctx, userID, eventID); err != nil {
		return err
	}

	s.repo.InvalidateCache(ctx, eventID)
	return nil
}

// ListSubscriptions devolve os eventos em que o usuário está inscrito.
// Nenhuma inscrição é um resultado válido: slice vazio, não erro.
func (s *Service) ListSubscriptions(ctx context.Context, userID string) ([]domain.SubscribedEvent, error) {
	return s.ledger.ListByUser(ctx, userID)
}
