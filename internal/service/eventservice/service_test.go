package eventservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"quadrahub/internal/domain"
	apperror "quadrahub/internal/errors"
	"quadrahub/internal/pkg/logger"
	"quadrahub/internal/service/eventservice"
)

// MockEventRepository é uma implementação mock da interface EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Save(ctx context.Context, event domain.Event) (domain.Event, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *MockEventRepository) FindByID(ctx context.Context, id string) (domain.Event, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *MockEventRepository) FindAll(ctx context.Context) ([]domain.Event, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockEventRepository) ApplyRating(ctx context.Context, id string, newRating float64) (float64, error) {
	args := m.Called(ctx, id, newRating)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockEventRepository) InvalidateCache(ctx context.Context, id string) {
	m.Called(ctx, id)
}

// MockSubscriptionLedger é um mock do ledger de inscrições.
type MockSubscriptionLedger struct {
	mock.Mock
}

func (m *MockSubscriptionLedger) Subscribe(ctx context.Context, userID, eventID string) error {
	args := m.Called(ctx, userID, eventID)
	return args.Error(0)
}

func (m *MockSubscriptionLedger) Unsubscribe(ctx context.Context, userID, eventID string) error {
	args := m.Called(ctx, userID, eventID)
	return args.Error(0)
}

func (m *MockSubscriptionLedger) ListByUser(ctx context.Context, userID string) ([]domain.SubscribedEvent, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.SubscribedEvent), args.Error(1)
}

// MockUserDirectory é um mock da fatia de usuários usada pelo serviço.
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

// MockResolver é um mock do resolvedor de CEP.
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, cep string) (domain.Coordinates, error) {
	args := m.Called(ctx, cep)
	return args.Get(0).(domain.Coordinates), args.Error(1)
}

func newTestService(repo *MockEventRepository, ledger *MockSubscriptionLedger, users *MockUserDirectory, resolver *MockResolver) *eventservice.Service {
	return eventservice.NewService(repo, ledger, users, resolver, logger.NewLogger("debug"))
}

// TestRegisterEvent_Success: data parseada, CEP resolvido e evento salvo com
// as coordenadas do geocoding.
func TestRegisterEvent_Success(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockLedger := new(MockSubscriptionLedger)
	mockUsers := new(MockUserDirectory)
	mockResolver := new(MockResolver)

	svc := newTestService(mockRepo, mockLedger, mockUsers, mockResolver)

	coords := domain.Coordinates{Latitude: -23.5613, Longitude: -46.6565}
	mockResolver.On("Resolve", mock.Anything, "01310-100").Return(coords, nil)
	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Name == "Torneio de Futsal" &&
			e.Date.Equal(time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)) &&
			e.Latitude == coords.Latitude
	})).Return(domain.Event{ID: uuid.New().String(), Name: "Torneio de Futsal"}, nil)

	event, err := svc.RegisterEvent(context.Background(), domain.EventRegistration{
		Name:        "Torneio de Futsal",
		Description: "Aberto a todos",
		Date:        "2026-09-12",
		CEP:         "01310-100",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	mockRepo.AssertExpectations(t)
}

// TestRegisterEvent_Fail_BadDate rejeita datas fora do formato YYYY-MM-DD.
func TestRegisterEvent_Fail_BadDate(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockLedger := new(MockSubscriptionLedger)
	mockUsers := new(MockUserDirectory)
	mockResolver := new(MockResolver)

	svc := newTestService(mockRepo, mockLedger, mockUsers, mockResolver)

	_, err := svc.RegisterEvent(context.Background(), domain.EventRegistration{
		Name: "Torneio",
		Date: "12/09/2026",
		CEP:  "01310-100",
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockResolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestRegisterEvent_Fail_GeocodingAbortsSave: falha de geocoding rejeita o
// cadastro inteiro, sem registro parcial.
func TestRegisterEvent_Fail_GeocodingAbortsSave(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockLedger := new(MockSubscriptionLedger)
	mockUsers := new(MockUserDirectory)
	mockResolver := new(MockResolver)

	svc := newTestService(mockRepo, mockLedger, mockUsers, mockResolver)

	mockResolver.On("Resolve", mock.Anything, "00000-000").
		Return(domain.Coordinates{}, apperror.NewInvalidPostalCodeError("00000-000"))

	_, err := svc.RegisterEvent(context.Background(), domain.EventRegistration{
		Name: "Torneio",
		Date: "2026-09-12",
		CEP:  "00000-000",
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.InvalidPostalCodeError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestListNearby_OrderedByDistance: o evento mais próximo vem primeiro.
func TestListNearby_OrderedByDistance(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockLedger := new(MockSubscriptionLedger)
	mockUsers := new(MockUserDirectory)
	mockResolver := new(MockResolver)

	svc := newTestService(mockRepo, mockLedger, mockUsers, mockResolver)

	userID := uuid.New().String()
	mockUsers.On("FindByID", mock.Anything, userID).
		Return(domain.User{ID: userID, Latitude: -23.5505, Longitude: -46.6333}, nil)
	mockRepo.On("FindAll", mock.Anything).Return([]domain.Event{
		{ID: "rio", Latitude: -22.9068, Longitude: -43.1729},
		{ID: "sp", Latitude: -23.5613, Longitude: -46.6565},
	}, nil)

	nearby, err := svc.ListNearby(context.Background(), userID, 10)

	assert.NoError(t, err)
	assert.Len(t, nearby, 2)
	assert.Equal(t, "sp", nearby[0].ID)
	assert.Less(t, nearby[0].DistanceKM, nearby[1].DistanceKM)
}

// TestRateEvent_Fail_OutOfRange rejeita notas fora da escala 0 a 5.
func TestRateEvent_Fail_OutOfRange(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockLedger := new(MockSubscriptionLedger)
	mockUsers := new(MockUserDirectory)
	mockResolver := new(MockResolver)

	svc := newTestService(mockRepo, mockLedger, mockUsers, mockResolver)

	_, err := svc.RateEvent(context.Background(), "event-1", 5.5)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "ApplyRating", mock.Anything, mock.Anything, mock.Anything)
}

// TestSubscribe_Success: evento existe, ledger registra e o cache da entrada
// é invalidado (o contador de inscritos mudou).
func TestSubscribe_Success(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockLedger := new(MockSubscriptionLedger)
	mockUsers := new(MockUserDirectory)
	mockResolver := new(MockResolver)

	svc := newTestService(mockRepo, mockLedger, mockUsers, mockResolver)

	userID := uuid.New().String()
	mockRepo.On("FindByID", mock.Anything, "event-1").Return(domain.Event{ID: "event-1"}, nil)
	mockLedger.On("Subscribe", mock.Anything, userID, "event-1").Return(nil)
	mockRepo.On("InvalidateCache", mock.Anything, "event-1").Return()

	err := svc.Subscribe(context.Background(), userID, "event-1")

	assert.NoError(t, err)
	mockLedger.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

// TestSubscribe_Repeated_NoError: inscrição repetida é no-op no ledger
// (ON CONFLICT DO NOTHING) e não vira erro para o cliente.
func TestSubscribe_Repeated_NoError(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockLedger := new(MockSubscriptionLedger)
	mockUsers := new(MockUserDirectory)
	mockResolver := new(MockResolver)

	svc := newTestService(mockRepo, mockLedger, mockUsers, mockResolver)

	userID := uuid.New().String()
	mockRepo.On("FindByID", mock.Anything, "event-1").Return(domain.Event{ID: "event-1"}, nil)
	mockLedger.On("Subscribe", mock.Anything, userID, "event-1").Return(nil).Twice()
	mockRepo.On("InvalidateCache", mock.Anything, "event-1").Return()

	assert.NoError(t, svc.Subscribe(context.Background(), userID, "event-1"))
	assert.NoError(t, svc.Subscribe(context.Background(), userID, "event-1"))
	mockLedger.AssertExpectations(t)
}

// TestSubscribe_Fail_UnknownEvent: evento inexistente devolve 404 antes de
// tocar o ledger.
func TestSubscribe_Fail_UnknownEvent(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockLedger := new(MockSubscriptionLedger)
	mockUsers := new(MockUserDirectory)
	mockResolver := new(MockResolver)

	svc := newTestService(mockRepo, mockLedger, mockUsers, mockResolver)

	mockRepo.On("FindByID", mock.Anything, "ghost").
		Return(domain.Event{}, apperror.NewNotFoundError("evento"))

	err := svc.Subscribe(context.Background(), uuid.New().String(), "ghost")

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockLedger.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything, mock.Anything)
}

// TestUnsubscribe_Success: remoção síncrona seguida de invalidação do cache.
func TestUnsubscribe_Success(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockLedger := new(MockSubscriptionLedger)
	mockUsers := new(MockUserDirectory)
	mockResolver := new(MockResolver)

	svc := newTestService(mockRepo, mockLedger, mockUsers, mockResolver)

	userID := uuid.New().String()
	mockLedger.On("Unsubscribe", mock.Anything, userID, "event-1").Return(nil)
	mockRepo.On("InvalidateCache", mock.Anything, "event-1").Return()

	err := svc.Unsubscribe(context.Background(), userID, "event-1")

	assert.NoError(t, err)
	mockLedger.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

// TestUnsubscribe_Fail_LedgerError: falha do ledger é devolvida ao cliente
// (a remoção não é fire-and-forget) e o cache não é invalidado.
func TestUnsubscribe_Fail_LedgerError(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockLedger := new(MockSubscriptionLedger)
	mockUsers := new(MockUserDirectory)
	mockResolver := new(MockResolver)

	svc := newTestService(mockRepo, mockLedger, mockUsers, mockResolver)

	userID := uuid.New().String()
	ledgerErr := apperror.NewDBError("Falha ao cancelar inscrição", assert.AnError)
	mockLedger.On("Unsubscribe", mock.Anything, userID, "event-1").Return(ledgerErr)

	err := svc.Unsubscribe(context.Background(), userID, "event-1")

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "InvalidateCache", mock.Anything, mock.Anything)
}

// TestListSubscriptions_Empty: nenhuma inscrição é resultado válido — slice
// vazio, não erro.
func TestListSubscriptions_Empty(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockLedger := new(MockSubscriptionLedger)
	mockUsers := new(MockUserDirectory)
	mockResolver := new(MockResolver)

	svc := newTestService(mockRepo, mockLedger, mockUsers, mockResolver)

	userID := uuid.New().String()
	mockLedger.On("ListByUser", mock.Anything, userID).Return([]domain.SubscribedEvent{}, nil)

	subscribed, err := svc.ListSubscriptions(context.Background(), userID)

	assert.NoError(t, err)
	assert.NotNil(t, subscribed)
	assert.Len(t, subscribed, 0)
}

// TestListSubscriptions_ReturnsEvents devolve os eventos inscritos.
func TestListSubscriptions_ReturnsEvents(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockLedger := new(MockSubscriptionLedger)
	mockUsers := new(MockUserDirectory)
	mockResolver := new(MockResolver)

	svc := newTestService(mockRepo, mockLedger, mockUsers, mockResolver)

	userID := uuid.New().String()
	expected := []domain.SubscribedEvent{
		{Event: domain.Event{ID: "event-1", Name: "Torneio"}, SubscribedAt: time.Now()},
	}
	mockLedger.On("ListByUser", mock.Anything, userID).Return(expected, nil)

	subscribed, err := svc.ListSubscriptions(context.Background(), userID)

	assert.NoError(t, err)
	assert.Equal(t, expected, subscribed)
}
