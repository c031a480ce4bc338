package userservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"quadrahub/internal/domain"
	apperror "quadrahub/internal/errors"
	"quadrahub/internal/pkg/logger"
	"quadrahub/internal/service/userservice"
)

// MockUserRepository é uma implementação mock da interface UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (domain.User, error) {
	args := m.Called(ctx, email, username)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfileField(ctx context.Context, userID, field, newValue string) error {
	args := m.Called(ctx, userID, field, newValue)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateCEP(ctx context.Context, userID, cep string, coords domain.Coordinates) error {
	args := m.Called(ctx, userID, cep, coords)
	return args.Error(0)
}

func (m *MockUserRepository) ListAll(ctx context.Context) ([]domain.UserSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.UserSummary), args.Error(1)
}

// MockResolver é um mock do resolvedor de CEP (geocode.Resolver).
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, cep string) (domain.Coordinates, error) {
	args := m.Called(ctx, cep)
	return args.Get(0).(domain.Coordinates), args.Error(1)
}

// MockTokenService é um mock da camada de emissão de JWT.
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateToken(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func validRegistration() domain.UserRegistration {
	return domain.UserRegistration{
		FullName: "Maria Silva",
		Username: "maria",
		Email:    "maria@example.com",
		CEP:      "01310-100",
		Password: "senha-forte",
	}
}

// TestRegister_Success testa o cadastro completo: CEP resolvido, senha
// hasheada, usuário salvo e token emitido.
func TestRegister_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockResolver := new(MockResolver)
	mockToken := new(MockTokenService)
	mockLogger := logger.NewLogger("debug")

	svc := userservice.NewService(mockRepo, mockResolver, mockToken, mockLogger)

	reg := validRegistration()
	savedID := uuid.New().String()
	coords := domain.Coordinates{Latitude: -23.5613, Longitude: -46.6565}

	mockRepo.On("FindByEmailOrUsername", mock.Anything, reg.Email, reg.Username).
		Return(domain.User{}, apperror.NewNotFoundError("usuário"))
	mockResolver.On("Resolve", mock.Anything, reg.CEP).Return(coords, nil)
	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		// A senha nunca pode chegar em texto puro no repositório.
		return u.PasswordHash != reg.Password &&
			u.Latitude == coords.Latitude && u.Longitude == coords.Longitude
	})).Return(domain.User{ID: savedID, FullName: reg.FullName, Email: reg.Email, CEP: reg.CEP}, nil)
	mockToken.On("GenerateToken", savedID).Return("token-jwt", nil)

	resp, err := svc.Register(context.Background(), reg)

	assert.NoError(t, err)
	assert.Equal(t, reg.FullName, resp.FullName)
	assert.Equal(t, "token-jwt", resp.Token)
	mockRepo.AssertExpectations(t)
	mockResolver.AssertExpectations(t)
	mockToken.AssertExpectations(t)
}

// TestRegister_Fail_MissingFields testa a validação dos campos obrigatórios.
func TestRegister_Fail_MissingFields(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockResolver := new(MockResolver)
	mockToken := new(MockTokenService)

	svc := userservice.NewService(mockRepo, mockResolver, mockToken, logger.NewLogger("debug"))

	reg := validRegistration()
	reg.Email = ""

	_, err := svc.Register(context.Background(), reg)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestRegister_Fail_Duplicate testa a rejeição de email/username já em uso.
func TestRegister_Fail_Duplicate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockResolver := new(MockResolver)
	mockToken := new(MockTokenService)

	svc := userservice.NewService(mockRepo, mockResolver, mockToken, logger.NewLogger("debug"))

	reg := validRegistration()
	mockRepo.On("FindByEmailOrUsername", mock.Anything, reg.Email, reg.Username).
		Return(domain.User{ID: uuid.New().String()}, nil)

	_, err := svc.Register(context.Background(), reg)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestRegister_Fail_GeocodingAbortsSave é o invariante central do cadastro:
// falha de geocoding rejeita o cadastro inteiro, sem registro parcial.
func TestRegister_Fail_GeocodingAbortsSave(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockResolver := new(MockResolver)
	mockToken := new(MockTokenService)

	svc := userservice.NewService(mockRepo, mockResolver, mockToken, logger.NewLogger("debug"))

	reg := validRegistration()
	mockRepo.On("FindByEmailOrUsername", mock.Anything, reg.Email, reg.Username).
		Return(domain.User{}, apperror.NewNotFoundError("usuário"))
	mockResolver.On("Resolve", mock.Anything, reg.CEP).
		Return(domain.Coordinates{}, apperror.NewInvalidPostalCodeError(reg.CEP))

	_, err := svc.Register(context.Background(), reg)

	assert.Error(t, err)
	assert.IsType(t, &apperror.InvalidPostalCodeError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	mockToken.AssertNotCalled(t, "GenerateToken", mock.Anything)
}

// TestLogin_Success_ByEmail testa o login com email e senha corretos.
func TestLogin_Success_ByEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockResolver := new(MockResolver)
	mockToken := new(MockTokenService)

	svc := userservice.NewService(mockRepo, mockResolver, mockToken, logger.NewLogger("debug"))

	hash, _ := bcrypt.GenerateFromPassword([]byte("senha-forte"), bcrypt.MinCost)
	userID := uuid.New().String()
	stored := domain.User{
		ID:           userID,
		FullName:     "Maria Silva",
		Email:        "maria@example.com",
		CEP:          "01310-100",
		PasswordHash: string(hash),
	}

	mockRepo.On("FindByEmailOrUsername", mock.Anything, "maria@example.com", "").Return(stored, nil)
	mockToken.On("GenerateToken", userID).Return("token-jwt", nil)

	resp, err := svc.Login(context.Background(), "maria@example.com", "", "senha-forte")

	assert.NoError(t, err)
	assert.Equal(t, "token-jwt", resp.Token)
	assert.Equal(t, stored.Email, resp.Email)
	mockRepo.AssertExpectations(t)
}

// TestLogin_Fail_WrongPassword testa a rejeição de senha incorreta.
func TestLogin_Fail_WrongPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockResolver := new(MockResolver)
	mockToken := new(MockTokenService)

	svc := userservice.NewService(mockRepo, mockResolver, mockToken, logger.NewLogger("debug"))

	hash, _ := bcrypt.GenerateFromPassword([]byte("senha-forte"), bcrypt.MinCost)
	mockRepo.On("FindByEmailOrUsername", mock.Anything, "maria@example.com", "").
		Return(domain.User{ID: uuid.New().String(), PasswordHash: string(hash)}, nil)

	_, err := svc.Login(context.Background(), "maria@example.com", "", "senha-errada")

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	mockToken.AssertNotCalled(t, "GenerateToken", mock.Anything)
}

// TestLogin_Fail_UnknownAccount: conta inexistente vira Unauthorized, não
// NotFound — não damos dica de quais contas existem.
func TestLogin_Fail_UnknownAccount(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockResolver := new(MockResolver)
	mockToken := new(MockTokenService)

	svc := userservice.NewService(mockRepo, mockResolver, mockToken, logger.NewLogger("debug"))

	mockRepo.On("FindByEmailOrUsername", mock.Anything, "ghost@example.com", "").
		Return(domain.User{}, apperror.NewNotFoundError("usuário"))

	_, err := svc.Login(context.Background(), "ghost@example.com", "", "qualquer")

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
}

// TestUpdateProfile_CEP_Regeocodes: alterar o CEP re-geocodifica e escreve
// CEP + coordenadas juntos.
func TestUpdateProfile_CEP_Regeocodes(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockResolver := new(MockResolver)
	mockToken := new(MockTokenService)

	svc := userservice.NewService(mockRepo, mockResolver, mockToken, logger.NewLogger("debug"))

	userID := uuid.New().String()
	coords := domain.Coordinates{Latitude: -22.9068, Longitude: -43.1729}

	mockResolver.On("Resolve", mock.Anything, "20040-010").Return(coords, nil)
	mockRepo.On("UpdateCEP", mock.Anything, userID, "20040-010", coords).Return(nil)

	err := svc.UpdateProfile(context.Background(), userID, domain.ProfileUpdate{Field: "cep", NewValue: "20040-010"})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "UpdateProfileField", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestUpdateProfile_CEP_InvalidAbortsWrite: CEP novo inválido não escreve nada.
func TestUpdateProfile_CEP_InvalidAbortsWrite(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockResolver := new(MockResolver)
	mockToken := new(MockTokenService)

	svc := userservice.NewService(mockRepo, mockResolver, mockToken, logger.NewLogger("debug"))

	mockResolver.On("Resolve", mock.Anything, "00000-000").
		Return(domain.Coordinates{}, apperror.NewInvalidPostalCodeError("00000-000"))

	err := svc.UpdateProfile(context.Background(), uuid.New().String(), domain.ProfileUpdate{Field: "cep", NewValue: "00000-000"})

	assert.Error(t, err)
	assert.IsType(t, &apperror.InvalidPostalCodeError{}, err)
	mockRepo.AssertNotCalled(t, "UpdateCEP", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestUpdateProfile_PlainField testa a atualização de um campo comum.
func TestUpdateProfile_PlainField(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockResolver := new(MockResolver)
	mockToken := new(MockTokenService)

	svc := userservice.NewService(mockRepo, mockResolver, mockToken, logger.NewLogger("debug"))

	userID := uuid.New().String()
	mockRepo.On("UpdateProfileField", mock.Anything, userID, "full_name", "Maria Souza").Return(nil)

	err := svc.UpdateProfile(context.Background(), userID, domain.ProfileUpdate{Field: "full_name", NewValue: "Maria Souza"})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockResolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

// TestListUsers_PassesThrough testa o repasse da listagem pública.
func TestListUsers_PassesThrough(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockResolver := new(MockResolver)
	mockToken := new(MockTokenService)

	svc := userservice.NewService(mockRepo, mockResolver, mockToken, logger.NewLogger("debug"))

	expected := []domain.UserSummary{{FullName: "Maria Silva", Email: "maria@example.com"}}
	mockRepo.On("ListAll", mock.Anything).Return(expected, nil)

	summaries, err := svc.ListUsers(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, expected, summaries)
	mockRepo.AssertExpectations(t)
}

// TestGetByID_RepoError propaga o erro do repositório sem retraduzir.
func TestGetByID_RepoError(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockResolver := new(MockResolver)
	mockToken := new(MockTokenService)

	svc := userservice.NewService(mockRepo, mockResolver, mockToken, logger.NewLogger("debug"))

	repoErr := errors.New("database connection lost")
	mockRepo.On("FindByID", mock.Anything, "abc").Return(domain.User{}, repoErr)

	_, err := svc.GetByID(context.Background(), "abc")

	assert.ErrorIs(t, err, repoErr)
}
