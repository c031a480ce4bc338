package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"quadrahub/internal/domain"
	apperror "quadrahub/internal/errors"
	"quadrahub/internal/pkg/logger"
)

// uniqueViolation é o código do PostgreSQL para violação de chave única.
const uniqueViolation = "23505"

// UserRepository implementa a persistência da entidade User.
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere um novo usuário já geocodificado. O chamador (serviço) só chama
// Save depois de resolver o CEP: nunca existe usuário sem coordenadas.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	const query = `
        INSERT INTO users (id, full_name, username, email, cep, password_hash, latitude, longitude, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		user.ID,
		user.FullName,
		user.Username,
		user.Email,
		user.CEP,
		user.PasswordHash,
		user.Latitude,
		user.Longitude,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			r.logger.Info("Cadastro rejeitado: email ou username já em uso.", map[string]interface{}{"email": user.Email, "username": user.Username})
			return domain.User{}, apperror.NewConflictError("Email ou nome de usuário já cadastrado.")
		}
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao cadastrar usuário", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// FindByID busca um usuário pelo id (subject do token).
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        SELECT id, full_name, username, email, cep, password_hash, latitude, longitude, created_at, updated_at
        FROM users WHERE id = $1`

	var user domain.User
	err := r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&user.ID, &user.FullName, &user.Username, &user.Email, &user.CEP,
		&user.PasswordHash, &user.Latitude, &user.Longitude, &user.CreatedAt, &user.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário '%s' não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar usuário por id no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao buscar usuário", err)
	}

	return user, nil
}

// FindByEmailOrUsername busca um usuário pelo email ou pelo nome de usuário.
// Usado no login (credencial única) e na checagem de duplicidade do cadastro.
func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        SELECT id, full_name, username, email, cep, password_hash, latitude, longitude, created_at, updated_at
        FROM users WHERE email = $1 OR username = $2`

	var user domain.User
	err := r.DB.QueryRowContext(ctxTimeout, query, email, username).Scan(
		&user.ID, &user.FullName, &user.Username, &user.Email, &user.CEP,
		&user.PasswordHash, &user.Latitude, &user.Longitude, &user.CreatedAt, &user.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, apperror.NewNotFoundError("Usuário não encontrado.")
	}
	if err != nil {
		r.logger.Error("Falha ao buscar usuário por email/username no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao buscar usuário", err)
	}

	return user, nil
}

// profileColumns mapeia os campos de perfil editáveis para as colunas reais.
// Qualquer campo fora desta lista é rejeitado pelo serviço antes de chegar aqui.
var profileColumns = map[string]string{
	"full_name": "full_name",
	"username":  "username",
	"email":     "email",
}

// UpdateProfileField atualiza um único campo permitido do perfil.
func (r *UserRepository) UpdateProfileField(ctx context.Context, userID, field, newValue string) error {
	column, ok := profileColumns[field]
	if !ok {
		return apperror.NewValidationError(fmt.Sprintf("Campo de perfil '%s' não é editável.", field))
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := fmt.Sprintf(`UPDATE users SET %s = $1, updated_at = $2 WHERE id = $3`, column)

	result, err := r.DB.ExecContext(ctxTimeout, query, newValue, time.Now(), userID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperror.NewConflictError("Email ou nome de usuário já em uso.")
		}
		r.logger.Error("Falha ao atualizar perfil no DB.", err)
		return apperror.NewDBError("Falha ao atualizar perfil", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rows == 0 {
		return apperror.NewNotFoundError("Usuário não encontrado.")
	}

	return nil
}

// UpdateCEP troca o CEP do usuário e as coordenadas derivadas em uma única
// escrita: o invariante é que latitude/longitude nunca divergem do CEP atual.
func (r *UserRepository) UpdateCEP(ctx context.Context, userID, cep string, coords domain.Coordinates) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        UPDATE users
        SET cep = $1, latitude = $2, longitude = $3, updated_at = $4
        WHERE id = $5`

	result, err := r.DB.ExecContext(ctxTimeout, query, cep, coords.Latitude, coords.Longitude, time.Now(), userID)
	if err != nil {
		r.logger.Error("Falha ao atualizar CEP/coordenadas no DB.", err)
		return apperror.NewDBError("Falha ao atualizar CEP", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rows == 0 {
		return apperror.NewNotFoundError("Usuário não encontrado.")
	}

	r.logger.Info("CEP e coordenadas do usuário atualizados.", map[string]interface{}{"user_id": userID, "cep": cep})
	return nil
}

// ListAll devolve a projeção pública de todos os usuários, ordenada por nome.
func (r *UserRepository) ListAll(ctx context.Context) ([]domain.UserSummary, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT full_name, email FROM users ORDER BY full_name ASC`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao listar usuários no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar usuários", err)
	}
	defer rows.Close()

	summaries := make([]domain.UserSummary, 0)
	for rows.Next() {
		var s domain.UserSummary
		if err := rows.Scan(&s.FullName, &s.Email); err != nil {
			return nil, apperror.NewDBError("Falha ao mapear usuário", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar usuários", err)
	}

	return summaries, nil
}
