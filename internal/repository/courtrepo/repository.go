package courtrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quadrahub/internal/domain"
	apperror "quadrahub/internal/errors"
	"quadrahub/internal/pkg/cache"
	"quadrahub/internal/pkg/logger"
)

// Chave de cache por quadra (estratégia cache-aside nas leituras por id).
const courtCacheKey = "court:%s"

// courtCacheTTL limita quanto tempo uma quadra pode ficar defasada no cache.
const courtCacheTTL = 5 * time.Minute

// CourtRepository implementa a persistência da entidade Court.
type CourtRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewCourtRepository cria e retorna uma nova instância do Repositório de Quadras.
func NewCourtRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *CourtRepository {
	return &CourtRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere uma nova quadra com os agregados de avaliação zerados.
// O id devolvido vem do RETURNING; inserção sem id é falha de cadastro.
func (r *CourtRepository) Save(ctx context.Context, court domain.Court) (domain.Court, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	court.ID = uuid.NewString()
	court.Rating = 0
	court.RatingCount = 0
	court.CreatedAt = time.Now()
	court.UpdatedAt = court.CreatedAt

	const query = `
        INSERT INTO courts (id, name, cep, photo, latitude, longitude, rating, rating_qtd, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id`

	var returnedID string
	err := r.DB.QueryRowContext(ctxTimeout, query,
		court.ID, court.Name, court.CEP, court.PhotoPath,
		court.Latitude, court.Longitude, court.Rating, court.RatingCount,
		court.CreatedAt, court.UpdatedAt,
	).Scan(&returnedID)

	if errors.Is(err, sql.ErrNoRows) {
		// INSERT sem linha devolvida: violação silenciosa de constraint.
		return domain.Court{}, apperror.NewInternalError("Não foi possível cadastrar a quadra.", err)
	}
	if err != nil {
		r.logger.Error("Falha ao inserir quadra no DB.", err)
		return domain.Court{}, apperror.NewDBError("Falha ao cadastrar quadra", err)
	}

	r.logger.Info("Quadra cadastrada com sucesso.", map[string]interface{}{"court_id": court.ID})
	return court, nil
}

// FindByID busca uma quadra pelo id, com cache-aside.
func (r *CourtRepository) FindByID(ctx context.Context, id string) (domain.Court, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(courtCacheKey, id)
	var court domain.Court

	// Cache HIT devolve direto; qualquer falha de cache degrada para o DB.
	if cached, err := r.Cache.Get(ctxTimeout, key); err == nil {
		if json.Unmarshal([]byte(cached), &court) == nil {
			return court, nil
		}
	}

	const query = `
        SELECT id, name, cep, photo, latitude, longitude, rating, rating_qtd, created_at, updated_at
        FROM courts WHERE id = $1`

	err := r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&court.ID, &court.Name, &court.CEP, &court.PhotoPath,
		&court.Latitude, &court.Longitude, &court.Rating, &court.RatingCount,
		&court.CreatedAt, &court.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Court{}, apperror.NewNotFoundError(fmt.Sprintf("Quadra '%s' não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar quadra no DB.", err)
		return domain.Court{}, apperror.NewDBError("Falha ao buscar quadra", err)
	}

	if courtJSON, marshalErr := json.Marshal(court); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, courtJSON, courtCacheTTL)
	}

	return court, nil
}

// FindAll devolve todas as quadras cadastradas. O ranqueamento por distância
// é feito em memória pelo serviço (internal/geo); aqui só leitura.
func (r *CourtRepository) FindAll(ctx context.Context) ([]domain.Court, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        SELECT id, name, cep, photo, latitude, longitude, rating, rating_qtd, created_at, updated_at
        FROM courts`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao listar quadras no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar quadras", err)
	}
	defer rows.Close()

	courts := make([]domain.Court, 0)
	for rows.Next() {
		var c domain.Court
		if err := rows.Scan(
			&c.ID, &c.Name, &c.CEP, &c.PhotoPath,
			&c.Latitude, &c.Longitude, &c.Rating, &c.RatingCount,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, apperror.NewDBError("Falha ao mapear quadra", err)
		}
		courts = append(courts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar quadras", err)
	}

	return courts, nil
}

// ApplyRating aplica uma nova avaliação à quadra como leitura-cálculo-escrita
// atômica: SELECT ... FOR UPDATE trava a linha, a nova média é
// (rating*qtd + nova) / (qtd+1), e o UPDATE só conta se afetar a linha.
// Duas avaliações concorrentes serializam no lock; nenhuma se perde.
func (r *CourtRepository) ApplyRating(ctx context.Context, id string, newRating float64) (float64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return 0, apperror.NewDBError("Falha ao iniciar transação de avaliação", err)
	}
	defer tx.Rollback()

	var rating float64
	var count int
	err = tx.QueryRowContext(ctxTimeout,
		`SELECT rating, rating_qtd FROM courts WHERE id = $1 FOR UPDATE`, id,
	).Scan(&rating, &count)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperror.NewNotFoundError(fmt.Sprintf("Quadra '%s' não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar quadra para avaliação.", err)
		return 0, apperror.NewDBError("Falha ao buscar quadra para avaliação", err)
	}

	newMean := (rating*float64(count) + newRating) / float64(count+1)

	result, err := tx.ExecContext(ctxTimeout,
		`UPDATE courts SET rating = $1, rating_qtd = $2, updated_at = $3 WHERE id = $4`,
		newMean, count+1, time.Now(), id,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar avaliação da quadra.", err)
		return 0, apperror.NewDBError("Falha ao atualizar avaliação", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rows == 0 {
		return 0, apperror.NewInternalError("Erro ao atualizar a avaliação.", nil)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação de avaliação.", err)
		return 0, apperror.NewDBError("Falha ao commitar avaliação", err)
	}

	// A média mudou; a cópia em cache está defasada.
	r.Cache.Delete(ctxTimeout, fmt.Sprintf(courtCacheKey, id))

	r.logger.Info("Avaliação aplicada à quadra.", map[string]interface{}{
		"court_id": id,
		"new_mean": newMean,
		"count":    count + 1,
	})
	return newMean, nil
}
