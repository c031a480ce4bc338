package eventrepo

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

const eventCacheKey = "event:%s"

const eventCacheTTL = 5 * time.Minute

// EventRepository implementa a persistência da entidade Event.
// As inscrições ficam no subscriptionrepo; aqui só o registro do evento e o
// agregador de avaliações.
type EventRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewEventRepository cria e retorna uma nova instância do Repositório de Eventos.
func NewEventRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *EventRepository {
	return &EventRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere um novo evento com avaliação e inscritos zerados.
func (r *EventRepository) Save(ctx context.Context, event domain.Event) (domain.Event, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	event.ID = uuid.NewString()
	event.Rating = 0
	event.RatingCount = 0
	event.Subscribers = 0
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt

	const query = `
        INSERT INTO events (id, name, description, event_date, cep, photo, latitude, longitude, subscribers, rating, rating_qtd, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING id`

	var returnedID string
	err := r.DB.QueryRowContext(ctxTimeout, query,
		event.ID, event.Name, event.Description, event.Date, event.CEP, event.PhotoPath,
		event.Latitude, event.Longitude, event.Subscribers, event.Rating, event.RatingCount,
		event.CreatedAt, event.UpdatedAt,
	).Scan(&returnedID)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, apperror.NewInternalError("Não foi possível cadastrar o evento.", err)
	}
	if err != nil {
		r.logger.Error("Falha ao inserir evento no DB.", err)
		return domain.Event{}, apperror.NewDBError("Falha ao cadastrar evento", err)
	}

	r.logger.Info("Evento cadastrado com sucesso.", map[string]interface{}{"event_id": event.ID})
	return event, nil
}

// FindByID busca um evento pelo id, com cache-aside.
func (r *EventRepository) FindByID(ctx context.Context, id string) (domain.Event, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(eventCacheKey, id)
	var event domain.Event

	if cached, err := r.Cache.Get(ctxTimeout, key); err == nil {
		if json.Unmarshal([]byte(cached), &event) == nil {
			return event, nil
		}
	}

	const query = `
        SELECT id, name, description, event_date, cep, photo, latitude, longitude, subscribers, rating, rating_qtd, created_at, updated_at
        FROM events WHERE id = $1`

	err := r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&event.ID, &event.Name, &event.Description, &event.Date, &event.CEP, &event.PhotoPath,
		&event.Latitude, &event.Longitude, &event.Subscribers, &event.Rating, &event.RatingCount,
		&event.CreatedAt, &event.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, apperror.NewNotFoundError(fmt.Sprintf("Evento '%s' não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar evento no DB.", err)
		return domain.Event{}, apperror.NewDBError("Falha ao buscar evento", err)
	}

	if eventJSON, marshalErr := json.Marshal(event); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, eventJSON, eventCacheTTL)
	}

	return event, nil
}

// FindAll devolve todos os eventos cadastrados; o ranqueamento por distância
// é do serviço.
func (r *EventRepository) FindAll(ctx context.Context) ([]domain.Event, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        SELECT id, name, description, event_date, cep, photo, latitude, longitude, subscribers, rating, rating_qtd, created_at, updated_at
        FROM events`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao listar eventos no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar eventos", err)
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Description, &e.Date, &e.CEP, &e.PhotoPath,
			&e.Latitude, &e.Longitude, &e.Subscribers, &e.Rating, &e.RatingCount,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, apperror.NewDBError("Falha ao mapear evento", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar eventos", err)
	}

	return events, nil
}

// ApplyRating aplica uma nova avaliação ao evento. Mesma disciplina da
// quadra: linha travada com FOR UPDATE, média recalculada e UPDATE verificado
// por RowsAffected, tudo em uma transação.
func (r *EventRepository) ApplyRating(ctx context.Context, id string, newRating float64) (float64, error) {
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
		`SELECT rating, rating_qtd FROM events WHERE id = $1 FOR UPDATE`, id,
	).Scan(&rating, &count)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperror.NewNotFoundError(fmt.Sprintf("Evento '%s' não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar evento para avaliação.", err)
		return 0, apperror.NewDBError("Falha ao buscar evento para avaliação", err)
	}

	newMean := (rating*float64(count) + newRating) / float64(count+1)

	result, err := tx.ExecContext(ctxTimeout,
		`UPDATE events SET rating = $1, rating_qtd = $2, updated_at = $3 WHERE id = $4`,
		newMean, count+1, time.Now(), id,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar avaliação do evento.", err)
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

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(eventCacheKey, id))

	r.logger.Info("Avaliação aplicada ao evento.", map[string]interface{}{
		"event_id": id,
		"new_mean": newMean,
		"count":    count + 1,
	})
	return newMean, nil
}

// InvalidateCache remove a cópia em cache de um evento. Chamado pelo ledger
// de inscrições quando o contador de inscritos muda.
func (r *EventRepository) InvalidateCache(ctx context.Context, id string) {
	r.Cache.Delete(ctx, fmt.Sprintf(eventCacheKey, id))
}
