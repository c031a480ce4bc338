package subscriptionrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quadrahub/internal/domain"
	apperror "quadrahub/internal/errors"
	"quadrahub/internal/pkg/logger"
)

// SubscriptionRepository é o ledger de inscrições (usuário, evento).
// O contrato central: no máximo uma linha por par, e o contador `subscribers`
// do evento sempre igual ao número de linhas do evento. Toda mutação que toca
// os dois lados roda em uma única transação.
type SubscriptionRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewSubscriptionRepository cria e retorna uma nova instância do ledger.
func NewSubscriptionRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *SubscriptionRepository {
	return &SubscriptionRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Subscribe inscreve o usuário no evento. Inscrever duas vezes não é erro e
// não incrementa duas vezes: o INSERT usa ON CONFLICT DO NOTHING e o contador
// só sobe se uma linha nova realmente entrou — na mesma transação, para que
// um crash no meio nunca deixe contador e linhas divergentes.
func (r *SubscriptionRepository) Subscribe(ctx context.Context, userID, eventID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return apperror.NewDBError("Falha ao iniciar transação de inscrição", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctxTimeout, `
        INSERT INTO event_subscriptions (user_id, event_id, created_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, event_id) DO NOTHING`,
		userID, eventID, time.Now(),
	)
	if err != nil {
		r.logger.Error("Falha ao inserir inscrição no DB.", err)
		return apperror.NewDBError("Falha ao inscrever usuário no evento", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}

	if inserted > 0 {
		updateResult, err := tx.ExecContext(ctxTimeout,
			`UPDATE events SET subscribers = subscribers + 1, updated_at = $1 WHERE id = $2`,
			time.Now(), eventID,
		)
		if err != nil {
			r.logger.Error("Falha ao incrementar contador de inscritos.", err)
			return apperror.NewDBError("Falha ao atualizar contador de inscritos", err)
		}
		rows, err := updateResult.RowsAffected()
		if err != nil {
			return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
		}
		if rows == 0 {
			// Inscrição em evento inexistente: a FK já deveria ter barrado,
			// mas o rollback garante que nenhuma linha órfã sobrevive.
			return apperror.NewNotFoundError(fmt.Sprintf("Evento '%s' não encontrado.", eventID))
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação de inscrição.", err)
		return apperror.NewDBError("Falha ao commitar inscrição", err)
	}

	if inserted > 0 {
		r.logger.Info("Usuário inscrito no evento.", map[string]interface{}{"user_id": userID, "event_id": eventID})
	} else {
		r.logger.Debug("Inscrição repetida ignorada (no-op).", map[string]interface{}{"user_id": userID, "event_id": eventID})
	}
	return nil
}

// Unsubscribe remove a inscrição do par, se existir; par ausente é no-op.
// O contador só desce se uma linha realmente saiu, na mesma transação —
// contador e linhas andam sempre juntos.
func (r *SubscriptionRepository) Unsubscribe(ctx context.Context, userID, eventID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return apperror.NewDBError("Falha ao iniciar transação de cancelamento", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctxTimeout,
		`DELETE FROM event_subscriptions WHERE user_id = $1 AND event_id = $2`,
		userID, eventID,
	)
	if err != nil {
		r.logger.Error("Falha ao remover inscrição no DB.", err)
		return apperror.NewDBError("Falha ao cancelar inscrição", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}

	if deleted > 0 {
		if _, err := tx.ExecContext(ctxTimeout,
			`UPDATE events SET subscribers = GREATEST(subscribers - 1, 0), updated_at = $1 WHERE id = $2`,
			time.Now(), eventID,
		); err != nil {
			r.logger.Error("Falha ao decrementar contador de inscritos.", err)
			return apperror.NewDBError("Falha ao atualizar contador de inscritos", err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação de cancelamento.", err)
		return apperror.NewDBError("Falha ao commitar cancelamento", err)
	}

	if deleted > 0 {
		r.logger.Info("Inscrição cancelada.", map[string]interface{}{"user_id": userID, "event_id": eventID})
	}
	return nil
}

// ListByUser devolve os eventos em que o usuário está inscrito, anotados com
// a data de inscrição. Nenhuma inscrição devolve slice vazio, não erro.
func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID string) ([]domain.SubscribedEvent, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        SELECT e.id, e.name, e.description, e.event_date, e.cep, e.photo,
               e.latitude, e.longitude, e.subscribers, e.rating, e.rating_qtd,
               e.created_at, e.updated_at, s.created_at
        FROM event_subscriptions s
        JOIN events e ON e.id = s.event_id
        WHERE s.user_id = $1
        ORDER BY s.created_at DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, userID)
	if err != nil {
		r.logger.Error("Falha ao listar inscrições no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar inscrições", err)
	}
	defer rows.Close()

	subscribed := make([]domain.SubscribedEvent, 0)
	for rows.Next() {
		var se domain.SubscribedEvent
		if err := rows.Scan(
			&se.ID, &se.Name, &se.Description, &se.Date, &se.CEP, &se.PhotoPath,
			&se.Latitude, &se.Longitude, &se.Subscribers, &se.Rating, &se.RatingCount,
			&se.CreatedAt, &se.UpdatedAt, &se.SubscribedAt,
		); err != nil {
			return nil, apperror.NewDBError("Falha ao mapear inscrição", err)
		}
		subscribed = append(subscribed, se)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar inscrições", err)
	}

	return subscribed, nil
}
