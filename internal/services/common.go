package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"vregistry/internal/apperr"
	"vregistry/internal/models"
	"vregistry/internal/notify"
	"vregistry/internal/repositories"
)

const msgDecisionInvalid = "Необходимо указать ровно одно из полей: is_verified или is_rejected"

// checkDecisionRequest: общая валидация create/update до обращения к БД.
func checkDecisionRequest(req models.DecisionRequest) error {
	if err := req.Check(); err != nil {
		return apperr.BadRequest(msgDecisionInvalid, err).
			With("is_verified", req.IsVerified).
			With("is_rejected", req.IsRejected)
	}
	if req.WillActAt.IsZero() {
		return apperr.BadRequest("Поле will_act_at обязательно", nil)
	}
	return nil
}

// lookup runs fn and converts a missing row into the error built by missing.
func lookup[T any](ctx context.Context, fn func(context.Context, int) (T, error), id int, missing func(error) *apperr.Error) (T, error) {
	v, err := fn(ctx, id)
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, missing(err)
		}
		return zero, apperr.Internal(err)
	}
	return v, nil
}

// writeErr maps repository write errors; broken references are the client's fault.
func writeErr(err error) error {
	if errors.Is(err, repositories.ErrReferenceMissing) {
		return apperr.BadRequest("Связанная запись не существует", err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("Запись не найдена", err)
	}
	return apperr.Internal(err)
}

func valueErr(err error, value string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("Запись не найдена", err).With("value", value)
	}
	return apperr.Internal(err)
}

func deleteErr(err error, id int) error {
	if errors.Is(err, sql.ErrNoRows) {
		return recordMissing(id)(err)
	}
	return apperr.Internal(err)
}

// refetchErr: запись только что сохранена, её отсутствие считаем внутренней ошибкой.
func refetchErr(err error, id int) error {
	return apperr.Internal(err).With("id", id)
}

// notifyTimeout ограничивает отправку уведомлений внутри запроса.
var notifyTimeout = 5 * time.Second

func notifyDecision(ctx context.Context, n notify.Notifier, log *zap.Logger, d notify.Decision) {
	if n == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := n.NotifyDecision(ctx, d); err != nil {
		// не валим запрос из-за уведомлений
		log.Warn("decision notification failed",
			zap.String("kind", d.Kind), zap.Int("record_id", d.RecordID), zap.Error(err))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
