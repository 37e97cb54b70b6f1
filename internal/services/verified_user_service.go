package services

import (
	"context"

	"go.uber.org/zap"

	"vregistry/internal/apperr"
	"vregistry/internal/models"
	"vregistry/internal/notify"
	"vregistry/internal/repositories"
)

type VerifiedUserService interface {
	Create(ctx context.Context, req *models.CreateVerifiedUserRequest) (*models.VerifiedUser, error)
	Update(ctx context.Context, id int, req *models.UpdateVerifiedUserRequest) (*models.VerifiedUser, error)
	Get(ctx context.Context, id int) (*models.VerifiedUser, error)
	GetByValue(ctx context.Context, value string) (*models.VerifiedUser, error)
	List(ctx context.Context, f models.ListFilter) (*models.Page[*models.VerifiedUser], error)
	Delete(ctx context.Context, id int) error
}

type verifiedUserService struct {
	repo     repositories.VerifiedUserRepository
	users    repositories.UserRepository
	notifier notify.Notifier
	log      *zap.Logger
}

func NewVerifiedUserService(
	repo repositories.VerifiedUserRepository,
	users repositories.UserRepository,
	notifier notify.Notifier,
	log *zap.Logger,
) VerifiedUserService {
	return &verifiedUserService{repo: repo, users: users, notifier: notifier, log: log}
}

func recordMissing(id int) func(error) *apperr.Error {
	return func(err error) *apperr.Error {
		return apperr.NotFound("Запись не найдена", err).With("id", id)
	}
}

func (s *verifiedUserService) Create(ctx context.Context, req *models.CreateVerifiedUserRequest) (*models.VerifiedUser, error) {
	if err := checkDecisionRequest(req.DecisionRequest); err != nil {
		return nil, err
	}

	user, err := lookup(ctx, s.users.GetByID, req.UserID, func(err error) *apperr.Error {
		return apperr.NotFound("Пользователь не найден", err).With("user_id", req.UserID)
	})
	if err != nil {
		return nil, err
	}

	// идентификаторы всегда берём из users, присланное клиентом игнорируем
	req.IIN = user.IIN
	req.PassportNumber = user.PassportNumber

	rec := &models.VerifiedUser{
		UserID:         req.UserID,
		IIN:            req.IIN,
		PassportNumber: req.PassportNumber,
		Decision:       req.Decision(),
	}
	id, err := s.repo.Create(ctx, rec)
	if err != nil {
		return nil, writeErr(err)
	}

	created, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, refetchErr(err, id)
	}
	s.log.Info("verified user created",
		zap.Int("id", id), zap.Int("user_id", created.UserID), zap.Bool("verified", created.Verified()))
	notifyDecision(ctx, s.notifier, s.log, userDecision(created, notify.ActionCreated))
	return created, nil
}

func (s *verifiedUserService) Update(ctx context.Context, id int, req *models.UpdateVerifiedUserRequest) (*models.VerifiedUser, error) {
	if err := checkDecisionRequest(req.DecisionRequest); err != nil {
		return nil, err
	}

	existing, err := lookup(ctx, s.repo.GetByID, id, recordMissing(id))
	if err != nil {
		return nil, err
	}

	if _, err := lookup(ctx, s.users.GetByID, req.UserID, func(err error) *apperr.Error {
		return apperr.BadRequest("Пользователь не найден", err).With("user_id", req.UserID)
	}); err != nil {
		return nil, err
	}

	// ИИН и паспорт закреплены за записью с момента создания
	req.IIN = existing.IIN
	req.PassportNumber = existing.PassportNumber

	rec := &models.VerifiedUser{
		ID:             id,
		UserID:         req.UserID,
		IIN:            req.IIN,
		PassportNumber: req.PassportNumber,
		Decision:       req.Decision(),
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, writeErr(err)
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, refetchErr(err, id)
	}
	s.log.Info("verified user updated", zap.Int("id", id), zap.Bool("verified", updated.Verified()))
	notifyDecision(ctx, s.notifier, s.log, userDecision(updated, notify.ActionUpdated))
	return updated, nil
}

func (s *verifiedUserService) Get(ctx context.Context, id int) (*models.VerifiedUser, error) {
	return lookup(ctx, s.repo.GetByID, id, recordMissing(id))
}

func (s *verifiedUserService) GetByValue(ctx context.Context, value string) (*models.VerifiedUser, error) {
	v, err := s.repo.GetByValue(ctx, value)
	if err != nil {
		return nil, valueErr(err, value)
	}
	return v, nil
}

func (s *verifiedUserService) List(ctx context.Context, f models.ListFilter) (*models.Page[*models.VerifiedUser], error) {
	page, err := s.repo.List(ctx, f.Normalize())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return page, nil
}

func (s *verifiedUserService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return deleteErr(err, id)
	}
	s.log.Info("verified user deleted", zap.Int("id", id))
	return nil
}

func userDecision(v *models.VerifiedUser, action string) notify.Decision {
	subject := deref(v.IIN)
	if subject == "" {
		subject = deref(v.PassportNumber)
	}
	return notify.Decision{
		Kind:      notify.KindUser,
		Action:    action,
		RecordID:  v.ID,
		SubjectID: v.UserID,
		Subject:   subject,
		Verified:  v.Verified(),
		Rejected:  v.Rejected(),
		WillActAt: v.WillActAt,
	}
}
