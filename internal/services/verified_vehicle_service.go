package services

import (
	"context"

	"go.uber.org/zap"

	"vregistry/internal/apperr"
	"vregistry/internal/models"
	"vregistry/internal/notify"
	"vregistry/internal/repositories"
)

type VerifiedVehicleService interface {
	Create(ctx context.Context, req *models.CreateVerifiedVehicleRequest) (*models.VerifiedVehicle, error)
	Update(ctx context.Context, id int, req *models.UpdateVerifiedVehicleRequest) (*models.VerifiedVehicle, error)
	Get(ctx context.Context, id int) (*models.VerifiedVehicle, error)
	GetByValue(ctx context.Context, value string) (*models.VerifiedVehicle, error)
	List(ctx context.Context, f models.ListFilter) (*models.Page[*models.VerifiedVehicle], error)
	Delete(ctx context.Context, id int) error
}

type verifiedVehicleService struct {
	repo     repositories.VerifiedVehicleRepository
	vehicles repositories.VehicleRepository
	notifier notify.Notifier
	log      *zap.Logger
}

func NewVerifiedVehicleService(
	repo repositories.VerifiedVehicleRepository,
	vehicles repositories.VehicleRepository,
	notifier notify.Notifier,
	log *zap.Logger,
) VerifiedVehicleService {
	return &verifiedVehicleService{repo: repo, vehicles: vehicles, notifier: notifier, log: log}
}

func (s *verifiedVehicleService) Create(ctx context.Context, req *models.CreateVerifiedVehicleRequest) (*models.VerifiedVehicle, error) {
	if err := checkDecisionRequest(req.DecisionRequest); err != nil {
		return nil, err
	}

	vehicle, err := lookup(ctx, s.vehicles.GetByID, req.VehicleID, func(err error) *apperr.Error {
		return apperr.NotFound("Транспорт не найден", err).With("vehicle_id", req.VehicleID)
	})
	if err != nil {
		return nil, err
	}

	// госномер берём из справочника транспорта
	carNumber := vehicle.CarNumber
	req.CarNumber = &carNumber

	rec := &models.VerifiedVehicle{
		VehicleID: req.VehicleID,
		CarNumber: req.CarNumber,
		Decision:  req.Decision(),
	}
	id, err := s.repo.Create(ctx, rec)
	if err != nil {
		return nil, writeErr(err)
	}

	created, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, refetchErr(err, id)
	}
	s.log.Info("verified vehicle created",
		zap.Int("id", id), zap.Int("vehicle_id", created.VehicleID), zap.Bool("verified", created.Verified()))
	notifyDecision(ctx, s.notifier, s.log, vehicleDecision(created, notify.ActionCreated))
	return created, nil
}

// Update checks the vehicle named by req.VehicleID; the car number stays pinned.
func (s *verifiedVehicleService) Update(ctx context.Context, id int, req *models.UpdateVerifiedVehicleRequest) (*models.VerifiedVehicle, error) {
	if err := checkDecisionRequest(req.DecisionRequest); err != nil {
		return nil, err
	}

	existing, err := lookup(ctx, s.repo.GetByID, id, recordMissing(id))
	if err != nil {
		return nil, err
	}

	if _, err := lookup(ctx, s.vehicles.GetByID, req.VehicleID, func(err error) *apperr.Error {
		return apperr.BadRequest("Транспорт не найден", err).With("vehicle_id", req.VehicleID)
	}); err != nil {
		return nil, err
	}

	req.CarNumber = existing.CarNumber

	rec := &models.VerifiedVehicle{
		ID:        id,
		VehicleID: req.VehicleID,
		CarNumber: req.CarNumber,
		Decision:  req.Decision(),
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, writeErr(err)
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, refetchErr(err, id)
	}
	s.log.Info("verified vehicle updated", zap.Int("id", id), zap.Bool("verified", updated.Verified()))
	notifyDecision(ctx, s.notifier, s.log, vehicleDecision(updated, notify.ActionUpdated))
	return updated, nil
}

func (s *verifiedVehicleService) Get(ctx context.Context, id int) (*models.VerifiedVehicle, error) {
	return lookup(ctx, s.repo.GetByID, id, recordMissing(id))
}

func (s *verifiedVehicleService) GetByValue(ctx context.Context, value string) (*models.VerifiedVehicle, error) {
	v, err := s.repo.GetByValue(ctx, value)
	if err != nil {
		return nil, valueErr(err, value)
	}
	return v, nil
}

func (s *verifiedVehicleService) List(ctx context.Context, f models.ListFilter) (*models.Page[*models.VerifiedVehicle], error) {
	page, err := s.repo.List(ctx, f.Normalize())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return page, nil
}

func (s *verifiedVehicleService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return deleteErr(err, id)
	}
	s.log.Info("verified vehicle deleted", zap.Int("id", id))
	return nil
}

func vehicleDecision(v *models.VerifiedVehicle, action string) notify.Decision {
	return notify.Decision{
		Kind:      notify.KindVehicle,
		Action:    action,
		RecordID:  v.ID,
		SubjectID: v.VehicleID,
		Subject:   deref(v.CarNumber),
		Verified:  v.Verified(),
		Rejected:  v.Rejected(),
		WillActAt: v.WillActAt,
	}
}
