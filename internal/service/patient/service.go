package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/medagenda/scheduler-api/internal/model"
	"github.com/medagenda/scheduler-api/internal/repository"
	apperrors "github.com/medagenda/scheduler-api/pkg/errors"
)

type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	clinicID, err := uuid.Parse(req.ClinicID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid clinic ID", err)
	}

	priority := model.PatientPriority(req.Priority)
	if priority == "" {
		priority = model.PatientPriorityNormal
	}

	patient := &model.Patient{
		Base:        model.Base{ID: uuid.New()},
		ClinicID:    clinicID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Priority:    priority,
		Status:      model.PatientStatusActive,
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, apperrors.Internal(err)
	}
	return patient, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.Internal(err)
	}
	return patient, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.Internal(err)
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = req.DateOfBirth
	}
	if req.Priority != nil {
		patient.Priority = model.PatientPriority(*req.Priority)
	}
	if req.Status != nil {
		patient.Status = model.PatientStatus(*req.Status)
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, apperrors.Internal(err)
	}
	return patient, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("patient", err)
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, clinicID uuid.UUID, search string) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, clinicID, search)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return patients, nil
}
