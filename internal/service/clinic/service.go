package clinic

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/medagenda/scheduler-api/internal/model"
	"github.com/medagenda/scheduler-api/internal/repository"
	apperrors "github.com/medagenda/scheduler-api/pkg/errors"
)

// Service exposes clinic reference data. Clinics are administered in a
// separate system; the scheduler only reads opening hours and the doctor
// roster.
type Service struct {
	repo       repository.ClinicRepository
	doctorRepo repository.DoctorRepository
}

func NewService(repo repository.ClinicRepository, doctorRepo repository.DoctorRepository) *Service {
	return &Service{repo: repo, doctorRepo: doctorRepo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.ClinicWithDoctors, error) {
	clinic, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clinic", err)
		}
		return nil, apperrors.Internal(err)
	}

	doctors, err := s.doctorRepo.List(ctx, id, true)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.ClinicWithDoctors{Clinic: *clinic, Doctors: doctors}, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Clinic, error) {
	clinics, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return clinics, nil
}
