package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/medagenda/scheduler-api/internal/model"
	"github.com/medagenda/scheduler-api/internal/repository"
	apperrors "github.com/medagenda/scheduler-api/pkg/errors"
)

const (
	statsCacheTTL     = time.Hour
	statsCacheCleanup = 10 * time.Minute
	upcomingLimit     = 5
)

// Service manages doctor reference data and workload statistics. Stats
// are expensive to aggregate, so they are cached per doctor for an hour;
// the cache is owned here, not shared process-wide.
type Service struct {
	repo     repository.DoctorRepository
	aptRepo  repository.AppointmentRepository
	statsTTL *gocache.Cache

	now func() time.Time
}

func NewService(repo repository.DoctorRepository, aptRepo repository.AppointmentRepository) *Service {
	return &Service{
		repo:     repo,
		aptRepo:  aptRepo,
		statsTTL: gocache.New(statsCacheTTL, statsCacheCleanup),
		now:      time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	clinicID, err := uuid.Parse(req.ClinicID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid clinic ID", err)
	}

	doctor := &model.Doctor{
		Base:      model.Base{ID: uuid.New()},
		ClinicID:  clinicID,
		Name:      req.Name,
		Email:     req.Email,
		Specialty: req.Specialty,
		Active:    true,
	}

	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, apperrors.Internal(err)
	}
	return doctor, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, apperrors.Internal(err)
	}
	return doctor, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, apperrors.Internal(err)
	}

	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if req.Email != nil {
		doctor.Email = *req.Email
	}
	if req.Specialty != nil {
		doctor.Specialty = *req.Specialty
	}
	if req.Active != nil {
		doctor.Active = *req.Active
	}

	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.statsTTL.Delete(statsKey(id))
	return doctor, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("doctor", err)
		}
		return apperrors.Internal(err)
	}
	s.statsTTL.Delete(statsKey(id))
	return nil
}

func (s *Service) List(ctx context.Context, clinicID uuid.UUID, activeOnly bool) ([]*model.Doctor, error) {
	doctors, err := s.repo.List(ctx, clinicID, activeOnly)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return doctors, nil
}

// Stats aggregates a doctor's workload counters, cached for an hour.
func (s *Service) Stats(ctx context.Context, id uuid.UUID) (*model.DoctorStats, error) {
	if cached, ok := s.statsTTL.Get(statsKey(id)); ok {
		return cached.(*model.DoctorStats), nil
	}

	if _, err := s.repo.Get(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, apperrors.Internal(err)
	}

	stats, err := s.computeStats(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.statsTTL.Set(statsKey(id), stats, gocache.DefaultExpiration)
	return stats, nil
}

// InvalidateStats drops the cached counters for a doctor, forcing the
// next Stats call to recompute.
func (s *Service) InvalidateStats(id uuid.UUID) {
	s.statsTTL.Delete(statsKey(id))
}

func (s *Service) computeStats(ctx context.Context, id uuid.UUID) (*model.DoctorStats, error) {
	now := s.now()
	year, month, day := now.Date()
	today := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	tomorrow := today.Add(24 * time.Hour)
	weekEnd := today.AddDate(0, 0, 7)
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	total, err := s.aptRepo.CountByDoctor(ctx, id, nil, nil)
	if err != nil {
		return nil, err
	}
	todayCount, err := s.aptRepo.CountByDoctor(ctx, id, &today, &tomorrow)
	if err != nil {
		return nil, err
	}
	weekCount, err := s.aptRepo.CountByDoctor(ctx, id, &today, &weekEnd)
	if err != nil {
		return nil, err
	}
	monthCount, err := s.aptRepo.CountByDoctor(ctx, id, &monthStart, &monthEnd)
	if err != nil {
		return nil, err
	}
	patients, err := s.aptRepo.CountDistinctPatients(ctx, id)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.aptRepo.ListUpcoming(ctx, id, now, upcomingLimit)
	if err != nil {
		return nil, err
	}

	return &model.DoctorStats{
		DoctorID:          id,
		TotalAppointments: total,
		TodayAppointments: todayCount,
		WeekAppointments:  weekCount,
		MonthAppointments: monthCount,
		TotalPatients:     patients,
		Upcoming:          upcoming,
		GeneratedAt:       now,
	}, nil
}

func statsKey(id uuid.UUID) string {
	return fmt.Sprintf("doctor_stats_%s", id)
}
