package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Cheertaboi/gift-voucher-service/internal/models"
)

var (
	ErrPeriodNotFound    = errors.New("exclusion period not found")
	ErrPeriodDateInvalid = errors.New("exclusion period end date must be after its start date")
)

type ExclusionService struct {
	repo     PeriodRepo
	source   *PeriodSource
	validate *validator.Validate
	logger   *zap.Logger
}

func NewExclusionService(repo PeriodRepo, source *PeriodSource, logger *zap.Logger) *ExclusionService {
	return &ExclusionService{repo: repo, source: source, validate: validator.New(), logger: logger}
}

func (s *ExclusionService) List(ctx context.Context) ([]models.ExclusionPeriod, error) {
	return s.source.Periods(ctx)
}

func (s *ExclusionService) Create(ctx context.Context, req models.ExclusionPeriodRequest) (*models.ExclusionPeriod, error) {
	p := &models.ExclusionPeriod{ID: uuid.New()}
	if err := s.apply(p, req); err != nil {
		return nil, err
	}
	if err := s.repo.CreatePeriod(ctx, p); err != nil {
		s.logger.Error("create exclusion period failed", zap.Error(err))
		return nil, err
	}
	s.source.invalidate(ctx)
	return p, nil
}

func (s *ExclusionService) Update(ctx context.Context, id uuid.UUID, req models.ExclusionPeriodRequest) (*models.ExclusionPeriod, error) {
	p, err := s.repo.GetPeriod(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}
	if err := s.apply(p, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePeriod(ctx, p); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}
	s.source.invalidate(ctx)
	return p, nil
}

func (s *ExclusionService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeletePeriod(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrPeriodNotFound
		}
		return err
	}
	s.source.invalidate(ctx)
	return nil
}

func (s *ExclusionService) apply(p *models.ExclusionPeriod, req models.ExclusionPeriodRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		return ErrPeriodDateInvalid
	}
	end, err := time.Parse(time.DateOnly, req.EndDate)
	if err != nil {
		return ErrPeriodDateInvalid
	}
	if !end.After(start) {
		return ErrPeriodDateInvalid
	}

	p.Name = req.Name
	p.Description = req.Description
	p.StartDate = start
	p.EndDate = end
	p.IsRecurring = req.IsRecurring
	p.RecurringType = ""
	if req.IsRecurring {
		p.RecurringType = models.RecurringYearly
	}
	return nil
}
