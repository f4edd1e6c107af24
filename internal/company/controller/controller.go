// Package controller implements the core business logic (service layer)
// for managing Company entities, orchestrating validation, repository
// operations, list caching and change events.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	e "github.com/coronavstech/companies/internal/company/errors"
	"github.com/coronavstech/companies/internal/company/events"
	"github.com/coronavstech/companies/internal/company/models"
	"github.com/coronavstech/companies/internal/company/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventProducer interface {
	Produce(eventType events.EventType, company *models.Company)
}

// ListCache caches the result of listing all companies. GetList reports the
// write generation on a miss; SetList only stores if it is unchanged.
type ListCache interface {
	GetList(ctx context.Context) ([]models.Company, int64, bool, error)
	SetList(ctx context.Context, companies []models.Company, gen int64) error
	Invalidate(ctx context.Context) error
}

// Repository defines the storage interface for Company objects.
type Repository interface {
	ListCompanies(ctx context.Context) ([]models.Company, error)
	CreateCompany(ctx context.Context, company *models.Company) error
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate) (*models.Company, error)
	DeleteCompany(ctx context.Context, id uuid.UUID) error
	CompanyExistsByName(ctx context.Context, name string, exclude uuid.UUID) (bool, error)
	Close() error
}

// CompanyService provides methods to manage companies via repository
// operations and event production.
type CompanyService struct {
	repo      Repository
	producer  EventProducer
	cache     ListCache
	validator *validation.Validator
	logger    *zap.Logger
	now       func() time.Time
}

// NewCompanyService constructs a CompanyService. cache may be nil, in which
// case every list goes to the repository.
func NewCompanyService(repo Repository, producer EventProducer, cache ListCache, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		repo:      repo,
		producer:  producer,
		cache:     cache,
		validator: validation.New(),
		logger:    logger.Named("company_service"),
		now:       time.Now,
	}
}

// ListCompanies returns every company ordered by name.
func (s *CompanyService) ListCompanies(ctx context.Context) ([]models.Company, error) {
	var gen int64
	cacheable := false
	if s.cache != nil {
		companies, g, ok, err := s.cache.GetList(ctx)
		switch {
		case err != nil:
			s.logger.Warn("Failed to read company list from cache", zap.Error(err))
		case ok:
			return companies, nil
		default:
			gen, cacheable = g, true
		}
	}

	companies, err := s.repo.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	if cacheable {
		if err := s.cache.SetList(ctx, companies, gen); err != nil {
			s.logger.Warn("Failed to cache company list", zap.Error(err))
		}
	}
	return companies, nil
}

// GetCompany retrieves a Company by ID, returning an error if not found.
func (s *CompanyService) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

// CreateCompany validates in, applies defaults for omitted fields, ensures
// the name is unused and stores the new company.
func (s *CompanyService) CreateCompany(ctx context.Context, in *models.CompanyInput) (*models.Company, error) {
	update, err := s.validate(ctx, in, validation.ModeCreate, uuid.Nil)
	if err != nil {
		return nil, err
	}

	company := models.NewCompany(*update.Name, s.now().UTC())
	update.Apply(company)

	if err := s.repo.CreateCompany(ctx, company); err != nil {
		if errors.Is(err, e.ErrDuplicateName) {
			return nil, duplicateNameError()
		}
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	s.afterWrite(ctx, events.CompanyCreated, company)
	return company, nil
}

// UpdateCompany changes the company identified by id. A partial update
// requires nothing; a full update requires name. Absent fields keep their
// stored values either way.
func (s *CompanyService) UpdateCompany(ctx context.Context, id uuid.UUID, in *models.CompanyInput, partial bool) (*models.Company, error) {
	current, err := s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}

	mode := validation.ModeReplace
	if partial {
		mode = validation.ModePartial
	}
	update, err := s.validate(ctx, in, mode, id)
	if err != nil {
		return nil, err
	}
	if update.Empty() {
		return current, nil
	}
	update.ID = id

	updated, err := s.repo.UpdateCompany(ctx, update)
	if err != nil {
		switch {
		case errors.Is(err, e.ErrNotFound):
			return nil, err
		case errors.Is(err, e.ErrDuplicateName):
			return nil, duplicateNameError()
		}
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	s.afterWrite(ctx, events.CompanyUpdated, updated)
	return updated, nil
}

// DeleteCompany removes a Company by ID and fires a deletion event.
func (s *CompanyService) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get company for deletion: %w", err)
	}

	if err := s.repo.DeleteCompany(ctx, id); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete company: %w", err)
	}

	s.afterWrite(ctx, events.CompanyDeleted, company)
	return nil
}

// validate runs the field rules and, when the name itself is acceptable, the
// uniqueness check against every company except exclude.
func (s *CompanyService) validate(ctx context.Context, in *models.CompanyInput, mode validation.Mode, exclude uuid.UUID) (*models.CompanyUpdate, error) {
	update, fieldErrs := s.validator.Validate(in, mode)
	if fieldErrs == nil {
		fieldErrs = e.FieldErrors{}
	}

	duplicate := false
	if in.Name != nil && !fieldErrs.Has(models.FieldName) {
		exists, err := s.repo.CompanyExistsByName(ctx, strings.TrimSpace(*in.Name), exclude)
		if err != nil {
			return nil, fmt.Errorf("failed to check name existence: %w", err)
		}
		if exists {
			fieldErrs.Add(models.FieldName, validation.MsgDuplicateName)
			duplicate = true
		}
	}

	if len(fieldErrs) > 0 {
		return nil, e.NewValidationError(fieldErrs, duplicate)
	}
	return update, nil
}

func (s *CompanyService) afterWrite(ctx context.Context, eventType events.EventType, company *models.Company) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("Failed to invalidate company list cache",
				zap.Error(err),
				zap.String("event_type", string(eventType)),
			)
		}
	}

	// The event gets its own copy; the caller keeps using company.
	snapshot := *company
	go func() {
		s.producer.Produce(eventType, &snapshot)
	}()
}

func duplicateNameError() error {
	fields := e.FieldErrors{}
	fields.Add(models.FieldName, validation.MsgDuplicateName)
	return e.NewValidationError(fields, true)
}
