package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/DiogoBrazil/medimage-api/internal/auth"
	"github.com/DiogoBrazil/medimage-api/internal/domain"
	"github.com/DiogoBrazil/medimage-api/internal/events"
	"github.com/DiogoBrazil/medimage-api/internal/repository"
	"github.com/DiogoBrazil/medimage-api/pkg/util"
)

// HealthUnitInput collects the unit fields for create and update.
type HealthUnitInput struct {
	AdminID string
	Name    string
	CNPJ    string
	Status  domain.UnitStatus
}

// HealthUnitService manages clinics within the caller's tenant scope.
type HealthUnitService struct {
	units      repository.HealthUnitRepository
	dispatcher events.Dispatcher
}

// NewHealthUnitService builds the service.
func NewHealthUnitService(units repository.HealthUnitRepository, dispatcher events.Dispatcher) *HealthUnitService {
	return &HealthUnitService{units: units, dispatcher: dispatcher}
}

// Create registers a unit. An administrator always creates under their own
// subtree; a general administrator must name the target admin.
func (s *HealthUnitService) Create(ctx context.Context, p auth.Principal, input HealthUnitInput) (*domain.HealthUnit, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, util.NewValidationError("Name is required")
	}
	if !validCNPJ(input.CNPJ) {
		return nil, util.NewValidationError("Invalid CNPJ. Provide 14 digits")
	}

	adminID := p.ID
	if p.Role == domain.RoleGeneralAdministrator {
		if input.AdminID == "" {
			return nil, util.NewValidationError("admin_id is required")
		}
		adminID = input.AdminID
	}

	status := input.Status
	if status == "" {
		status = domain.UnitStatusActive
	}
	if !status.Valid() {
		return nil, util.NewValidationError("Invalid status")
	}

	unit := &domain.HealthUnit{
		AdminID: adminID,
		Name:    input.Name,
		CNPJ:    input.CNPJ,
		Status:  status,
	}
	if err := s.units.Create(ctx, unit); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventHealthUnitCreated, unit.ID, actorForPrincipal(p), events.HealthUnitPayload{
		Name:    unit.Name,
		AdminID: unit.AdminID,
	})
	return unit, nil
}

// Get fetches a unit and verifies it belongs to the caller's scope.
func (s *HealthUnitService) Get(ctx context.Context, scope auth.TenantScope, id string) (*domain.HealthUnit, error) {
	unit, err := s.units.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("Health unit not found")
		}
		return nil, err
	}
	if authzErr := auth.VerifyHealthUnitAccess(scope, unit); authzErr != nil {
		return nil, authzErr
	}
	return unit, nil
}

// Update changes a unit's fields after the ownership check.
func (s *HealthUnitService) Update(ctx context.Context, scope auth.TenantScope, id string, input HealthUnitInput) (*domain.HealthUnit, error) {
	unit, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		unit.Name = input.Name
	}
	if input.CNPJ != "" {
		if !validCNPJ(input.CNPJ) {
			return nil, util.NewValidationError("Invalid CNPJ. Provide 14 digits")
		}
		unit.CNPJ = input.CNPJ
	}
	if input.Status != "" {
		if !input.Status.Valid() {
			return nil, util.NewValidationError("Invalid status")
		}
		unit.Status = input.Status
	}

	if err := s.units.Update(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

// Delete removes a unit after the ownership check.
func (s *HealthUnitService) Delete(ctx context.Context, p auth.Principal, scope auth.TenantScope, id string) error {
	unit, err := s.Get(ctx, scope, id)
	if err != nil {
		return err
	}
	if err := s.units.Delete(ctx, unit.ID); err != nil {
		return err
	}
	s.publish(ctx, events.EventHealthUnitDeleted, unit.ID, actorForPrincipal(p), events.HealthUnitPayload{
		Name:    unit.Name,
		AdminID: unit.AdminID,
	})
	return nil
}

// List returns units visible in the caller's scope.
func (s *HealthUnitService) List(ctx context.Context, scope auth.TenantScope, limit, offset int) ([]domain.HealthUnit, error) {
	if scope.Unrestricted() {
		return s.units.ListAll(ctx, limit, offset)
	}
	return s.units.ListByAdmin(ctx, scope.AdminFilter(), limit, offset)
}

func (s *HealthUnitService) publish(ctx context.Context, eventType events.EventType, subjectID string, actor events.Actor, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func validCNPJ(cnpj string) bool {
	digits := 0
	for _, r := range cnpj {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.' || r == '/' || r == '-':
		default:
			return false
		}
	}
	return digits == 14
}
