package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/DiogoBrazil/medimage-api/internal/domain"
	"github.com/DiogoBrazil/medimage-api/internal/repository"
	"github.com/DiogoBrazil/medimage-api/pkg/util"
)

// subscriptionDateLayout is the DD-MM-YYYY format used on the wire.
const subscriptionDateLayout = "02-01-2006"

// SubscriptionInput collects subscription fields with wire-format dates.
type SubscriptionInput struct {
	AdminID   string
	StartDate string
	EndDate   string
	Status    string
}

// SubscriptionService manages administrator access plans. Reached only by
// general administrators; the route classification enforces that upstream.
type SubscriptionService struct {
	subscriptions repository.SubscriptionRepository
	users         repository.UserRepository
}

// NewSubscriptionService builds the service.
func NewSubscriptionService(subscriptions repository.SubscriptionRepository, users repository.UserRepository) *SubscriptionService {
	return &SubscriptionService{subscriptions: subscriptions, users: users}
}

// Create registers a plan for an administrator. One plan per admin.
func (s *SubscriptionService) Create(ctx context.Context, input SubscriptionInput) (*domain.Subscription, error) {
	start, end, err := parsePeriod(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	admin, err := s.users.GetByID(ctx, input.AdminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("User not found")
		}
		return nil, err
	}
	if !admin.Profile.IsAdministrative() {
		return nil, util.NewValidationError("Subscriptions can only be assigned to administrators")
	}

	if _, err := s.subscriptions.GetByAdmin(ctx, input.AdminID); err == nil {
		return nil, util.NewConflict("User already has a subscription")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = "active"
	}
	sub := &domain.Subscription{
		AdminID:   input.AdminID,
		StartDate: start,
		EndDate:   end,
		Status:    status,
	}
	if err := s.subscriptions.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Get fetches one plan by id.
func (s *SubscriptionService) Get(ctx context.Context, id string) (*domain.Subscription, error) {
	sub, err := s.subscriptions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("Subscription not found")
		}
		return nil, err
	}
	return sub, nil
}

// Update changes a plan's period or status.
func (s *SubscriptionService) Update(ctx context.Context, id string, input SubscriptionInput) (*domain.Subscription, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.StartDate != "" || input.EndDate != "" {
		startStr := input.StartDate
		if startStr == "" {
			startStr = sub.StartDate.Format(subscriptionDateLayout)
		}
		endStr := input.EndDate
		if endStr == "" {
			endStr = sub.EndDate.Format(subscriptionDateLayout)
		}
		start, end, parseErr := parsePeriod(startStr, endStr)
		if parseErr != nil {
			return nil, parseErr
		}
		sub.StartDate = start
		sub.EndDate = end
	}
	if input.Status != "" {
		sub.Status = input.Status
	}

	if err := s.subscriptions.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Delete removes a plan.
func (s *SubscriptionService) Delete(ctx context.Context, id string) error {
	if err := s.subscriptions.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("Subscription not found")
		}
		return err
	}
	return nil
}

// List returns all plans.
func (s *SubscriptionService) List(ctx context.Context, limit, offset int) ([]domain.Subscription, error) {
	return s.subscriptions.ListAll(ctx, limit, offset)
}

func parsePeriod(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(subscriptionDateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, util.NewValidationError("Invalid start_date. Use DD-MM-YYYY")
	}
	end, err := time.Parse(subscriptionDateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, util.NewValidationError("Invalid end_date. Use DD-MM-YYYY")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, util.NewValidationError("end_date must be after start_date")
	}
	return start, end, nil
}
