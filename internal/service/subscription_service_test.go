package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DiogoBrazil/medimage-api/internal/domain"
)

type fakeSubscriptionRepo struct {
	subscriptions map[string]*domain.Subscription
	nextID        int
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subscriptions: map[string]*domain.Subscription{}}
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, sub *domain.Subscription) error {
	r.nextID++
	sub.ID = fmt.Sprintf("sub-%d", r.nextID)
	sub.CreatedAt = time.Now()
	clone := *sub
	r.subscriptions[sub.ID] = &clone
	return nil
}

func (r *fakeSubscriptionRepo) Update(_ context.Context, sub *domain.Subscription) error {
	if _, ok := r.subscriptions[sub.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *sub
	r.subscriptions[sub.ID] = &clone
	return nil
}

func (r *fakeSubscriptionRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.subscriptions[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.subscriptions, id)
	return nil
}

func (r *fakeSubscriptionRepo) GetByID(_ context.Context, id string) (*domain.Subscription, error) {
	sub, ok := r.subscriptions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *sub
	return &clone, nil
}

func (r *fakeSubscriptionRepo) GetByAdmin(_ context.Context, adminID string) (*domain.Subscription, error) {
	for _, sub := range r.subscriptions {
		if sub.AdminID == adminID {
			clone := *sub
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeSubscriptionRepo) ListAll(_ context.Context, _, _ int) ([]domain.Subscription, error) {
	var result []domain.Subscription
	for _, sub := range r.subscriptions {
		result = append(result, *sub)
	}
	return result, nil
}

func newTestSubscriptionService(t *testing.T) (*SubscriptionService, *fakeUserRepo, *fakeSubscriptionRepo) {
	t.Helper()
	users := newFakeUserRepo()
	subscriptions := newFakeSubscriptionRepo()
	return NewSubscriptionService(subscriptions, users), users, subscriptions
}

func TestSubscriptionCreateParsesWireDates(t *testing.T) {
	svc, users, _ := newTestSubscriptionService(t)
	admin := seedUser(t, users, "adm@example.com", "secret-pass", domain.RoleAdministrator, "")

	sub, err := svc.Create(context.Background(), SubscriptionInput{
		AdminID:   admin.ID,
		StartDate: "01-02-2026",
		EndDate:   "01-02-2027",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), sub.StartDate)
	assert.Equal(t, "active", sub.Status)
}

func TestSubscriptionCreateRejectsProfessionalTarget(t *testing.T) {
	svc, users, _ := newTestSubscriptionService(t)
	admin := seedUser(t, users, "adm@example.com", "secret-pass", domain.RoleAdministrator, "")
	professional := seedUser(t, users, "pro@example.com", "secret-pass", domain.RoleProfessional, admin.ID)

	_, err := svc.Create(context.Background(), SubscriptionInput{
		AdminID:   professional.ID,
		StartDate: "01-02-2026",
		EndDate:   "01-02-2027",
	})
	domainErr := domainStatus(t, err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
}

func TestSubscriptionCreateDuplicate(t *testing.T) {
	svc, users, _ := newTestSubscriptionService(t)
	admin := seedUser(t, users, "adm@example.com", "secret-pass", domain.RoleAdministrator, "")

	input := SubscriptionInput{AdminID: admin.ID, StartDate: "01-02-2026", EndDate: "01-02-2027"}
	_, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input)
	domainErr := domainStatus(t, err)
	assert.Equal(t, 409, domainErr.HTTPStatus)
	assert.Equal(t, "User already has a subscription", domainErr.Message)
}

func TestSubscriptionCreateRejectsBadPeriods(t *testing.T) {
	svc, users, _ := newTestSubscriptionService(t)
	admin := seedUser(t, users, "adm@example.com", "secret-pass", domain.RoleAdministrator, "")

	tests := []struct {
		name       string
		start, end string
	}{
		{"iso start date", "2026-02-01", "01-02-2027"},
		{"garbage end date", "01-02-2026", "soon"},
		{"end before start", "01-02-2027", "01-02-2026"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), SubscriptionInput{
				AdminID:   admin.ID,
				StartDate: tt.start,
				EndDate:   tt.end,
			})
			domainErr := domainStatus(t, err)
			assert.Equal(t, 400, domainErr.HTTPStatus)
		})
	}
}

func TestSubscriptionUpdateKeepsUntouchedBound(t *testing.T) {
	svc, users, _ := newTestSubscriptionService(t)
	admin := seedUser(t, users, "adm@example.com", "secret-pass", domain.RoleAdministrator, "")

	sub, err := svc.Create(context.Background(), SubscriptionInput{
		AdminID:   admin.ID,
		StartDate: "01-02-2026",
		EndDate:   "01-02-2027",
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), sub.ID, SubscriptionInput{EndDate: "15-06-2027", Status: "expired"})
	require.NoError(t, err)
	assert.Equal(t, sub.StartDate, updated.StartDate)
	assert.Equal(t, time.Date(2027, time.June, 15, 0, 0, 0, 0, time.UTC), updated.EndDate)
	assert.Equal(t, "expired", updated.Status)

	// moving the end before the existing start still fails
	_, err = svc.Update(context.Background(), sub.ID, SubscriptionInput{EndDate: "01-01-2026"})
	domainErr := domainStatus(t, err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
}

func TestSubscriptionDeleteMissing(t *testing.T) {
	svc, _, _ := newTestSubscriptionService(t)

	err := svc.Delete(context.Background(), "sub-404")
	domainErr := domainStatus(t, err)
	assert.Equal(t, 404, domainErr.HTTPStatus)
}
