package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/DiogoBrazil/medimage-api/internal/auth"
	"github.com/DiogoBrazil/medimage-api/internal/config"
	"github.com/DiogoBrazil/medimage-api/internal/domain"
	"github.com/DiogoBrazil/medimage-api/internal/events"
	"github.com/DiogoBrazil/medimage-api/internal/repository"
	"github.com/DiogoBrazil/medimage-api/pkg/util"
)

// LoginResult carries what the login endpoint returns to the client.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// CreateUserInput collects the fields for a new account.
type CreateUserInput struct {
	FullName string
	Email    string
	Password string
	Profile  domain.Role
	AdminID  string
}

// UpdateUserInput collects the mutable account fields. Empty strings leave the
// current value untouched.
type UpdateUserInput struct {
	FullName string
	Email    string
	Password string
	Status   domain.UserStatus
}

// UserService coordinates account flows: login, bootstrap, and CRUD under the
// ownership rules.
type UserService struct {
	users      repository.UserRepository
	codec      *auth.TokenCodec
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	root       config.RootConfig
}

// NewUserService builds the service.
func NewUserService(
	cfg *config.Config,
	users repository.UserRepository,
	codec *auth.TokenCodec,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:      users,
		codec:      codec,
		dispatcher: dispatcher,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
		root:       cfg.Root,
	}
}

// Login authenticates by email and password.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("User not found")
		}
		return nil, err
	}
	if user.Status != domain.UserStatusActive {
		return nil, util.NewForbidden("User account is inactive")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, util.NewUnauthorized("Incorrect password")
	}

	token, expiresAt, err := s.codec.IssueDefault(auth.PrincipalInput{
		ID:            user.ID,
		FullName:      user.FullName,
		Email:         user.Email,
		Role:          user.Profile,
		TenantAdminID: user.AdminID,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserLoggedIn, user.ID, actorFor(user), events.UserPayload{
		Email:   user.Email,
		Profile: user.Profile,
		AdminID: user.AdminID,
	})
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// EnsureRoot provisions the bootstrap administrator account from environment
// configuration, creating it when absent, and returns a bootstrap token.
func (s *UserService) EnsureRoot(ctx context.Context) (*LoginResult, bool, error) {
	if s.root.Email == "" || s.root.Password == "" {
		return nil, false, util.NewUnprocessable("Root user is not configured")
	}

	created := false
	user, err := s.users.GetByEmail(ctx, s.root.Email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, false, err
		}
		hash, hashErr := auth.HashPassword(s.root.Password, s.bcryptCost)
		if hashErr != nil {
			return nil, false, hashErr
		}
		user = &domain.User{
			FullName:     s.root.FullName,
			Email:        s.root.Email,
			PasswordHash: hash,
			Profile:      domain.RoleGeneralAdministrator,
			Status:       domain.UserStatusActive,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, false, err
		}
		created = true
		s.logger.Info("root user created", zap.String("user_id", user.ID))
	}

	token, expiresAt, err := s.codec.IssueBootstrapAdmin(user.ID, user.FullName, user.Email)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.publish(ctx, events.EventUserCreated, user.ID, actorFor(user), events.UserPayload{
			Email:   user.Email,
			Profile: user.Profile,
		})
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, created, nil
}

// Create registers a new account on behalf of an administrative caller. A
// professional created by an administrator is attached to that administrator;
// a general administrator must name the target admin explicitly.
func (s *UserService) Create(ctx context.Context, p auth.Principal, input CreateUserInput) (*domain.User, error) {
	if err := validateNewUser(input); err != nil {
		return nil, err
	}
	if input.Profile == domain.RoleAdministrator && p.Role != domain.RoleGeneralAdministrator {
		return nil, util.NewForbidden("Only general administrators can create administrators")
	}

	adminID := ""
	if input.Profile == domain.RoleProfessional {
		switch p.Role {
		case domain.RoleAdministrator:
			adminID = p.ID
		case domain.RoleGeneralAdministrator:
			if input.AdminID == "" {
				return nil, util.NewValidationError("admin_id is required when creating a professional")
			}
			adminID = input.AdminID
		}
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, util.NewConflict("User already exists")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: hash,
		Profile:      input.Profile,
		AdminID:      adminID,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserCreated, user.ID, actorForPrincipal(p), events.UserPayload{
		Email:   user.Email,
		Profile: user.Profile,
		AdminID: user.AdminID,
	})
	return user, nil
}

// Get fetches a single account visible in the caller's scope.
func (s *UserService) Get(ctx context.Context, p auth.Principal, scope auth.TenantScope, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("User not found")
		}
		return nil, err
	}
	if user.ID != p.ID && !scope.Allows(owningAdmin(user)) {
		return nil, util.NewForbidden("Professional is not associated with this administrator")
	}
	return user, nil
}

// Update applies the mutation rules, then persists the changed fields.
func (s *UserService) Update(ctx context.Context, p auth.Principal, id string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("User not found")
		}
		return nil, err
	}
	if authzErr := auth.VerifyUserMutation(p, user, auth.OpUpdate); authzErr != nil {
		return nil, authzErr
	}

	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.Email != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			return nil, util.NewValidationError("Invalid email")
		}
		user.Email = input.Email
	}
	if input.Password != "" {
		hash, hashErr := auth.HashPassword(input.Password, s.bcryptCost)
		if hashErr != nil {
			return nil, hashErr
		}
		user.PasswordHash = hash
	}
	if input.Status != "" {
		if !input.Status.Valid() {
			return nil, util.NewValidationError("Invalid status")
		}
		user.Status = input.Status
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventUserUpdated, user.ID, actorForPrincipal(p), events.UserPayload{
		Email:   user.Email,
		Profile: user.Profile,
		AdminID: user.AdminID,
	})
	return user, nil
}

// Delete removes an account after the mutation rules pass.
func (s *UserService) Delete(ctx context.Context, p auth.Principal, id string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("User not found")
		}
		return err
	}
	if authzErr := auth.VerifyUserMutation(p, user, auth.OpDelete); authzErr != nil {
		return authzErr
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.EventUserDeleted, id, actorForPrincipal(p), events.UserPayload{
		Email:   user.Email,
		Profile: user.Profile,
		AdminID: user.AdminID,
	})
	return nil
}

// ListAdministrators returns administrator accounts. Only meaningful for
// general administrators; the route classification already enforces that.
func (s *UserService) ListAdministrators(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return s.users.ListAdministrators(ctx, limit, offset)
}

// ListProfessionals returns professionals visible in the caller's scope.
func (s *UserService) ListProfessionals(ctx context.Context, scope auth.TenantScope, adminID string, limit, offset int) ([]domain.User, error) {
	if scope.Unrestricted() {
		if adminID == "" {
			return nil, util.NewValidationError("admin_id is required")
		}
		return s.users.ListProfessionalsByAdmin(ctx, adminID, limit, offset)
	}
	return s.users.ListProfessionalsByAdmin(ctx, scope.AdminFilter(), limit, offset)
}

func validateNewUser(input CreateUserInput) error {
	if strings.TrimSpace(input.FullName) == "" {
		return util.NewValidationError("Full name is required")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return util.NewValidationError("Invalid email")
	}
	if len(input.Password) < 6 {
		return util.NewValidationError("Password must be at least 6 characters")
	}
	if !input.Profile.Valid() {
		return util.NewValidationError("Invalid profile")
	}
	if input.Profile == domain.RoleGeneralAdministrator {
		return util.NewForbidden("General administrators cannot be created through the API")
	}
	return nil
}

// owningAdmin resolves the administrator a record belongs to: an
// administrator owns their own subtree, a professional belongs to theirs.
func owningAdmin(user *domain.User) string {
	if user.Profile == domain.RoleProfessional {
		return user.AdminID
	}
	return user.ID
}

func actorFor(user *domain.User) events.Actor {
	return events.Actor{UserID: user.ID, Profile: user.Profile, AdminID: user.AdminID}
}

func actorForPrincipal(p auth.Principal) events.Actor {
	return events.Actor{UserID: p.ID, Profile: p.Role, AdminID: p.TenantAdminID}
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, subjectID string, actor events.Actor, payload interface{}) {
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
