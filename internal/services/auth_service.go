package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/elevatecapital/fundtracker/internal/fund"
	"github.com/elevatecapital/fundtracker/internal/metrics"
	"github.com/elevatecapital/fundtracker/internal/models"
	"github.com/elevatecapital/fundtracker/internal/store"
)

const (
	// signInBurst attempts are allowed per email, then one per signInEvery.
	signInBurst = 5
	signInEvery = 12 * time.Second

	signInLimiterSize = 1024
	signInLimiterTTL  = 30 * time.Minute
)

// AuthService manages accounts, sign-in and the admin allow-list.
type AuthService struct {
	users    store.UserRepository
	members  store.MemberRepository
	admins   map[string]struct{}
	limiters *expirable.LRU[string, *rate.Limiter]
	hashCost int
	now      func() time.Time
}

// NewAuthService creates an auth service. adminEmails is the fixed set of
// accounts allowed to perform admin pages and actions.
func NewAuthService(repos *store.Repositories, adminEmails []string) *AuthService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = fund.NormalizeEmail(e); e != "" {
			admins[e] = struct{}{}
		}
	}

	return &AuthService{
		users:    repos.Users,
		members:  repos.Members,
		admins:   admins,
		limiters: expirable.NewLRU[string, *rate.Limiter](signInLimiterSize, nil, signInLimiterTTL),
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// IsAdmin reports whether email is on the admin allow-list.
func (s *AuthService) IsAdmin(email string) bool {
	_, ok := s.admins[fund.NormalizeEmail(email)]
	return ok
}

// EnsureAdmin fails with ErrUnauthorized unless email is an admin.
func (s *AuthService) EnsureAdmin(email string) error {
	if !s.IsAdmin(email) {
		return newError(ErrUnauthorized, "Unauthorized: Admin access required.")
	}
	return nil
}

func (s *AuthService) allowSignIn(email string) bool {
	limiter, ok := s.limiters.Get(email)
	if !ok {
		limiter = rate.NewLimiter(rate.Every(signInEvery), signInBurst)
		s.limiters.Add(email, limiter)
	}
	return limiter.Allow()
}

// SignIn checks credentials. Unknown emails and wrong passwords produce an
// unauthenticated response rather than an error; accounts that are not yet
// active fail with ErrUnauthorized.
func (s *AuthService) SignIn(ctx context.Context, req models.SignInRequest) (models.SignInResponse, error) {
	email := fund.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return models.SignInResponse{}, validationf("Email and password are required.")
	}
	if !s.allowSignIn(email) {
		metrics.RateLimitedTotal.WithLabelValues("signin").Inc()
		return models.SignInResponse{}, newError(ErrRateLimited, "Too many sign-in attempts. Please wait a minute and try again.")
	}

	invalid := models.SignInResponse{IsAuthenticated: false, Message: "Invalid email or password."}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return invalid, nil
	}
	if err != nil {
		return models.SignInResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(strings.TrimSpace(req.Password))); err != nil {
		return invalid, nil
	}

	if user.Status != models.UserStatusActive {
		return models.SignInResponse{}, newError(ErrUnauthorized, "This account is pending approval or has been deactivated.")
	}

	return models.SignInResponse{
		IsAuthenticated: true,
		Email:           user.Email,
		IsAdmin:         s.IsAdmin(user.Email),
	}, nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(password)), s.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", validationf("Password must be at most 72 bytes.")
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func validateAccount(name, email, password string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return validationf("Name is required.")
	case !strings.Contains(email, "@"):
		return validationf("A valid email is required.")
	case strings.TrimSpace(password) == "":
		return validationf("Password is required.")
	}
	return nil
}

// RequestSignUp records a pending account for an admin to approve.
func (s *AuthService) RequestSignUp(ctx context.Context, req models.SignUpRequest) (models.MessageResponse, error) {
	email := fund.NormalizeEmail(req.Email)
	if err := validateAccount(req.Name, email, req.Password); err != nil {
		return models.MessageResponse{}, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return models.MessageResponse{}, conflictf("An account with this email already exists or is pending approval.")
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.MessageResponse{}, err
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return models.MessageResponse{}, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Mobile:       strings.TrimSpace(req.Mobile),
		PasswordHash: hash,
		Status:       models.UserStatusPending,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return models.MessageResponse{}, storeError(err, "An account with this email already exists or is pending approval.")
	}

	log.Info().Str("email", email).Msg("sign-up requested")
	return models.MessageResponse{Message: "Sign-up request submitted successfully. You will be notified upon approval."}, nil
}

// ensureMember appends a member row for the user unless one exists.
func (s *AuthService) ensureMember(ctx context.Context, name, email string) error {
	_, err := s.members.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return s.members.Create(ctx, &models.Member{Name: name, Email: email, JoinDate: s.now()})
}

// ApproveUser adds the member row and activates the account. The two
// writes are independent; a failure in the second leaves the first.
func (s *AuthService) ApproveUser(ctx context.Context, email string) (models.MessageResponse, error) {
	email = fund.NormalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return models.MessageResponse{}, storeError(err, fmt.Sprintf("Pending user with email '%s' not found.", email))
	}

	if err := s.ensureMember(ctx, user.Name, user.Email); err != nil {
		return models.MessageResponse{}, err
	}

	user.Status = models.UserStatusActive
	if err := s.users.Save(ctx, user); err != nil {
		return models.MessageResponse{}, err
	}

	log.Info().Str("email", email).Msg("user approved")
	return models.MessageResponse{Message: fmt.Sprintf("User %s approved and added.", user.Email)}, nil
}

// RejectUser deletes a pending sign-up request.
func (s *AuthService) RejectUser(ctx context.Context, email string) (models.MessageResponse, error) {
	email = fund.NormalizeEmail(email)
	notFound := fmt.Sprintf("Pending user with email '%s' not found.", email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return models.MessageResponse{}, storeError(err, notFound)
	}
	if user.Status != models.UserStatusPending {
		return models.MessageResponse{}, notFoundf("%s", notFound)
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return models.MessageResponse{}, storeError(err, notFound)
	}

	log.Info().Str("email", email).Msg("user rejected")
	return models.MessageResponse{Message: fmt.Sprintf("User request for %s rejected.", email)}, nil
}

// AddUser creates an active account and its member row directly.
func (s *AuthService) AddUser(ctx context.Context, req models.AddUserRequest) (models.MessageResponse, error) {
	email := fund.NormalizeEmail(req.NewEmail)
	if err := validateAccount(req.NewName, email, req.NewPassword); err != nil {
		return models.MessageResponse{}, err
	}

	hash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return models.MessageResponse{}, err
	}

	name := strings.TrimSpace(req.NewName)
	user := &models.User{
		Name:         name,
		Email:        email,
		Mobile:       strings.TrimSpace(req.NewMobile),
		PasswordHash: hash,
		Status:       models.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return models.MessageResponse{}, storeError(err, "User with this email already exists.")
	}
	if err := s.ensureMember(ctx, name, email); err != nil {
		return models.MessageResponse{}, err
	}

	return models.MessageResponse{Message: fmt.Sprintf("User %s (%s) added successfully.", name, email)}, nil
}

// UpdateProfile changes a user's name and mobile, carrying the name over
// to their member row when there is one.
func (s *AuthService) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (models.MessageResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.MessageResponse{}, validationf("Name is required.")
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return models.MessageResponse{}, storeError(err, "User not found.")
	}
	user.Name = name
	user.Mobile = strings.TrimSpace(req.Mobile)
	if err := s.users.Save(ctx, user); err != nil {
		return models.MessageResponse{}, err
	}

	member, err := s.members.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		member.Name = name
		if err := s.members.Save(ctx, member); err != nil {
			return models.MessageResponse{}, err
		}
	case !errors.Is(err, store.ErrNotFound):
		return models.MessageResponse{}, err
	}

	return models.MessageResponse{Message: "Profile updated successfully."}, nil
}

// PendingUsers lists sign-up requests awaiting approval.
func (s *AuthService) PendingUsers(ctx context.Context) ([]models.User, error) {
	return s.users.ListByStatus(ctx, models.UserStatusPending)
}
