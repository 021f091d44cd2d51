package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/testmate/testmate-backend/internal/config"
	"github.com/testmate/testmate-backend/internal/mail"
	"github.com/testmate/testmate-backend/internal/model"
	"github.com/testmate/testmate-backend/internal/repository"
)

// Account lifecycle errors.
var (
	ErrEmailTaken      = errors.New("email is already registered")
	ErrAlreadyVerified = errors.New("account is already verified")
	ErrUserNotFound    = errors.New("user not found")
	ErrSamePassword    = errors.New("new password must be different")
	ErrResetCooldown   = errors.New("a reset token was already issued recently")
)

// AccountStore is the storage contract for account lifecycle operations.
type AccountStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	DeleteByEmail(ctx context.Context, email string) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// AccountService drives signup, email verification, login/logout, and the
// password-reset flow. All mail is fire-and-forget: a failed send never
// rolls back the state change it announces.
type AccountService struct {
	cfg    *config.Config
	users  AccountStore
	auth   *AuthService
	tokens *TokenService
	mailer mail.Service
	log    zerolog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(
	cfg *config.Config,
	users AccountStore,
	auth *AuthService,
	tokens *TokenService,
	mailer mail.Service,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		cfg:    cfg,
		users:  users,
		auth:   auth,
		tokens: tokens,
		mailer: mailer,
		log:    log.With().Str("component", "account_service").Logger(),
	}
}

// Signup registers a new provisional account and issues a verification OTP.
// A verified account on the same email is a conflict; an unverified one is
// deleted and replaced, so the verification issue can never collide.
func (s *AccountService) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		if existing.Verified {
			return nil, ErrEmailTaken
		}
		if err := s.users.DeleteByEmail(ctx, req.Email); err != nil {
			return nil, fmt.Errorf("delete stale signup: %w", err)
		}
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PRN:          req.PRN,
		Stream:       req.Stream,
		YearOfStudy:  req.YearOfStudy,
		Role:         req.Role,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	otp, err := s.tokens.Issue(ctx, user.ID, model.PurposeVerify)
	if err != nil {
		return nil, fmt.Errorf("issue verification token: %w", err)
	}

	s.mailer.Send(mail.VerificationMessage(user.Email, user.Name, otp))
	return user, nil
}

// VerifyEmail validates the signup OTP. On success the token is consumed and
// the account marked verified. An unverified account whose token is gone
// entirely is considered abandoned and deleted.
func (s *AccountService) VerifyEmail(ctx context.Context, userID uuid.UUID, otp string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user.Verified {
		return nil, ErrAlreadyVerified
	}

	if err := s.tokens.Validate(ctx, userID, model.PurposeVerify, otp); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			// No pending token for an unverified account: abandoned.
			if delErr := s.users.DeleteByID(ctx, userID); delErr != nil {
				return nil, fmt.Errorf("delete abandoned user: %w", delErr)
			}
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.tokens.Consume(ctx, userID, model.PurposeVerify); err != nil {
		return nil, fmt.Errorf("consume verification token: %w", err)
	}
	if err := s.users.MarkVerified(ctx, userID); err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}
	user.Verified = true

	s.mailer.Send(mail.WelcomeMessage(user.Email, user.Name))
	return user, nil
}

// Login authenticates and issues a session token, rewriting the user's
// pruned token list.
func (s *AccountService) Login(ctx context.Context, email, password string, role model.Role) (string, *model.User, error) {
	user, err := s.auth.Authenticate(ctx, email, password, role)
	if err != nil {
		return "", nil, err
	}

	token, err := s.auth.IssueToken(user.ID, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	if err := s.auth.RecordAndPrune(ctx, user.ID, token); err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout removes the presented token from the user's list.
func (s *AccountService) Logout(ctx context.Context, userID uuid.UUID, token string) error {
	return s.auth.Revoke(ctx, userID, token)
}

// ForgotPassword issues a reset token and mails the reset link. A live
// token means a link was already sent within the cool-down window.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if !user.Verified {
		if err := s.users.DeleteByEmail(ctx, email); err != nil {
			return fmt.Errorf("delete unverified user: %w", err)
		}
		return ErrSignupRequired
	}

	secret, err := s.tokens.Issue(ctx, user.ID, model.PurposeReset)
	if err != nil {
		if errors.Is(err, ErrAlreadyIssued) {
			return ErrResetCooldown
		}
		return fmt.Errorf("issue reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s?token=%s&id=%s", s.cfg.ResetBaseURL, secret, user.ID)
	s.mailer.Send(mail.PasswordResetMessage(user.Email, user.Name, resetURL))
	return nil
}

// ValidateResetToken is the gating step before a password change: it loads
// the account and hash-compares the candidate reset secret.
func (s *AccountService) ValidateResetToken(ctx context.Context, userID uuid.UUID, candidate string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := s.tokens.Validate(ctx, userID, model.PurposeReset, candidate); err != nil {
		return nil, err
	}
	return user, nil
}

// ResetPassword replaces the password and performs the deferred deletion of
// the reset token. Callers must have gated through ValidateResetToken.
func (s *AccountService) ResetPassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if s.auth.CheckPassword(user.PasswordHash, newPassword) == nil {
		return ErrSamePassword
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	// Token deletion is deferred to here so a failed change keeps the
	// reset link usable.
	if err := s.tokens.Consume(ctx, userID, model.PurposeReset); err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}

	s.mailer.Send(mail.PasswordResetDoneMessage(user.Email, user.Name))
	return nil
}
