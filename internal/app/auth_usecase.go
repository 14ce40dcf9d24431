// Package app реализует прикладные сценарии приложения заметок.
package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/Dommgrand/notesapp/internal/domain/entities"
	"github.com/Dommgrand/notesapp/internal/domain/services"
	"github.com/Dommgrand/notesapp/internal/ports/api"
	"github.com/Dommgrand/notesapp/internal/ports/repositories"
	svc "github.com/Dommgrand/notesapp/internal/ports/services"
	"github.com/Dommgrand/notesapp/pkg/logger"

	"go.uber.org/zap"
)

const (
	methodRegister     = "Register"
	methodLogin        = "Login"
	methodLogout       = "Logout"
	methodCurrentUser  = "CurrentUser"
	methodIssueSession = "issueSession"

	msgStartRegistration   = "starting user registration"
	msgInvalidEmailFormat  = "invalid email format"
	msgEmptyUsername       = "empty username provided"
	msgInvalidPassword     = "invalid password"
	msgEmailExists         = "user with this email already exists"
	msgUserRegistered      = "user registered successfully"
	msgSessionIssuedNew    = "session issued for new user"
	msgLoginAttempt        = "login attempt"
	msgLoginNonExistent    = "login attempt with non-existent email"
	msgInvalidPasswordAuth = "invalid password provided"
	msgUserLoggedIn        = "user logged in successfully"
	msgSessionIssuedLogin  = "session issued for user"
	msgProcessingLogout    = "processing logout request"
	msgUserLoggedOut       = "user logged out successfully"
	msgResolvingUser       = "resolving current user"
	msgRevokedSessionUse   = "attempt to use revoked session"
	msgSessionMismatch     = "session entry does not match token claims"
	msgUserResolved        = "current user resolved"
	msgSessionIssued       = "session issued"

	msgErrCheckExistingUser = "failed to check existing user"
	msgErrHashPassword      = "failed to hash password"
	msgErrCreateUser        = "failed to create user"
	msgErrIssueSession      = "failed to issue session for new user"
	msgErrFindingUser       = "error finding user by email"
	msgErrVerifyingPassword = "error verifying password"
	msgErrIssueLoginSession = "failed to issue session on login"
	msgErrInvalidToken      = "invalid session token"
	msgErrIssueToken        = "failed to issue session token"
	msgErrStoreSession      = "failed to store session"
	msgErrRevokeSession     = "failed to revoke session"
	msgErrCheckSession      = "failed to check session"

	errCtxValidatingEmail    = "validating email"
	errCtxValidatingUsername = "validating username"
	errCtxValidatingPassword = "validating password"
	errCtxCheckingUser       = "checking existing user"
	errCtxEmailRegistered    = "email already registered"
	errCtxHashingPassword    = "hashing password"
	errCtxCreatingUser       = "creating user"
	errCtxIssuingSession     = "issuing session"
	errCtxInvalidCredentials = "invalid credentials"
	errCtxFindingUser        = "finding user"
	errCtxVerifyingPassword  = "verifying password"
	errCtxParsingToken       = "parsing session token"
	errCtxStoringSession     = "storing session"
	errCtxRevokingSession    = "revoking session"
	errCtxCheckingSession    = "checking session"
)

// AuthUseCaseImpl реализует интерфейс AuthUseCase.
type AuthUseCaseImpl struct {
	userRepo    repositories.UserRepository
	passwordSvc svc.PasswordService
	tokenSvc    svc.TokenService
	sessions    svc.SessionStore
}

// NewAuthUseCase создает новый экземпляр сервиса аутентификации.
func NewAuthUseCase(
	userRepo repositories.UserRepository,
	passwordSvc svc.PasswordService,
	tokenSvc svc.TokenService,
	sessions svc.SessionStore,
) api.AuthUseCase {
	return &AuthUseCaseImpl{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		sessions:    sessions,
	}
}

// Register создает нового пользователя с предоставленными учетными данными
// и сразу выдает ему сессию.
func (a *AuthUseCaseImpl) Register(ctx context.Context, email, username, password string) (*services.UserSession, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRegister), zap.String("email", email))
	log.Debug(ctx, msgStartRegistration)

	if err := validateEmail(email); err != nil {
		log.Debug(ctx, msgInvalidEmailFormat, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingEmail, err)
	}
	if username == "" {
		log.Debug(ctx, msgEmptyUsername)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingUsername, entities.ErrEmptyUsername)
	}
	if err := validatePassword(password); err != nil {
		log.Debug(ctx, msgInvalidPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingPassword, err)
	}

	existingUser, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingUser, err)
	}
	if existingUser != nil {
		log.Debug(ctx, msgEmailExists)
		return nil, fmt.Errorf("%s: %w", errCtxEmailRegistered, services.ErrEmailAlreadyExists)
	}

	hashedPassword, err := a.passwordSvc.Hash(ctx, password)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	newUser := &entities.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashedPassword,
	}

	createdUser, err := a.userRepo.Create(ctx, newUser)
	if err != nil {
		log.Error(ctx, msgErrCreateUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCreatingUser, err)
	}

	log.Info(ctx, msgUserRegistered, zap.String("userID", createdUser.ID))

	session, err := a.issueSession(ctx, createdUser)
	if err != nil {
		log.Error(ctx, msgErrIssueSession, zap.Error(err), zap.String("userID", createdUser.ID))
		return nil, fmt.Errorf("%s: %w", errCtxIssuingSession, err)
	}

	log.Info(ctx, msgSessionIssuedNew, zap.String("userID", createdUser.ID))
	return session, nil
}

// Login аутентифицирует пользователя по email и паролю.
func (a *AuthUseCaseImpl) Login(ctx context.Context, email, password string) (*services.UserSession, error) {
	log := logger.Log(ctx).With(zap.String("method", methodLogin), zap.String("email", email))
	log.Debug(ctx, msgLoginAttempt)

	user, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgLoginNonExistent)
			return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	valid, err := a.passwordSvc.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		log.Error(ctx, msgErrVerifyingPassword, zap.Error(err), zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingPassword, err)
	}
	if !valid {
		log.Debug(ctx, msgInvalidPasswordAuth, zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
	}

	log.Info(ctx, msgUserLoggedIn, zap.String("userID", user.ID))

	session, err := a.issueSession(ctx, user)
	if err != nil {
		log.Error(ctx, msgErrIssueLoginSession, zap.Error(err), zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxIssuingSession, err)
	}

	log.Info(ctx, msgSessionIssuedLogin, zap.String("userID", user.ID))
	return session, nil
}

// Logout отзывает сессию, на которую указывает токен.
func (a *AuthUseCaseImpl) Logout(ctx context.Context, token string) error {
	log := logger.Log(ctx).With(zap.String("method", methodLogout))
	log.Debug(ctx, msgProcessingLogout)

	claims, err := a.tokenSvc.Parse(ctx, token)
	if err != nil {
		log.Debug(ctx, msgErrInvalidToken, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxParsingToken, err)
	}

	log = log.With(zap.String("userID", claims.UserID))

	if err := a.sessions.Revoke(ctx, claims.SessionID); err != nil {
		log.Error(ctx, msgErrRevokeSession, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxRevokingSession, err)
	}

	log.Info(ctx, msgUserLoggedOut)
	return nil
}

// CurrentUser возвращает личность пользователя по токену сессии.
// Токен действителен, только если подпись и срок корректны и сессия
// все еще числится в серверном реестре.
func (a *AuthUseCaseImpl) CurrentUser(ctx context.Context, token string) (*services.Identity, error) {
	log := logger.Log(ctx).With(zap.String("method", methodCurrentUser))
	log.Debug(ctx, msgResolvingUser)

	claims, err := a.tokenSvc.Parse(ctx, token)
	if err != nil {
		log.Debug(ctx, msgErrInvalidToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxParsingToken, err)
	}

	log = log.With(zap.String("userID", claims.UserID))

	userID, err := a.sessions.UserID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, svc.ErrSessionNotFound) {
			log.Debug(ctx, msgRevokedSessionUse)
		} else {
			log.Error(ctx, msgErrCheckSession, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxCheckingSession, err)
	}
	if userID != claims.UserID {
		log.Warn(ctx, msgSessionMismatch)
		return nil, fmt.Errorf("%s: %w", errCtxCheckingSession, services.ErrInvalidToken)
	}

	log.Debug(ctx, msgUserResolved)
	return &services.Identity{
		UserID:    claims.UserID,
		Username:  claims.Username,
		SessionID: claims.SessionID,
	}, nil
}

// Вспомогательная функция для выпуска сессии: токен плюс запись в реестре.
func (a *AuthUseCaseImpl) issueSession(ctx context.Context, user *entities.User) (*services.UserSession, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodIssueSession),
		zap.String("userID", user.ID),
	)

	session, err := a.tokenSvc.Issue(ctx, user.ID, user.Username)
	if err != nil {
		log.Error(ctx, msgErrIssueToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxIssuingSession, services.ErrIssuingToken)
	}

	if err := a.sessions.Put(ctx, session.SessionID, user.ID, time.Until(session.ExpiresAt)); err != nil {
		log.Error(ctx, msgErrStoreSession, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxStoringSession, err)
	}

	log.Debug(ctx, msgSessionIssued)

	return &services.UserSession{
		UserID:    user.ID,
		Username:  user.Username,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Валидация email.
func validateEmail(email string) error {
	if email == "" {
		return entities.ErrInvalidEmail
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return entities.ErrInvalidEmail
	}

	return nil
}

// Валидация пароля.
func validatePassword(password string) error {
	if len(password) < services.MinPasswordLength {
		return entities.ErrPasswordTooShort
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasDigit := regexp.MustCompile(`\d`).MatchString(password)

	if !hasLetter || !hasDigit {
		return entities.ErrPasswordTooWeak
	}

	return nil
}
