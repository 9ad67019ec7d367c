// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"time"

	"gatehouse/config"
	deliverycontext "gatehouse/internal/delivery/context"
	"gatehouse/internal/domain/entity"
	domainerrors "gatehouse/internal/domain/errors"
	"gatehouse/internal/domain/repository"
	"gatehouse/internal/domain/service"
	"gatehouse/internal/infra/metrics"
	redisinfra "gatehouse/internal/infra/redis"
	"gatehouse/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	txManager    repository.TransactionManager
	tokenService service.TokenService
	hasher       service.PasswordHasher
	publisher    service.EventPublisher
	limiter      *redisinfra.LoginLimiter
	cfg          *config.Config
	logger       *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(
	txManager repository.TransactionManager,
	tokenService service.TokenService,
	hasher service.PasswordHasher,
	publisher service.EventPublisher,
	limiter *redisinfra.LoginLimiter,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.SessionUsecase {
	return &sessionService{
		txManager:    txManager,
		tokenService: tokenService,
		hasher:       hasher,
		publisher:    publisher,
		limiter:      limiter,
		cfg:          cfg,
		logger:       logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// storeCtx bounds a persistence call so a hung store surfaces as a
// retryable unavailability instead of a stuck request.
func (srv *sessionService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, srv.cfg.Auth.StoreOperationTimeout())
}

// Register creates a new account with the configured default role, opens
// the first session and emits a user.registered event. The role is never
// client-chosen; anything beyond the default is granted later through the
// admin API.
func (srv *sessionService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Registering user", slog.String("username", input.Username))

	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()

		return nil, errors.Wrap(err, "failed to hash password")
	}

	roleName := srv.cfg.Auth.DefaultRoleName()

	user := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		CountryCode:  input.CountryCode,
		ContactNo:    input.ContactNo,
		Organization: input.Organization,
		Active:       true,
	}

	var refreshToken string

	storeCtx, cancel := srv.storeCtx(ctx)
	defer cancel()

	err = srv.runSessionTx(storeCtx, func(repoFactory repository.RepositoryFactory) error {
		role, err := srv.defaultRole(storeCtx, repoFactory.RoleRepo(), roleName)
		if err != nil {
			return err
		}
		user.Roles = entity.Roles{*role}

		if err := repoFactory.UserRepo().Create(storeCtx, user); err != nil {
			return err
		}

		refreshToken, err = srv.createSession(storeCtx, repoFactory.RefreshTokenRepo(), user.ID)

		return err
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registerResultLabel(err)).Inc()
		srv.log(ctx).Error("Registration failed",
			slog.Any("error", err),
			slog.String("username", input.Username),
		)

		return nil, mapStoreTimeout(err)
	}

	accessToken, err := srv.tokenService.IssueAccessToken(user.ID.String(), user.Username, user.RoleNames())
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()

		return nil, errors.Wrap(err, "failed to issue access token")
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	srv.publishRegistered(ctx, user)

	return &usecase.RegisterOutput{
		UserID:       user.ID.String(),
		Username:     user.Username,
		Email:        user.Email,
		Roles:        user.RoleNames(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresInMs:  srv.tokenService.AccessTokenTTL().Milliseconds(),
	}, nil
}

// Login verifies credentials and replaces any existing session with a
// fresh one. Every credential failure collapses into the same generic
// error so the response leaks nothing about which part was wrong.
func (srv *sessionService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.SessionOutput, error) {
	if input.ClientKey != "" {
		allowed, _, _ := srv.limiter.Allow(ctx, input.ClientKey)
		if !allowed {
			metrics.LoginsTotal.WithLabelValues("rate_limited").Inc()

			return nil, domainerrors.ErrTooManyAttempts
		}
	}

	var user *entity.User
	var refreshToken string

	storeCtx, cancel := srv.storeCtx(ctx)
	defer cancel()

	err := srv.runSessionTx(storeCtx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.UserRepo().FindByUsername(storeCtx, input.Username)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrInvalidCredentials
			}

			return errors.Wrap(err, "failed to find user")
		}

		if !srv.hasher.Check(input.Password, found.PasswordHash) || !found.CanAuthenticate() {
			return domainerrors.ErrInvalidCredentials
		}

		user = found
		refreshToken, err = srv.createSession(storeCtx, repoFactory.RefreshTokenRepo(), found.ID)

		return err
	})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResultLabel(err)).Inc()
		srv.log(ctx).Warn("Login failed", slog.String("username", input.Username))

		return nil, mapStoreTimeout(err)
	}

	accessToken, err := srv.tokenService.IssueAccessToken(user.ID.String(), user.Username, user.RoleNames())
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()

		return nil, errors.Wrap(err, "failed to issue access token")
	}

	if input.ClientKey != "" {
		srv.limiter.Reset(ctx, input.ClientKey)
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	srv.log(ctx).Info("User logged in", slog.String("user_id", user.ID.String()))

	return srv.sessionOutput(user, accessToken, refreshToken), nil
}

// Refresh exchanges a refresh token for a new token pair. The presented
// token is consumed either way: a valid one is rotated, an expired one is
// deleted so it can never be replayed.
func (srv *sessionService) Refresh(ctx context.Context, refreshToken string) (*usecase.SessionOutput, error) {
	if refreshToken == "" {
		metrics.RefreshesTotal.WithLabelValues("invalid").Inc()

		return nil, domainerrors.ErrRefreshTokenInvalid
	}

	tokenHash := srv.tokenService.HashToken(refreshToken)

	var user *entity.User
	var newRefreshToken string

	storeCtx, cancel := srv.storeCtx(ctx)
	defer cancel()

	err := srv.runSessionTx(storeCtx, func(repoFactory repository.RepositoryFactory) error {
		refreshRepo := repoFactory.RefreshTokenRepo()

		stored, err := refreshRepo.FindByHash(storeCtx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return domainerrors.ErrRefreshTokenInvalid
			}

			return errors.Wrap(err, "failed to find refresh token")
		}

		if stored.Expired(time.Now()) {
			// Consume the dead record so a second presentation gets the
			// invalid error rather than expired.
			if err := refreshRepo.DeleteByHash(storeCtx, tokenHash); err != nil {
				return errors.Wrap(err, "failed to delete expired refresh token")
			}

			return domainerrors.ErrRefreshTokenExpired
		}

		found, err := repoFactory.UserRepo().FindByID(storeCtx, stored.UserID)
		if err != nil || !found.CanAuthenticate() {
			return domainerrors.ErrRefreshTokenInvalid
		}

		user = found
		newRefreshToken, err = srv.createSession(storeCtx, refreshRepo, found.ID)

		return err
	})
	if err != nil {
		metrics.RefreshesTotal.WithLabelValues(refreshResultLabel(err)).Inc()

		return nil, mapStoreTimeout(err)
	}

	accessToken, err := srv.tokenService.IssueAccessToken(user.ID.String(), user.Username, user.RoleNames())
	if err != nil {
		metrics.RefreshesTotal.WithLabelValues("error").Inc()

		return nil, errors.Wrap(err, "failed to issue access token")
	}

	metrics.RefreshesTotal.WithLabelValues("success").Inc()

	return srv.sessionOutput(user, accessToken, newRefreshToken), nil
}

// Logout revokes the session behind the given refresh token. Unknown and
// already-revoked tokens succeed silently.
func (srv *sessionService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	storeCtx, cancel := srv.storeCtx(ctx)
	defer cancel()

	err := srv.txManager.Execute(storeCtx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.RefreshTokenRepo().DeleteByHash(storeCtx, srv.tokenService.HashToken(refreshToken))
	})
	if err != nil {
		return mapStoreTimeout(err)
	}

	return nil
}

// LogoutAll revokes every session belonging to a user.
func (srv *sessionService) LogoutAll(ctx context.Context, userID string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage("invalid user id")
	}

	storeCtx, cancel := srv.storeCtx(ctx)
	defer cancel()

	err = srv.txManager.Execute(storeCtx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.RefreshTokenRepo().DeleteByUserID(storeCtx, id)
	})
	if err != nil {
		return mapStoreTimeout(err)
	}

	srv.log(ctx).Info("All sessions revoked", slog.String("user_id", userID))

	return nil
}

// ListSessions returns the user's active sessions, newest first. With the
// single-active policy there is at most one, but the endpoint shape stays
// a list so the policy can change without breaking clients.
func (srv *sessionService) ListSessions(ctx context.Context, userID string) ([]*usecase.SessionInfo, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("invalid user id")
	}

	storeCtx, cancel := srv.storeCtx(ctx)
	defer cancel()

	var sessions []*usecase.SessionInfo

	err = srv.txManager.Execute(storeCtx, func(repoFactory repository.RepositoryFactory) error {
		tokens, err := repoFactory.RefreshTokenRepo().FindByUserID(storeCtx, id)
		if err != nil {
			return errors.Wrap(err, "failed to list sessions")
		}

		now := time.Now()
		sessions = make([]*usecase.SessionInfo, 0, len(tokens))
		for _, token := range tokens {
			if token.Expired(now) {
				continue
			}
			sessions = append(sessions, &usecase.SessionInfo{
				CreatedAt: token.CreatedAt,
				ExpiresAt: token.ExpiresAt,
			})
		}

		return nil
	})
	if err != nil {
		return nil, mapStoreTimeout(err)
	}

	return sessions, nil
}

// runSessionTx executes fn in a transaction and retries it once when it
// lost a write race on a unique constraint. Postgres aborts the whole
// transaction on such a violation, so the retry must re-run fn from the
// top; the second attempt sees the winner's committed rows.
func (srv *sessionService) runSessionTx(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	err := srv.txManager.Execute(ctx, fn)
	if errors.Is(err, repository.ErrRefreshTokenConflict) || errors.Is(err, repository.ErrRoleExists) {
		err = srv.txManager.Execute(ctx, fn)
	}

	return err
}

// defaultRole loads the default role, creating it when the registry does
// not contain it yet. A lost creation race bubbles up as ErrRoleExists so
// runSessionTx can re-run against the winner's committed row.
func (srv *sessionService) defaultRole(ctx context.Context, roleRepo repository.RoleRepository, name string) (*entity.Role, error) {
	role, err := roleRepo.FindByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, repository.ErrRoleNotFound) {
		return nil, errors.Wrap(err, "failed to look up default role")
	}

	created := &entity.Role{
		Name:          name,
		SystemDefined: name == entity.RoleGuest || name == entity.RoleAdmin,
	}
	if err := roleRepo.Create(ctx, created); err != nil {
		return nil, errors.Wrap(err, "failed to bootstrap default role")
	}

	srv.logger.Info("Bootstrapped default role", slog.String("role", name))

	return created, nil
}

// createSession replaces the user's stored refresh token with a new one.
// The delete and insert run inside the caller's transaction, and the
// unique user_id index resolves concurrent writers: the loser's insert
// fails with ErrRefreshTokenConflict and runSessionTx re-runs it.
func (srv *sessionService) createSession(ctx context.Context, refreshRepo repository.RefreshTokenRepository, userID uuid.UUID) (string, error) {
	token, err := srv.tokenService.NewRefreshToken()
	if err != nil {
		return "", errors.Wrap(err, "failed to generate refresh token")
	}

	if err := refreshRepo.DeleteByUserID(ctx, userID); err != nil {
		return "", errors.Wrap(err, "failed to revoke previous sessions")
	}

	record := &entity.RefreshToken{
		UserID:    userID,
		TokenHash: srv.tokenService.HashToken(token),
		ExpiresAt: time.Now().Add(srv.tokenService.RefreshTokenTTL()),
	}
	if err := refreshRepo.Create(ctx, record); err != nil {
		return "", errors.Wrap(err, "failed to store refresh token")
	}

	return token, nil
}

func (srv *sessionService) sessionOutput(user *entity.User, accessToken, refreshToken string) *usecase.SessionOutput {
	return &usecase.SessionOutput{
		UserID:       user.ID.String(),
		Username:     user.Username,
		Role:         user.Roles.Primary(srv.cfg.Auth.DefaultRoleName()),
		Roles:        user.RoleNames(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresInMs:  srv.tokenService.AccessTokenTTL().Milliseconds(),
	}
}

// publishRegistered emits user.registered fire-and-forget. A failed
// publish is logged and the request still succeeds; downstream catches up
// through at-least-once redelivery on the next attempt.
func (srv *sessionService) publishRegistered(ctx context.Context, user *entity.User) {
	event := &service.UserRegisteredEvent{
		EventID:      service.NewEventID(),
		EventType:    service.TopicUserRegistered,
		Timestamp:    service.EventTimestamp(time.Now()),
		UserID:       user.ID.String(),
		Username:     user.Username,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		CountryCode:  user.CountryCode,
		ContactNo:    user.ContactNo,
		Organization: user.Organization,
		Roles:        user.RoleNames(),
	}

	if err := srv.publisher.PublishUserRegistered(context.WithoutCancel(ctx), event); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(service.TopicUserRegistered, "error").Inc()
		srv.log(ctx).Error("Failed to publish user.registered event",
			slog.Any("error", err),
			slog.String("user_id", event.UserID),
		)

		return
	}

	metrics.EventsPublishedTotal.WithLabelValues(service.TopicUserRegistered, "ok").Inc()
}

// mapStoreTimeout converts a deadline hit on the store context into the
// retryable unavailability error.
func mapStoreTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domainerrors.ErrStoreUnavailable
	}

	return err
}

func registerResultLabel(err error) string {
	if errors.Is(err, domainerrors.ErrUserAlreadyExists) {
		return "conflict"
	}

	return "error"
}

func loginResultLabel(err error) string {
	if errors.Is(err, domainerrors.ErrInvalidCredentials) {
		return "invalid_credentials"
	}

	return "error"
}

func refreshResultLabel(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrRefreshTokenInvalid):
		return "invalid"
	case errors.Is(err, domainerrors.ErrRefreshTokenExpired):
		return "expired"
	default:
		return "error"
	}
}
