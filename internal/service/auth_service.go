package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/ratelimit"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// AuthService authenticates standalone workers. Identity-store accounts receive tokens from
// the surrounding platform.
type AuthService struct {
	store    repository.Store
	tokenMgr *auth.TokenManager
	limiter  ratelimit.Limiter
	logger   *zap.Logger
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	Store        repository.Store
	TokenManager *auth.TokenManager
	Limiter      ratelimit.Limiter
	Logger       *zap.Logger
}

// LoginResult carries the issued token.
type LoginResult struct {
	Worker    *domain.Worker
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		store:    deps.Store,
		tokenMgr: deps.TokenManager,
		limiter:  deps.Limiter,
		logger:   orNop(deps.Logger),
	}
}

func invalidCredentials() error {
	return apperrors.NewDomainError(apperrors.KindUnauthorized, "INVALID_CREDENTIALS", "invalid username or password", 401, nil)
}

// LoginWorker checks the worker's password and issues a worker token. Attempts are throttled
// per username and client address; a limiter outage lets the attempt through.
func (s *AuthService) LoginWorker(ctx context.Context, username, password, clientIP string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalidCredentials()
	}

	limitKey := username + "|" + clientIP
	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, limitKey)
		if err != nil {
			s.logger.Warn("login rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			return nil, apperrors.NewRateLimited("too many login attempts, retry later")
		}
	}

	employee, err := s.store.Repos().Employees.GetActiveByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, invalidCredentials()
		}
		return nil, storageErr(err, nil)
	}
	worker, ok := employee.(*domain.Worker)
	if !ok || worker.PasswordHash == "" {
		return nil, invalidCredentials()
	}
	if err := auth.ComparePassword(worker.PasswordHash, password); err != nil {
		s.logger.Info("worker login rejected", zap.String("username", username))
		return nil, invalidCredentials()
	}

	token, exp, err := s.tokenMgr.GenerateToken(domain.Actor{
		ID:   worker.ID,
		Role: domain.RoleWorker,
		Kind: domain.ActorKindWorker,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, limitKey); err != nil {
			s.logger.Debug("login rate limiter reset failed", zap.Error(err))
		}
	}
	s.logger.Info("worker logged in", zap.String("employee_id", worker.ID))
	return &LoginResult{Worker: worker, Token: token, ExpiresAt: exp}, nil
}

// TokenManager exposes the signer for the CLI.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
