package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Register(ctx context.Context, user models.User) error
}

type sessionRepository interface {
	Save(ctx context.Context, session models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// The demo professor maps onto the seeded catalogue owner.
const demoProfessorID = "3"

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	SessionTTL        time.Duration
	Issuer            string
}

// AuthService provides the mocked login and session lifecycle.
type AuthService struct {
	users     authUserRepository
	sessions  sessionRepository
	validator *validator.Validate
	metrics   *MetricsService
	audit     auditTrail
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// AuthServiceOption configures the service.
type AuthServiceOption func(*AuthService)

// WithAuthMetrics records login outcomes.
func WithAuthMetrics(metrics *MetricsService) AuthServiceOption {
	return func(s *AuthService) {
		s.metrics = metrics
	}
}

// WithAuthAudit enables the persistent audit trail.
func WithAuthAudit(audit auditLogger) AuthServiceOption {
	return func(s *AuthService) {
		s.audit.sink = audit
	}
}

// WithAuthClock overrides the time source.
func WithAuthClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, sessions sessionRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig, opts ...AuthServiceOption) *AuthService {
	logger = defaultLogger(logger)
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = config.AccessTokenExpiry
	}
	svc := &AuthService{
		users:     users,
		sessions:  sessions,
		validator: defaultValidator(validate),
		audit:     auditTrail{source: "auth-service", logger: logger},
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Login authenticates by email with any non-blank password. When no account matches but a
// role is requested, a demo account of that role is created.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}
	if strings.TrimSpace(req.Password) == "" {
		s.metrics.RecordLogin("rejected")
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "password is required")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	if user != nil && req.Role != "" && user.Role != req.Role {
		user = nil
	}

	if user == nil {
		if req.Role == "" {
			s.metrics.RecordLogin("rejected")
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		demo := demoUser(req.Email, req.Role)
		if demo.ID != demoProfessorID {
			if err := s.users.Register(ctx, demo); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register demo user")
			}
		}
		s.logger.Info("demo user created", zap.String("user_id", demo.ID), zap.String("role", string(demo.Role)))
		user = &demo
	}

	issuedAt := s.now()
	session := models.Session{
		ID:        uuid.NewString(),
		User:      *user,
		CreatedAt: issuedAt,
		ExpiresAt: issuedAt.Add(s.config.SessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}

	accessToken, err := s.generateAccessToken(*user, session.ID, issuedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.metrics.RecordLogin("success")
	actor := &models.JWTClaims{UserID: user.ID}
	s.audit.emit(ctx, actor, models.AuditActionLogin, "auth", user.ID, map[string]string{"status": "success", "ip": req.IP})

	return &models.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		User:        *user,
		IssuedAt:    issuedAt,
	}, nil
}

// Authenticate validates the token and confirms its session is still live.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if _, err := s.session(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Me returns the user record stored with the session.
func (s *AuthService) Me(ctx context.Context, claims *models.JWTClaims) (*models.User, error) {
	session, err := s.session(ctx, claims)
	if err != nil {
		return nil, err
	}
	user := session.User
	return &user, nil
}

// Logout deletes the session so its token stops working.
func (s *AuthService) Logout(ctx context.Context, claims *models.JWTClaims) error {
	if err := requireActor(claims); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	s.audit.emit(ctx, claims, models.AuditActionLogout, "auth", claims.UserID, map[string]string{"status": "logout"})
	return nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.ID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token carries no session")
	}

	return claims, nil
}

func (s *AuthService) session(ctx context.Context, claims *models.JWTClaims) (*models.Session, error) {
	if err := requireActor(claims); err != nil {
		return nil, err
	}
	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired or logged out")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.User.ID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session does not match token")
	}
	return session, nil
}

func (s *AuthService) generateAccessToken(user models.User, sessionID string, issuedAt time.Time) (string, error) {
	claims := &models.JWTClaims{
		UserID:     user.ID,
		Role:       user.Role,
		Email:      user.Email,
		Name:       user.Name,
		Department: user.Department,
		Semester:   user.Semester,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}

func demoUser(email string, role models.UserRole) models.User {
	user := models.User{Email: strings.TrimSpace(email), Role: role}
	switch role {
	case models.RoleProfessor:
		user.ID = demoProfessorID
		user.Name = "Dr. Priya Singh"
		user.Department = "Computer Science"
	case models.RoleStudent:
		user.ID = uuid.NewString()
		user.Name = "Demo Student"
		user.Department = "Computer Science"
		user.Semester = 6
	default:
		user.ID = uuid.NewString()
		user.Name = "Demo Admin"
		user.Department = "Administration"
	}
	return user
}
