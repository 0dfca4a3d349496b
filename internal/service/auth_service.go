package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/BenAmorMed/ExamSupervisor/internal/models"
	"github.com/BenAmorMed/ExamSupervisor/internal/planning"
	"github.com/BenAmorMed/ExamSupervisor/pkg/config"
	appErrors "github.com/BenAmorMed/ExamSupervisor/pkg/errors"
)

type authUpstream interface {
	Login(ctx context.Context, email, password string) (*models.RawTeacher, error)
}

// AuditRecorder persists the gateway-local trail of relayed actions. It is
// satisfied by repository.AuditRepository and may be nil when auditing is
// disabled.
type AuditRecorder interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// AuthService authenticates teachers against the upstream backend and issues
// gateway access tokens. Credential verification is entirely upstream; the
// gateway never sees or stores password material.
type AuthService struct {
	upstream  authUpstream
	audit     AuditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	config    config.JWTConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(upstream authUpstream, audit AuditRecorder, validate *validator.Validate, logger *zap.Logger, cfg config.JWTConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{upstream: upstream, audit: audit, validator: validate, logger: logger, config: cfg}
}

// Login forwards credentials upstream and, on success, mints an access token
// carrying the teacher's identity.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	raw, err := s.upstream.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.recordLogin(ctx, 0, false, req, appErrors.FromError(err).Message)
		if appErrors.FromError(err).Status == appErrors.ErrUnauthorized.Status {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, err
	}

	teacher := planning.NormalizeTeacher(*raw)
	if teacher.ID == 0 {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "login response missing teacher identity")
	}

	accessToken, expiresAt, err := s.generateAccessToken(teacher)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.recordLogin(ctx, teacher.ID, true, req, "")

	return &models.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
		IssuedAt:    time.Now().UTC(),
		Teacher:     teacher,
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(teacher models.Teacher) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.Expiration)
	claims := &models.JWTClaims{
		TeacherID: teacher.ID,
		Email:     teacher.Email,
		FullName:  teacher.FullName(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   fmt.Sprintf("%d", teacher.ID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthService) recordLogin(ctx context.Context, teacherID int64, succeeded bool, req models.LoginRequest, detail string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Create(ctx, &models.AuditLog{
		TeacherID: teacherID,
		Action:    models.AuditActionLogin,
		Succeeded: succeeded,
		Detail:    detail,
		IPAddress: req.IP,
		UserAgent: req.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record login audit log", zap.Error(err))
	}
}
