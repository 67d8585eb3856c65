package service

import (
	"crypto/subtle"
	"errors"
	"surveyforge/internal/config"
	"surveyforge/internal/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles admin login and respondent session tokens
type AuthService struct {
	adminUsername      string
	adminPassword      string
	adminPasswordHash  []byte
	jwtSecret          []byte
	adminTokenTTL      time.Duration
	respondentTokenTTL time.Duration
	now                func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(cfg config.AuthConfig) *AuthService {
	s := &AuthService{
		adminUsername:      cfg.AdminUsername,
		adminPassword:      cfg.AdminPassword,
		jwtSecret:          []byte(cfg.JWTSecret),
		adminTokenTTL:      cfg.AdminTokenTTL,
		respondentTokenTTL: cfg.RespondentTokenTTL,
		now:                time.Now,
	}
	if cfg.AdminPasswordHash != "" {
		s.adminPasswordHash = []byte(cfg.AdminPasswordHash)
	}
	return s
}

// Login validates credentials and returns an admin token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if !s.checkCredentials(username, password) {
		return nil, ErrInvalidCredentials
	}

	adminID := "admin_" + uuid.New().String()[:8]
	now := s.now()

	claims := &model.AdminClaims{
		AdminID: adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  username,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.adminTokenTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.adminTokenTTL))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:   tokenString,
		AdminID: adminID,
	}, nil
}

func (s *AuthService) checkCredentials(username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.adminUsername)) != 1 {
		return false
	}
	if s.adminPasswordHash != nil {
		return bcrypt.CompareHashAndPassword(s.adminPasswordHash, []byte(password)) == nil
	}
	return s.adminPassword != "" && subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) == 1
}

// ValidateAdminToken validates an admin JWT and returns claims
func (s *AuthService) ValidateAdminToken(tokenString string) (*model.AdminClaims, error) {
	claims := &model.AdminClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.AdminID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateRespondentToken creates a survey-scoped token for an admitted respondent
func (s *AuthService) GenerateRespondentToken(surveyID string, r model.Respondent) (string, error) {
	now := s.now()
	claims := &model.RespondentClaims{
		SurveyID: surveyID,
		Email:    r.Email,
		ClientID: r.ClientID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.respondentTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateRespondentToken validates a respondent JWT and returns claims
func (s *AuthService) ValidateRespondentToken(tokenString string) (*model.RespondentClaims, error) {
	claims := &model.RespondentClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.SurveyID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
