package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"plotchat/internal/domain"
)

// TokenService emite y valida los tokens de acceso del chat.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	store  TokenStore
	now    func() time.Time
}

type Claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

func NewTokenService(secret string, ttl time.Duration, store TokenStore) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	if store == nil {
		store = NewMemoryTokenStore()
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "plotchat",
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Issue firma un token nuevo y registra su jti.
func (s *TokenService) Issue(user domain.User) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(user.ID) == "" {
		return "", ErrTokenInvalid
	}
	now := s.now()
	jti := uuid.NewString()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}
	if err := s.store.Store(jti, user.ID, s.ttl); err != nil {
		return "", err
	}
	return signed, nil
}

// Parse valida firma, emisor y que el token no haya sido revocado.
func (s *TokenService) Parse(token string) (Claims, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return Claims{}, err
	}
	ok, err := s.store.Exists(claims.ID)
	if err != nil || !ok {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

// Revoke invalida el token. Un token ya revocado no es un error.
func (s *TokenService) Revoke(token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return err
	}
	return s.store.Revoke(claims.ID)
}

func (s *TokenService) parseToken(tokenString string) (Claims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrTokenInvalid
	}
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" || strings.TrimSpace(claims.ID) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return claims.Issuer == s.issuer
}
