package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/logger"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest admin password accepted.
const MinPasswordLength = 6

// AdminService is the campaign's single-identity login gate.
type AdminService struct {
	mu     sync.RWMutex
	email  string
	hash   []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAdminService hashes password for the configured identity.
func NewAdminService(email, password, secret string, ttl time.Duration) (*AdminService, error) {
	if secret == "" {
		return nil, errors.New("admin token secret is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &AdminService{
		email:  strings.ToLower(strings.TrimSpace(email)),
		hash:   hash,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Login checks the credentials and returns a signed token.
func (a *AdminService) Login(email, password string) (string, error) {
	if err := a.check(email, password); err != nil {
		logger.Warningf("admin login failed for %s", email)
		return "", err
	}
	now := a.now()
	claims := jwt.MapClaims{
		"sub":  a.email,
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(a.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token issued by Login and returns its subject.
func (a *AdminService) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return "", err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub != a.email {
		return "", jwt.ErrTokenInvalidClaims
	}
	return sub, nil
}

// ChangePassword replaces the admin password after checking the current one.
func (a *AdminService) ChangePassword(current, next string) error {
	if err := a.check(a.email, current); err != nil {
		return err
	}
	if len(next) < MinPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	a.mu.Lock()
	a.hash = hash
	a.mu.Unlock()
	logger.Infof("admin password changed")
	return nil
}

func (a *AdminService) check(email, password string) error {
	if strings.ToLower(strings.TrimSpace(email)) != a.email {
		return ErrInvalidCredentials
	}
	a.mu.RLock()
	hash := a.hash
	a.mu.RUnlock()
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}
