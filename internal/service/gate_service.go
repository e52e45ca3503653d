package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"kidpoints/internal/repository"
)

// MinSecretLength is the minimum parent secret length
const MinSecretLength = 4

// GateService gates entry into parent-privileged operations. The parent
// secret is stored as a bcrypt hash; a successful check mints a short-lived
// parent-mode token that the facade's middleware accepts in place of
// re-entering the secret on every request.
//
// The gate itself does no throttling or lockout; rate limiting belongs to
// the surrounding layer.
type GateService struct {
	owners      *repository.OwnerRepository
	tokenSecret []byte
	tokenTTL    time.Duration
}

// NewGateService creates a new access gate
func NewGateService(owners *repository.OwnerRepository, tokenSecret []byte, tokenTTL time.Duration) *GateService {
	return &GateService{
		owners:      owners,
		tokenSecret: tokenSecret,
		tokenTTL:    tokenTTL,
	}
}

// CheckParentSecret verifies the presented secret against the owner's
// stored hash and returns a parent-mode token on success. The bcrypt
// comparison is constant-time. Fails with ErrNotConfigured when no secret
// was ever set and ErrDenied on mismatch.
func (s *GateService) CheckParentSecret(ctx context.Context, ownerID int64, secret string) (string, error) {
	owner, err := s.owners.GetOwnerByID(ctx, ownerID)
	if err != nil {
		return "", err
	}
	if owner == nil {
		return "", fmt.Errorf("%w: owner %d", ErrNotFound, ownerID)
	}
	if owner.SecretHash == "" {
		return "", fmt.Errorf("%w: owner %d", ErrNotConfigured, ownerID)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(owner.SecretHash), []byte(secret)); err != nil {
		return "", fmt.Errorf("%w: owner %d", ErrDenied, ownerID)
	}

	return s.mintParentToken(ownerID)
}

// UpdateParentSecret hashes and stores a new parent secret
func (s *GateService) UpdateParentSecret(ctx context.Context, ownerID int64, newSecret string) error {
	if len(newSecret) < MinSecretLength {
		return fmt.Errorf("%w: secret must be at least %d characters", ErrInvalidInput, MinSecretLength)
	}

	owner, err := s.owners.GetOwnerByID(ctx, ownerID)
	if err != nil {
		return err
	}
	if owner == nil {
		return fmt.Errorf("%w: owner %d", ErrNotFound, ownerID)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newSecret), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash secret: %w", err)
	}

	if err := s.owners.UpdateSecretHash(ctx, ownerID, string(hash)); err != nil {
		return err
	}
	return nil
}

// VerifyParentToken validates a parent-mode token and returns the owner id
// it was minted for. Fails with ErrDenied for expired, malformed, or
// tampered tokens.
func (s *GateService) VerifyParentToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.tokenSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("%w: invalid parent token", ErrDenied)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("%w: invalid parent token", ErrDenied)
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("%w: invalid parent token", ErrDenied)
	}

	ownerID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid parent token", ErrDenied)
	}
	return ownerID, nil
}

func (s *GateService) mintParentToken(ownerID int64) (string, error) {
	if len(s.tokenSecret) == 0 {
		return "", errors.New("parent token secret not configured")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatInt(ownerID, 10),
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.tokenSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign parent token: %w", err)
	}
	return signed, nil
}
