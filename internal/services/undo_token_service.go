package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"todo-me/internal/domain"
)

// DefaultUndoTTL bounds how long an undo token stays redeemable. Every
// action kind shares the same window regardless of severity; batch
// tokens get their own TTL from their call site.
const DefaultUndoTTL = 60 * time.Second

// UndoTokenService manages the lifecycle of undo tokens: create, peek,
// and atomic consume. Token creation is best-effort: when the store is
// unreachable the primary mutation has already happened, so creation
// degrades to "no undo available" instead of failing the request.
type UndoTokenService interface {
	// CreateToken stores previousState under a fresh random token
	// scoped to the user. A ttl of zero means DefaultUndoTTL. Returns
	// the token string, or "" when undo is unavailable (invalid
	// action, store failure).
	CreateToken(
		ctx context.Context,
		userID string,
		action domain.UndoAction,
		entityType domain.UndoEntityType,
		entityID string,
		previousState map[string]interface{},
		ttl time.Duration,
	) string

	// PeekToken reads a token without consuming it. Returns nil when
	// the token is absent, expired, or the store is unreachable. A
	// found-but-expired token is deleted as a cleanup side effect.
	PeekToken(ctx context.Context, userID, token string) *domain.UndoToken

	// ConsumeToken atomically removes and returns a token. Exactly one
	// of any number of concurrent callers gets the token; the rest get
	// nil. Returns nil for absent, expired, or unreachable.
	ConsumeToken(ctx context.Context, userID, token string) *domain.UndoToken

	// HasValidToken reports whether a token currently exists and is
	// unexpired, without consuming it.
	HasValidToken(ctx context.Context, userID, token string) bool
}

type undoTokenService struct {
	store  TokenStore
	logger *slog.Logger
}

// NewUndoTokenService creates an undo token service over the given store.
func NewUndoTokenService(store TokenStore, logger *slog.Logger) UndoTokenService {
	if logger == nil {
		logger = slog.Default()
	}
	return &undoTokenService{
		store:  store,
		logger: logger,
	}
}

func undoTokenKey(userID, token string) string {
	return fmt.Sprintf("%s:%s", userID, token)
}

// generateTokenString returns 32 bytes of cryptographic randomness,
// URL-safe base64 encoded.
func generateTokenString() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func (s *undoTokenService) CreateToken(
	ctx context.Context,
	userID string,
	action domain.UndoAction,
	entityType domain.UndoEntityType,
	entityID string,
	previousState map[string]interface{},
	ttl time.Duration,
) string {
	if !action.IsValid() {
		s.logger.Warn("Refusing to create undo token for unknown action",
			"action", action, "entity_type", entityType, "entity_id", entityID)
		return ""
	}
	if ttl <= 0 {
		ttl = DefaultUndoTTL
	}

	tokenString, err := generateTokenString()
	if err != nil {
		s.logger.Warn("Failed to generate undo token", "error", err)
		return ""
	}

	now := time.Now()
	token := &domain.UndoToken{
		Token:         tokenString,
		UserID:        userID,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		PreviousState: previousState,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}

	payload, err := json.Marshal(token)
	if err != nil {
		s.logger.Warn("Failed to encode undo token", "error", err)
		return ""
	}

	if err := s.store.SetWithTTL(ctx, undoTokenKey(userID, tokenString), payload, ttl); err != nil {
		s.logger.Warn("Failed to store undo token, undo unavailable",
			"entity_type", entityType, "entity_id", entityID, "error", err)
		return ""
	}

	return tokenString
}

func (s *undoTokenService) PeekToken(ctx context.Context, userID, token string) *domain.UndoToken {
	payload, err := s.store.Get(ctx, undoTokenKey(userID, token))
	if err != nil {
		if !IsTokenStoreMiss(err) {
			s.logger.Warn("Token store unavailable during peek", "error", err)
		}
		return nil
	}

	decoded, err := s.decode(payload)
	if err != nil {
		return nil
	}

	if decoded.IsExpired() {
		// The store's own TTL normally removes these; clean up lazily
		// when it has not.
		if err := s.store.Delete(ctx, undoTokenKey(userID, token)); err != nil {
			s.logger.Warn("Failed to delete expired undo token", "error", err)
		}
		return nil
	}

	return decoded
}

func (s *undoTokenService) ConsumeToken(ctx context.Context, userID, token string) *domain.UndoToken {
	payload, err := s.store.GetDel(ctx, undoTokenKey(userID, token))
	if err != nil {
		if !IsTokenStoreMiss(err) {
			s.logger.Warn("Token store unavailable during consume", "error", err)
		}
		return nil
	}

	decoded, err := s.decode(payload)
	if err != nil {
		return nil
	}

	// The GETDEL already removed it, so an expired token needs no
	// cleanup here; it just fails the consume.
	if decoded.IsExpired() {
		return nil
	}

	return decoded
}

func (s *undoTokenService) HasValidToken(ctx context.Context, userID, token string) bool {
	return s.PeekToken(ctx, userID, token) != nil
}

func (s *undoTokenService) decode(payload []byte) (*domain.UndoToken, error) {
	var token domain.UndoToken
	if err := json.Unmarshal(payload, &token); err != nil {
		s.logger.Warn("Failed to decode stored undo token", "error", err)
		return nil, err
	}
	return &token, nil
}
