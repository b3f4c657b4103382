package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitplan/pkg"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "fitplan-session||"
	tokensSetKey     = "fitplan-sessions"
	sessionIDLength  = 24
)

// Service issues and revokes session tokens. A token is a signed JWT whose
// subject is the user id and whose jti points to a session kept in redis.
type Service struct {
	redisClient *redis.Client
	ttl         time.Duration
	signingKey  []byte
	// ability to inject random string generator func for session ids (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
	Now            func() time.Time
}

func NewAuthService(
	ttl time.Duration,
	signingKey []byte,
	redisClient *redis.Client,
) *Service {
	return &Service{
		ttl:            ttl,
		signingKey:     signingKey,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
		Now:            time.Now,
	}
}

func (as *Service) Login(ctx context.Context, userID string, createdAt time.Time) (string, error) {
	sessionID, err := as.RandStringFunc(sessionIDLength)
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	token, err := signToken(as.signingKey, userID, sessionID, createdAt, as.ttl)
	if err != nil {
		return "", err
	}

	sessionKey := sessionKeyPrefix + sessionID
	if err := as.redisClient.Set(ctx, sessionKey, createdAt.Unix(), as.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	// add session to the set of sessions, used by ScanAndClean
	if err := as.redisClient.SAdd(ctx, tokensSetKey, sessionID).Err(); err != nil {
		return "", fmt.Errorf("track session: %w", err)
	}

	return token, nil
}

// Logout revokes the session behind token. It reports whether a live session was removed.
func (as *Service) Logout(ctx context.Context, token string) (bool, error) {
	claims, err := parseToken(as.signingKey, token, as.Now)
	if err != nil {
		return false, err
	}

	sessionKey := sessionKeyPrefix + claims.ID
	deleted, err := as.redisClient.Del(ctx, sessionKey).Result()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}

	if err := as.redisClient.SRem(ctx, tokensSetKey, claims.ID).Err(); err != nil {
		return false, fmt.Errorf("untrack session: %w", err)
	}

	return deleted > 0, nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (as *Service) ScanAndClean(ctx context.Context) {
	sessionIDs, err := as.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("auth service, scan and clean, get sessions: %s", err)
		return
	}

	if len(sessionIDs) == 0 {
		log.Debugln("auth service, scan and clean abort, no sessions")
		return
	}

	log.Debugf("auth service, scan and clean [%d sessions] start ...", len(sessionIDs))
	var toRemove []string
	for _, sessionID := range sessionIDs {
		createdAtUnixStr, err := as.redisClient.Get(ctx, sessionKeyPrefix+sessionID).Result()
		if errors.Is(err, redis.Nil) {
			// already expired by redis, only the set entry is left
			toRemove = append(toRemove, sessionID)
			continue
		}
		if err != nil {
			log.Errorf("auth service, scan and clean session %s: %s", sessionID, err)
			continue
		}

		createdAtUnix, err := strconv.ParseInt(createdAtUnixStr, 10, 64)
		if err != nil {
			log.Errorf("auth service, scan and clean session %s: %s", sessionID, err)
			continue
		}

		if as.Now().Sub(time.Unix(createdAtUnix, 0)) > as.ttl {
			toRemove = append(toRemove, sessionID)
		}
	}

	for _, sessionID := range toRemove {
		if err := as.redisClient.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
			log.Errorf("auth service, clean session %s: %s", sessionID, err)
			continue
		}
		if err := as.redisClient.SRem(ctx, tokensSetKey, sessionID).Err(); err != nil {
			log.Errorf("auth service, clean session %s: %s", sessionID, err)
		}
	}
	log.Debugf("auth service, scan and clean removed %d sessions", len(toRemove))
}
