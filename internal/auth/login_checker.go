package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

type LoginChecker struct {
	ttl         time.Duration
	signingKey  []byte
	redisClient *redis.Client
	now         func() time.Time
}

func NewLoginChecker(ttl time.Duration, signingKey []byte, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		signingKey:  signingKey,
		redisClient: redisClient,
		now:         time.Now,
	}
}

// IsLogged verifies the token and its redis session, and returns the user id behind it.
// A bad or expired token is not an error, it is just not logged in.
func (c *LoginChecker) IsLogged(ctx context.Context, token string) (string, bool, error) {
	claims, err := parseToken(c.signingKey, token, c.now)
	if err != nil {
		log.Tracef("login check: %s", err)
		return "", false, nil
	}

	createdAtUnixStr, err := c.redisClient.Get(ctx, sessionKeyPrefix+claims.ID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	createdAtUnix, err := strconv.ParseInt(createdAtUnixStr, 10, 64)
	if err != nil {
		return "", false, err
	}

	if c.now().Sub(time.Unix(createdAtUnix, 0)) > c.ttl {
		return "", false, nil
	}

	return claims.Subject, true, nil
}
