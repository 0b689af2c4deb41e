package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/banachtech/g2calib/db"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const (
	authorizationHeaderKey  = "authorization"
	authorizationTypeBearer = "bearer"
	authorizationPrefixKey  = "prefix"
	prefixLength            = 8
)

// Authentication rate limits each key prefix, checks the bearer API key
// "PREFIX.SECRET" against the stored bcrypt hash and stores the prefix in the
// gin context.
func (server *Server) Authentication(c *gin.Context) {
	authorizationHeader := c.GetHeader(authorizationHeaderKey)

	if len(authorizationHeader) == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("authorization header is not provided")))
		return
	}

	fields := strings.Fields(authorizationHeader)
	if len(fields) < 2 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("invalid authorization header format")))
		return
	}

	authorizationType := strings.ToLower(fields[0])
	if authorizationType != authorizationTypeBearer {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(fmt.Errorf("unsupported authorization type: %s", authorizationType)))
		return
	}

	apiKey := fields[1]

	prefix := strings.Split(apiKey, ".")[0]
	if len(prefix) != prefixLength {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("please input a valid API Key")))
		return
	}

	// Throttle before the lookup and bcrypt compare so wrong secrets are limited too.
	if !server.limiter(prefix).Allow() {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse(errors.New("too many requests")))
		return
	}

	key, err := server.store.GetAPIKey(c, prefix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("please input a valid API Key")))
			return
		}

		server.abort(c, err)
		return
	}

	expired, err := time.Parse(db.Layout, key.ExpiredAt)
	if err != nil || time.Now().UTC().After(expired) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("api key is expired")))
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(key.Token), []byte(apiKey))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("please input a valid API Key")))
		return
	}

	c.Set(authorizationPrefixKey, prefix)
	c.Next()
}

func (server *Server) limiter(prefix string) *rate.Limiter {
	server.mu.Lock()
	defer server.mu.Unlock()

	limiter, ok := server.limiters[prefix]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(server.config.RateLimit), server.config.RateBurst)
		server.limiters[prefix] = limiter
	}
	return limiter
}

// GenerateAPIKey returns a fresh "PREFIX.SECRET" key and its bcrypt hash.
func GenerateAPIKey() (prefix, apiKey, hash string, err error) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	secret := strings.ReplaceAll(uuid.NewString(), "-", "")
	prefix = id[:prefixLength]
	apiKey = fmt.Sprintf("%s.%s", prefix, secret)

	hashed, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return "", "", "", err
	}
	return prefix, apiKey, string(hashed), nil
}

// RegisterAPIKey generates a key valid for the given number of months and
// stores its hash. The plain key is returned once and never stored.
func RegisterAPIKey(ctx context.Context, store db.Store, months int) (string, db.APIKey, error) {
	prefix, apiKey, hash, err := GenerateAPIKey()
	if err != nil {
		return "", db.APIKey{}, err
	}

	now := time.Now().UTC()
	key, err := store.CreateAPIKey(ctx, db.CreateAPIKeyParams{
		Prefix:      prefix,
		Token:       hash,
		GeneratedAt: now.Format(db.Layout),
		ExpiredAt:   now.AddDate(0, months, 0).Format(db.Layout),
	})
	if err != nil {
		return "", db.APIKey{}, err
	}
	return apiKey, key, nil
}
