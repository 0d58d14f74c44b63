package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const initiatorContextKey = "initiator"

// initiatorMiddleware decodes (never issues) a bearer token to recover the
// caller's identity for the creator/initiator field every run and
// override records. It only verifies the signature and reads the
// standard subject claim; login, refresh and session issuance are an
// external identity collaborator's job.
func initiatorMiddleware(tokenSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(tokenSecret), nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(initiatorContextKey, claims.Subject)
		c.Next()
	}
}

func initiatorFrom(c *gin.Context) string {
	if v, ok := c.Get(initiatorContextKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// cohortRunRateLimiter bounds how often the run endpoint may be hit for a
// single cohort, independent of overall traffic, so a misbehaving caller
// cannot monopolize the engine-wide concurrency cap (§5) for one cohort.
func cohortRunRateLimiter(rate string) gin.HandlerFunc {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		parsed = limiter.Rate{Period: time.Minute, Limit: 10}
	}

	store := memory.NewStore()
	lim := limiter.New(store, parsed)

	return mgin.NewMiddleware(lim, mgin.WithKeyGetter(func(c *gin.Context) string {
		return "cohort:" + c.Param("id")
	}))
}
