package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"flowerstand/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorContextKey = "actor"

var errMissingActor = errors.New("authentication required")

// Claims is the bearer token payload. Subject is the actor UUID.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// AuthConfig configures HS256 bearer authentication.
type AuthConfig struct {
	Secret []byte
	Issuer string
}

// JWTAuth turns a valid bearer token into a kernel.Actor stored on the echo
// context. Requests without a valid token get 401.
func JWTAuth(cfg AuthConfig) echo.MiddlewareFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorized(c, "missing bearer token")
			}

			actor, err := authenticate(parser, token, cfg.Secret)
			if err != nil {
				return unauthorized(c, err.Error())
			}

			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

func authenticate(parser *jwt.Parser, token string, secret []byte) (kernel.Actor, error) {
	if len(secret) == 0 {
		return kernel.Actor{}, errors.New("jwt secret not configured")
	}

	claims := &Claims{}
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}); err != nil {
		return kernel.Actor{}, err
	}

	id, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return kernel.Actor{}, errors.New("subject is not an actor id")
	}
	return kernel.NewActor(id, claims.Roles...)
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, Error{
		Code:    http.StatusUnauthorized,
		Error:   "UNAUTHENTICATED",
		Message: message,
	})
}

// ActorFrom returns the authenticated actor of the request.
func ActorFrom(c echo.Context) (kernel.Actor, error) {
	actor, ok := c.Get(actorContextKey).(kernel.Actor)
	if !ok {
		return kernel.Actor{}, errMissingActor
	}
	return actor, nil
}

// IssueToken signs a token for actorID. Used by the operator CLI and tests.
func IssueToken(cfg AuthConfig, actorID kernel.UUID, ttl time.Duration, roles ...string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID.String(),
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles: roles,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
}
