// Package auth tells who performs a call. Credentials are checked elsewhere; here the
// resulting bearer token is verified and turned into a models.Actor.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/Compufreak345/dbg"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/scgdepot/tankerlog/models"
)

const aTag = dbg.Tag("tankerlog/auth")

var (
	ErrMissingToken = errors.New("Missing bearer token")
	ErrInvalidToken = errors.New("Invalid token")
)

// ActorSource returns the authenticated actor of a call, nil if there is none.
type ActorSource interface {
	CurrentActor(ctx context.Context) *models.Actor
}

type actorKey struct{}

// WithActor returns a context carrying a.
func WithActor(ctx context.Context, a *models.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the actor stored by WithActor.
func ActorFromContext(ctx context.Context) *models.Actor {
	a, _ := ctx.Value(actorKey{}).(*models.Actor)
	return a
}

// StaticActor always answers with the same actor, e.g. the operator running the CLI.
type StaticActor struct {
	Actor *models.Actor
}

// CurrentActor implements ActorSource.
func (s StaticActor) CurrentActor(context.Context) *models.Actor {
	return s.Actor
}

// TokenActorSource verifies HS256 signed tokens. The claim "sub" is the actor id, "name" its display name.
type TokenActorSource struct {
	secret []byte
}

// NewTokenActorSource returns a TokenActorSource checking signatures with secret.
func NewTokenActorSource(secret string) *TokenActorSource {
	return &TokenActorSource{secret: []byte(secret)}
}

// ParseToken verifies tokenStr and returns its actor.
func (s *TokenActorSource) ParseToken(tokenStr string) (*models.Actor, error) {
	if tokenStr == "" {
		return nil, ErrMissingToken
	}
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || token == nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}
	name, _ := claims["name"].(string)
	return &models.Actor{Id: sub, DisplayName: name}, nil
}

// CurrentActor implements ActorSource, returning the actor Middleware put into ctx.
func (s *TokenActorSource) CurrentActor(ctx context.Context) *models.Actor {
	return ActorFromContext(ctx)
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header value.
func BearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Middleware puts the actor of a valid bearer token into the request context.
// Requests without (valid) token pass without actor; handlers decide if they need one.
func (s *TokenActorSource) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h != "" {
			a, err := s.ParseToken(BearerToken(h))
			if err != nil {
				dbg.W(aTag, "Rejected token for %s : %s", c.Request.URL.Path, err)
			} else {
				c.Request = c.Request.WithContext(WithActor(c.Request.Context(), a))
			}
		}
		c.Next()
	}
}
