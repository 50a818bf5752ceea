package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/authz"
	"srp-backend/internal/infrastructure/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const actorKey = "srp.actor"

// PrincipalResolver loads an acting user with its grants.
type PrincipalResolver interface {
	Resolve(ctx context.Context, userID uint64) (*authz.Principal, error)
}

// ActorMiddleware resolves the Ax-User-Id header into a Principal for the handlers.
// Requests without the header run as the anonymous actor.
func ActorMiddleware(res PrincipalResolver, log *zap.Logger) echo.MiddlewareFunc {
	log = logger.OrNop(log)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			if raw == "" {
				return next(c)
			}
			id, err := parseUserID(raw)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			p, err := res.Resolve(c.Request().Context(), id)
			switch {
			case errors.Is(err, &apperr.NotFoundError{}):
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unknown user"})
			case err != nil:
				log.Error("resolve actor", zap.Uint64("user_id", id), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}
			c.Set(actorKey, p)
			return next(c)
		}
	}
}

// Actor returns the principal set by ActorMiddleware, or nil for the anonymous actor.
func Actor(c echo.Context) *authz.Principal {
	p, _ := c.Get(actorKey).(*authz.Principal)
	return p
}
