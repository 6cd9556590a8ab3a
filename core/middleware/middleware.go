package middleware

import (
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"calendar-service/core/constants"
	"calendar-service/core/controller"
	"calendar-service/core/errors"
	"calendar-service/core/logger"
	"calendar-service/core/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Middleware struct {
	secret []byte
}

func NewMiddleware(jwtSecret string) *Middleware {
	return &Middleware{secret: []byte(jwtSecret)}
}

// AuthMiddleware verifies the bearer token and stores its claims under
// constants.ContextTokenData.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrMissingAuthorizationHeader, "missing authorization header")
			}
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrInvalidTokenFormat, "invalid authorization header")
			}

			claims, err := utils.ParseToken(token, m.secret)
			if err != nil {
				if stderrors.Is(err, jwt.ErrTokenExpired) {
					return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrTokenExpired, "token expired")
				}
				logger.Warn("Middleware:AuthMiddleware:InvalidToken", "error", err.Error())
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrUnauthorized, "invalid token")
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// RequestLogger tags each request with an id and logs it on completion.
func (m *Middleware) RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			requestID := c.Request().Header.Get(constants.HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(constants.HeaderRequestID, requestID)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.Info("HTTP:Request",
				"request_id", requestID,
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return nil
		}
	}
}

// ClaimsFromContext returns the verified caller claims.
func ClaimsFromContext(c echo.Context) (*utils.TokenClaims, *errors.AppError) {
	tokenData := c.Get(constants.ContextTokenData)
	if tokenData == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}
	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok || claims == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token data", nil)
	}
	return claims, nil
}
