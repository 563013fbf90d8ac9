package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/api/transport"
	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/pkg/httpcontext"
	appLogger "github.com/fastygo/taskmanager/pkg/logger"
)

const currentUserValue = "current_user"

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserLookup loads the account a token refers to.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// JWTAuth guards protected routes. A valid token whose user no longer exists
// passes through without an identity; handlers then answer 401.
func JWTAuth(verifier TokenVerifier, users UserLookup, adapter *httpcontext.Adapter, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString, ok := extractToken(ctx)
			if !ok {
				unauthorized(ctx, domain.ErrNoToken)
				return
			}

			userID, err := verifier.Verify(tokenString)
			if err != nil {
				logger.Debug("invalid jwt token",
					zap.String("request_id", httpcontext.RequestID(ctx)),
					zap.Error(err))
				unauthorized(ctx, domain.ErrInvalidToken)
				return
			}

			reqCtx, cancel := adapter.Attach(ctx)
			user, err := users.GetByID(reqCtx, userID)
			cancel()
			switch {
			case err == nil:
				ctx.SetUserValue(currentUserValue, user.WithoutCredentials())
				ctx.SetUserValue(httpcontext.UserIDValue, user.ID)
			case errors.Is(err, domain.ErrUserNotFound):
				appLogger.WithRequestID(reqCtx, logger).Warn("token refers to a missing user", zap.String("user_id", userID))
			default:
				appLogger.WithRequestID(reqCtx, logger).Error("failed to load token user", zap.Error(err))
				transport.WriteError(ctx, fasthttp.StatusInternalServerError, transport.ErrorBody{
					Message: "internal server error",
					Code:    string(domain.ErrCodeInternal),
					Detail:  err.Error(),
				})
				return
			}

			next(ctx)
		}
	}
}

// CurrentUser returns the identity attached by JWTAuth.
func CurrentUser(ctx *fasthttp.RequestCtx) (*domain.User, bool) {
	user, ok := ctx.UserValue(currentUserValue).(*domain.User)
	return user, ok && user != nil
}

func extractToken(ctx *fasthttp.RequestCtx) (string, bool) {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(ctx *fasthttp.RequestCtx, err *domain.Error) {
	transport.WriteError(ctx, fasthttp.StatusUnauthorized, transport.ErrorBody{
		Message: err.Message,
		Code:    string(err.Code),
	})
}
