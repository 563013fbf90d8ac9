package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/taskmanager/api/transport"
	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/pkg/httpcontext"
)

type stubVerifier map[string]string

func (s stubVerifier) Verify(token string) (string, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", errors.New("bad token")
}

type stubUsers struct {
	users map[string]*domain.User
	err   error
}

func (s stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

func newRequest(method, authorization string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI("/api/tasks")
	if authorization != "" {
		ctx.Request.Header.Set(fasthttp.HeaderAuthorization, authorization)
	}
	return ctx
}

func decodeError(t *testing.T, ctx *fasthttp.RequestCtx) transport.ErrorBody {
	t.Helper()
	var body transport.ErrorBody
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	return body
}

func TestJWTAuth(t *testing.T) {
	verifier := stubVerifier{"good": "u1", "ghost": "u2"}
	users := stubUsers{users: map[string]*domain.User{
		"u1": {ID: "u1", Username: "alice", PasswordHash: "hash"},
	}}

	var seen *domain.User
	var hasUser bool
	next := func(ctx *fasthttp.RequestCtx) {
		seen, hasUser = CurrentUser(ctx)
		ctx.SetStatusCode(fasthttp.StatusOK)
	}
	handler := JWTAuth(verifier, users, nil, nil)(next)

	t.Run("missing header", func(t *testing.T) {
		ctx := newRequest(fasthttp.MethodGet, "")
		handler(ctx)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
		assert.Equal(t, "not authorized, no token", decodeError(t, ctx).Message)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		ctx := newRequest(fasthttp.MethodGet, "Basic good")
		handler(ctx)
		assert.Equal(t, "not authorized, no token", decodeError(t, ctx).Message)
	})

	t.Run("invalid token", func(t *testing.T) {
		ctx := newRequest(fasthttp.MethodGet, "Bearer forged")
		handler(ctx)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
		assert.Equal(t, "not authorized, invalid token", decodeError(t, ctx).Message)
	})

	t.Run("valid token attaches user without hash", func(t *testing.T) {
		ctx := newRequest(fasthttp.MethodGet, "bearer good")
		handler(ctx)
		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		require.True(t, hasUser)
		assert.Equal(t, "u1", seen.ID)
		assert.Empty(t, seen.PasswordHash)
		assert.Equal(t, "hash", users.users["u1"].PasswordHash)
		assert.Equal(t, "u1", ctx.UserValue(httpcontext.UserIDValue))
	})

	t.Run("deleted user continues without identity", func(t *testing.T) {
		ctx := newRequest(fasthttp.MethodGet, "Bearer ghost")
		handler(ctx)
		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		assert.False(t, hasUser)
	})

	t.Run("store failure", func(t *testing.T) {
		failing := JWTAuth(verifier, stubUsers{err: errors.New("db down")}, nil, nil)(next)
		ctx := newRequest(fasthttp.MethodGet, "Bearer good")
		failing(ctx)
		assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
		assert.Equal(t, string(domain.ErrCodeInternal), decodeError(t, ctx).Code)
	})
}

func TestCORS(t *testing.T) {
	ok := func(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(fasthttp.StatusOK) }

	t.Run("wildcard", func(t *testing.T) {
		ctx := newRequest(fasthttp.MethodGet, "")
		CORS([]string{"*"})(ok)(ctx)
		assert.Equal(t, "*", string(ctx.Response.Header.Peek(fasthttp.HeaderAccessControlAllowOrigin)))
		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	})

	t.Run("preflight", func(t *testing.T) {
		ctx := newRequest(fasthttp.MethodOptions, "")
		ctx.Request.Header.Set(fasthttp.HeaderOrigin, "http://localhost:5173")
		CORS([]string{"http://localhost:5173/"})(ok)(ctx)
		assert.Equal(t, fasthttp.StatusNoContent, ctx.Response.StatusCode())
		assert.Equal(t, "http://localhost:5173", string(ctx.Response.Header.Peek(fasthttp.HeaderAccessControlAllowOrigin)))
		assert.Contains(t, string(ctx.Response.Header.Peek(fasthttp.HeaderAccessControlAllowHeaders)), "Authorization")
	})

	t.Run("unknown origin", func(t *testing.T) {
		ctx := newRequest(fasthttp.MethodGet, "")
		ctx.Request.Header.Set(fasthttp.HeaderOrigin, "http://evil.test")
		CORS([]string{"http://localhost:5173"})(ok)(ctx)
		assert.Empty(t, ctx.Response.Header.Peek(fasthttp.HeaderAccessControlAllowOrigin))
	})
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	handler := Chain(func(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(fasthttp.StatusTeapot) }, RequestLogger(nil))

	ctx := newRequest(fasthttp.MethodGet, "")
	handler(ctx)
	assert.NotEmpty(t, ctx.Response.Header.Peek(httpcontext.HeaderRequestID))

	ctx = newRequest(fasthttp.MethodGet, "")
	ctx.Request.Header.Set(httpcontext.HeaderRequestID, "abc-123")
	handler(ctx)
	assert.Equal(t, "abc-123", string(ctx.Response.Header.Peek(httpcontext.HeaderRequestID)))
}

func TestRequestLogger_Fields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := Chain(func(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(fasthttp.StatusNotFound) }, RequestLogger(zap.New(core)))

	var req fasthttp.Request
	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI("/api/tasks")
	req.Header.SetUserAgent("tasks-cli/1.0")
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, &net.TCPAddr{IP: net.ParseIP("10.0.0.7"), Port: 4000}, nil)
	handler(ctx)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "10.0.0.7", fields["remote_ip"])
	assert.Equal(t, "tasks-cli/1.0", fields["user_agent"])
	assert.Equal(t, "/api/tasks", fields["path"])
	assert.EqualValues(t, fasthttp.StatusNotFound, fields["status"])
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
			return func(ctx *fasthttp.RequestCtx) {
				order = append(order, name)
				next(ctx)
			}
		}
	}
	Chain(func(*fasthttp.RequestCtx) { order = append(order, "handler") }, mw("outer"), mw("inner"))(&fasthttp.RequestCtx{})
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
