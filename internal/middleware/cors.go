package middleware

import (
	"strings"

	"github.com/valyala/fasthttp"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Authorization, Content-Type, X-Request-ID"
)

// CORS answers preflight requests with 204 and decorates every response for
// the allowed origins. "*" allows any origin.
func CORS(allowedOrigins []string) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			allowAll = true
			continue
		}
		if origin != "" {
			allowed[origin] = struct{}{}
		}
	}

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			origin := string(ctx.Request.Header.Peek(fasthttp.HeaderOrigin))
			header := &ctx.Response.Header

			switch {
			case allowAll:
				header.Set(fasthttp.HeaderAccessControlAllowOrigin, "*")
			case origin != "":
				if _, ok := allowed[origin]; ok {
					header.Set(fasthttp.HeaderAccessControlAllowOrigin, origin)
				}
				header.Add(fasthttp.HeaderVary, fasthttp.HeaderOrigin)
			}
			header.Set(fasthttp.HeaderAccessControlExposeHeaders, "X-Request-ID")

			if ctx.IsOptions() {
				header.Set(fasthttp.HeaderAccessControlAllowMethods, corsAllowMethods)
				header.Set(fasthttp.HeaderAccessControlAllowHeaders, corsAllowHeaders)
				header.Set(fasthttp.HeaderAccessControlMaxAge, "600")
				ctx.SetStatusCode(fasthttp.StatusNoContent)
				return
			}
			next(ctx)
		}
	}
}
