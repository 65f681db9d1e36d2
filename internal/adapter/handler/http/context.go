package http

import (
	"github.com/valyala/fasthttp"

	"network-registry/internal/domain/entity"
)

// User value keys shared with the delivery middleware.
const (
	requestIDKey = "requestId"
	principalKey = "principal"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-Id"

// SetRequestID stores the request id on ctx.
func SetRequestID(ctx *fasthttp.RequestCtx, id string) {
	ctx.SetUserValue(requestIDKey, id)
}

// RequestID returns the request id set by the middleware, or an empty string.
func RequestID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue(requestIDKey).(string)
	return id
}

// SetPrincipal stores the authenticated caller on ctx.
func SetPrincipal(ctx *fasthttp.RequestCtx, p *entity.Principal) {
	ctx.SetUserValue(principalKey, p)
}

// PrincipalFrom returns the authenticated caller, or nil on public routes.
func PrincipalFrom(ctx *fasthttp.RequestCtx) *entity.Principal {
	p, _ := ctx.UserValue(principalKey).(*entity.Principal)
	return p
}
