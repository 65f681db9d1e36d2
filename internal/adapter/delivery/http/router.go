package http

import (
	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	handlerhttp "network-registry/internal/adapter/handler/http"
	"network-registry/internal/config"
	domainService "network-registry/internal/domain/service"
	"network-registry/internal/pkg/metrics"
)

// Dependencies groups what the HTTP surface needs to serve requests.
type Dependencies struct {
	Handler       *handlerhttp.NetworkHandler
	Authenticator domainService.Authenticator
	Metrics       *metrics.HTTPMetrics
	Gatherer      prometheus.Gatherer
}

// RegisterRoutes sets up the network routes behind the auth gate plus public health and metrics routes.
func RegisterRoutes(r *router.Router, deps Dependencies, logger *zap.Logger) {
	logger.Info("Setting up application-specific routes...")

	auth := Auth(deps.Authenticator, logger)
	r.POST("/networks", auth(deps.Handler.CreateNetwork))
	r.GET("/networks", auth(deps.Handler.ListActiveNetworks))
	r.GET("/networks/{id}", auth(deps.Handler.GetNetwork))
	r.PUT("/networks/{id}", auth(deps.Handler.UpdateNetwork))
	r.PATCH("/networks/{id}", auth(deps.Handler.PatchNetwork))
	r.DELETE("/networks/{id}", auth(deps.Handler.DeleteNetwork))

	logger.Info("Setting up health check route...")
	r.GET("/health", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"status":"ok"}`)
	})

	if deps.Gatherer != nil {
		logger.Info("Setting up metrics route...")
		r.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(
			promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}),
		))
	}

	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		handlerhttp.WriteErrorCode(ctx, fasthttp.StatusNotFound, handlerhttp.CodeNotFound, "route not found", logger)
	}

	logger.Info("All routes registered.")
}

// NewHandler builds the router and wraps it with the global middleware chain.
func NewHandler(cfg config.Config, deps Dependencies, logger *zap.Logger) fasthttp.RequestHandler {
	r := router.New()
	r.SaveMatchedRoutePath = true
	RegisterRoutes(r, deps, logger)

	mws := []Middleware{
		RequestID(),
		CORS(cfg.Server.AllowedOrigins),
		Logging(logger),
	}
	if deps.Metrics != nil {
		mws = append(mws, Metrics(deps.Metrics))
	}
	mws = append(mws, RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize, logger))

	return Chain(r.Handler, mws...)
}
