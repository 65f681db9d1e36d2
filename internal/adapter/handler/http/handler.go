package http

import (
	"context"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"network-registry/internal/application/port"
)

// NetworkHandler exposes the network use cases over fasthttp.
type NetworkHandler struct {
	service        port.NetworkService
	requestTimeout time.Duration
	logger         *zap.Logger
}

// NewNetworkHandler creates a handler. A non-positive timeout disables the per-request deadline.
func NewNetworkHandler(svc port.NetworkService, requestTimeout time.Duration, logger *zap.Logger) *NetworkHandler {
	return &NetworkHandler{
		service:        svc,
		requestTimeout: requestTimeout,
		logger:         logger.Named("NetworkHandler"),
	}
}

// CreateNetwork handles POST /networks.
func (h *NetworkHandler) CreateNetwork(ctx *fasthttp.RequestCtx) {
	var req networkRequest
	if !h.decode(ctx, &req) {
		return
	}
	params, err := req.toParams()
	if err != nil {
		WriteError(ctx, err, h.logger)
		return
	}

	opCtx, cancel := h.operationContext(ctx)
	defer cancel()

	network, err := h.service.CreateNetwork(opCtx, params)
	if err != nil {
		WriteError(ctx, err, h.logger)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusCreated, newNetworkResponse(*network))
}

// ListActiveNetworks handles GET /networks.
func (h *NetworkHandler) ListActiveNetworks(ctx *fasthttp.RequestCtx) {
	opCtx, cancel := h.operationContext(ctx)
	defer cancel()

	networks, err := h.service.GetActiveNetworks(opCtx)
	if err != nil {
		WriteError(ctx, err, h.logger)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, newNetworkListResponse(networks))
}

// GetNetwork handles GET /networks/{id}.
func (h *NetworkHandler) GetNetwork(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	opCtx, cancel := h.operationContext(ctx)
	defer cancel()

	network, err := h.service.GetNetworkByID(opCtx, id)
	if err != nil {
		WriteError(ctx, err, h.logger)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, newNetworkResponse(*network))
}

// UpdateNetwork handles PUT /networks/{id}.
func (h *NetworkHandler) UpdateNetwork(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	var req networkRequest
	if !h.decode(ctx, &req) {
		return
	}
	params, err := req.toParams()
	if err != nil {
		WriteError(ctx, err, h.logger)
		return
	}

	opCtx, cancel := h.operationContext(ctx)
	defer cancel()

	network, err := h.service.UpdateNetwork(opCtx, id, params)
	if err != nil {
		WriteError(ctx, err, h.logger)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, newNetworkResponse(*network))
}

// PatchNetwork handles PATCH /networks/{id}.
func (h *NetworkHandler) PatchNetwork(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	var req patchRequest
	if !h.decode(ctx, &req) {
		return
	}

	opCtx, cancel := h.operationContext(ctx)
	defer cancel()

	network, err := h.service.PartialUpdateNetwork(opCtx, id, req.toPatch())
	if err != nil {
		WriteError(ctx, err, h.logger)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, newNetworkResponse(*network))
}

// DeleteNetwork handles DELETE /networks/{id}.
func (h *NetworkHandler) DeleteNetwork(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	opCtx, cancel := h.operationContext(ctx)
	defer cancel()

	if _, err := h.service.DeleteNetwork(opCtx, id); err != nil {
		WriteError(ctx, err, h.logger)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func (h *NetworkHandler) operationContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.requestTimeout)
}

func (h *NetworkHandler) pathID(ctx *fasthttp.RequestCtx) (uuid.UUID, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Debug("Invalid network id in path", zap.String("id", raw), zap.Error(err))
		WriteErrorCode(ctx, fasthttp.StatusBadRequest, CodeInvalidUUID, "invalid network id: "+raw, h.logger)
		return uuid.Nil, false
	}
	return id, true
}

func (h *NetworkHandler) decode(ctx *fasthttp.RequestCtx, dst any) bool {
	body := ctx.PostBody()
	if len(body) == 0 {
		WriteErrorCode(ctx, fasthttp.StatusBadRequest, CodeBadRequest, "request body is required", h.logger)
		return false
	}
	if json.Get(body).ValueType() != jsoniter.ObjectValue {
		WriteErrorCode(ctx, fasthttp.StatusBadRequest, CodeBadRequest, "request body must be a JSON object", h.logger)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		h.logger.Debug("Failed to decode request body", zap.Error(err))
		WriteErrorCode(ctx, fasthttp.StatusBadRequest, CodeBadRequest, "malformed JSON body", h.logger)
		return false
	}
	return true
}

func (h *NetworkHandler) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
		WriteErrorCode(ctx, fasthttp.StatusInternalServerError, CodeInternal, "internal server error", h.logger)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(payload)
}
