package http

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"network-registry/internal/domain"
	"network-registry/internal/pkg/apperrors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Error codes of the JSON error envelope.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeInvalidUUID  = "INVALID_UUID"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorBody struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []fieldError `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error     errorBody `json:"error"`
	RequestID string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// WriteError maps err onto a status code and writes the JSON error envelope.
// Storage and unknown errors are logged and reported without their cause.
func WriteError(ctx *fasthttp.RequestCtx, err error, logger *zap.Logger) {
	status, body := classify(err)
	if status == fasthttp.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("requestId", RequestID(ctx)),
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Error(err),
		)
	}
	writeEnvelope(ctx, status, body, logger)
}

// WriteErrorCode writes an envelope with an explicit status, code and message.
func WriteErrorCode(ctx *fasthttp.RequestCtx, status int, code, message string, logger *zap.Logger) {
	writeEnvelope(ctx, status, errorBody{Code: code, Message: message}, logger)
}

func classify(err error) (int, errorBody) {
	var (
		validationErrs domain.ValidationErrors
		validationErr  *domain.ValidationError
		notFoundErr    *domain.NotFoundError
		conflictErr    *domain.ConflictError
	)
	switch {
	case errors.As(err, &validationErrs):
		details := make([]fieldError, len(validationErrs))
		for i, ve := range validationErrs {
			details[i] = fieldError{Field: ve.Field, Message: ve.Reason}
		}
		return fasthttp.StatusBadRequest, errorBody{Code: CodeValidation, Message: "validation failed", Details: details}
	case errors.As(err, &validationErr):
		return fasthttp.StatusBadRequest, errorBody{
			Code:    CodeValidation,
			Message: "validation failed",
			Details: []fieldError{{Field: validationErr.Field, Message: validationErr.Reason}},
		}
	case errors.As(err, &notFoundErr):
		return fasthttp.StatusNotFound, errorBody{Code: CodeNotFound, Message: notFoundErr.Error()}
	case errors.As(err, &conflictErr):
		return fasthttp.StatusConflict, errorBody{Code: CodeConflict, Message: conflictErr.Reason}
	case errors.Is(err, apperrors.ErrUnauthorized):
		return fasthttp.StatusUnauthorized, errorBody{Code: CodeUnauthorized, Message: err.Error()}
	case errors.Is(err, apperrors.ErrRateLimited):
		return fasthttp.StatusTooManyRequests, errorBody{Code: CodeRateLimited, Message: "too many requests"}
	case errors.Is(err, apperrors.ErrInvalidInput):
		return fasthttp.StatusBadRequest, errorBody{Code: CodeBadRequest, Message: err.Error()}
	default:
		return fasthttp.StatusInternalServerError, errorBody{Code: CodeInternal, Message: "internal server error"}
	}
}

func writeEnvelope(ctx *fasthttp.RequestCtx, status int, body errorBody, logger *zap.Logger) {
	payload, err := json.Marshal(errorEnvelope{
		Error:     body,
		RequestID: RequestID(ctx),
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		logger.Error("Failed to encode error response", zap.Error(err))
		ctx.Error("Internal Server Error", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(payload)
}
