package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"scoring-api/internal/logging"
	appMiddleware "scoring-api/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// errorMessages — коды, которые транспорт отдаёт в поле "error",
// и сообщения по умолчанию для них.
var errorMessages = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Not Found",
	http.StatusMethodNotAllowed:    "Method Not Allowed",
	http.StatusUnprocessableEntity: "Invalid Request",
	http.StatusInternalServerError: "Internal Server Error",
}

var errNotObject = errors.New("request body must be a JSON object")

// HandlerConfig — настройки HTTP-слоя.
type HandlerConfig struct {
	Logger         *slog.Logger
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

// Handler — HTTP-слой API: роуты, разбор JSON, конверт ответа и коды.
// Бизнес-логика живёт в Dispatcher.
type Handler struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
	maxBody    int64
	timeout    time.Duration
}

func NewHandler(d *Dispatcher, cfg HandlerConfig) *Handler {
	h := &Handler{
		dispatcher: d,
		logger:     cfg.Logger,
		maxBody:    cfg.MaxBodyBytes,
		timeout:    cfg.RequestTimeout,
	}
	if h.logger == nil {
		h.logger = logging.Nop()
	}
	if h.maxBody <= 0 {
		h.maxBody = 1 << 20
	}
	return h
}

// Router собирает HTTP-роутер API. Маршрут один: POST /method.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(appMiddleware.JSONHeaderMiddleware)
	if h.timeout > 0 {
		r.Use(appMiddleware.RequestTimeoutMiddleware(h.timeout))
	}

	r.NotFound(h.notFound)
	r.MethodNotAllowed(h.methodNotAllowed)

	r.Post("/method", h.method)
	r.Post("/method/", h.method)
	return r
}

// method обрабатывает POST /method.
func (h *Handler) method(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	info := &RequestInfo{RequestID: appMiddleware.RequestIDFromContext(ctx)}

	raw, body, err := h.decodeBody(r)
	if err != nil {
		h.logger.Info("malformed request body",
			slog.String("path", r.URL.Path),
			slog.String("request_id", info.RequestID),
			slog.Any("error", err))
		h.respond(w, info, nil, http.StatusBadRequest)
		return
	}
	h.logger.Info("request",
		slog.String("path", r.URL.Path),
		slog.String("body", string(raw)),
		slog.String("request_id", info.RequestID))

	response, code := h.dispatch(ctx, body, info)
	h.respond(w, info, response, code)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	info := &RequestInfo{RequestID: appMiddleware.RequestIDFromContext(r.Context())}
	h.respond(w, info, nil, http.StatusNotFound)
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	info := &RequestInfo{RequestID: appMiddleware.RequestIDFromContext(r.Context())}
	h.respond(w, info, nil, http.StatusMethodNotAllowed)
}

// decodeBody читает тело (с ограничением размера) и разбирает его как
// JSON-объект. Числа остаются json.Number, чтобы отличать целые от дробных.
func (h *Handler) decodeBody(r *http.Request) ([]byte, map[string]any, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, h.maxBody+1))
	if err != nil {
		return nil, nil, err
	}
	if int64(len(raw)) > h.maxBody {
		return nil, nil, errors.New("request body too large")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, nil, err
	}
	if body == nil {
		return nil, nil, errNotObject
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, nil, errors.New("unexpected data after JSON object")
	}
	return raw, body, nil
}

// dispatch вызывает Dispatcher; ошибки и паники превращаются в 500.
func (h *Handler) dispatch(ctx context.Context, body map[string]any, info *RequestInfo) (response any, code int) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("unexpected error",
				slog.String("request_id", info.RequestID),
				slog.Any("panic", rec))
			response, code = nil, http.StatusInternalServerError
		}
	}()

	response, code, err := h.dispatcher.Handle(ctx, body, info)
	if err != nil {
		h.logDispatchError(info, err)
		return nil, http.StatusInternalServerError
	}
	return response, code
}

// logDispatchError отделяет отмену запроса клиентом и таймауты
// от настоящих внутренних ошибок.
func (h *Handler) logDispatchError(info *RequestInfo, err error) {
	attrs := []any{slog.String("request_id", info.RequestID), slog.Any("error", err)}
	switch {
	case errors.Is(err, context.Canceled):
		h.logger.Warn("request canceled", attrs...)
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("request timed out", attrs...)
	default:
		h.logger.Error("unexpected error", attrs...)
	}
}

// respond оборачивает тело в {"response": ..., "code": ...} или, для кодов
// из таблицы ошибок, в {"error": ..., "code": ...} и пишет итог в лог.
func (h *Handler) respond(w http.ResponseWriter, info *RequestInfo, response any, code int) {
	envelope := make(map[string]any, 2)
	envelope["code"] = code
	if msg, isError := errorMessages[code]; isError {
		if isEmpty(response) {
			response = msg
		}
		envelope["error"] = response
	} else {
		envelope["response"] = response
	}

	// Content-Type выставляет JSONHeaderMiddleware
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		h.logger.Error("failed to encode response",
			slog.String("request_id", info.RequestID),
			slog.Any("error", err))
	}

	h.logger.Info("response",
		slog.Any("context", info),
		slog.Int("code", code),
		slog.Any("body", envelope["response"]),
		slog.Any("error", envelope["error"]))
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
