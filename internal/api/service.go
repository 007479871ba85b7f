package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"scoring-api/internal/logging"
	"scoring-api/internal/metrics"
	"scoring-api/internal/schema"
	"scoring-api/internal/scoring"
)

// adminScore — фиксированный скоринг для администратора.
const adminScore = 42

// Scorer — внешний сервис скоринга поверх хранилища.
// Реализация должна быть безопасна для параллельных вызовов.
type Scorer interface {
	Score(ctx context.Context, args scoring.ScoreArgs) (float64, error)
	Interests(ctx context.Context, clientID int64) ([]string, error)
}

// Dispatcher — слой бизнес-логики: проверяет конверт, аутентифицирует
// вызывающего и вызывает обработчик метода.
//
// Состояния между запросами нет: схемы неизменяемы, связанные запросы
// создаются заново на каждый вызов.
type Dispatcher struct {
	auth    *Authenticator
	scorer  Scorer
	logger  *slog.Logger
	schemas requestSchemas
}

type DispatcherOption func(*Dispatcher)

func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithDateClock подменяет "сегодня" для проверки даты рождения.
func WithDateClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.schemas = newRequestSchemas(now) }
}

func NewDispatcher(auth *Authenticator, scorer Scorer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		auth:    auth,
		scorer:  scorer,
		logger:  logging.Nop(),
		schemas: newRequestSchemas(time.Now),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle обрабатывает тело запроса и возвращает тело ответа и код.
//
// Ошибки валидации и аутентификации возвращаются как тело с кодом.
// Ненулевой error означает внутренний сбой, который транспорт
// отдаёт как 500.
func (d *Dispatcher) Handle(ctx context.Context, body map[string]any, info *RequestInfo) (response any, code int, err error) {
	req := NewMethodRequest(d.schemas.method, body)
	defer func() { metrics.RecordMethod(req.Method(), code) }()

	if !req.IsValid() {
		return req.Errors, http.StatusUnprocessableEntity, nil
	}
	if !d.auth.Check(req) {
		return http.StatusText(http.StatusForbidden), http.StatusForbidden, nil
	}
	info.Has = []string{}

	switch req.Method() {
	case MethodOnlineScore:
		response, code = d.onlineScore(ctx, req, info)
		return response, code, nil
	case MethodClientsInterests:
		return d.clientsInterests(ctx, req, info)
	default:
		return "Unknown method", http.StatusUnprocessableEntity, nil
	}
}

func (d *Dispatcher) onlineScore(ctx context.Context, req *MethodRequest, info *RequestInfo) (any, int) {
	raw := req.Arguments()
	args := NewOnlineScoreRequest(d.schemas.onlineScore, raw)
	if !args.Validate() {
		return args.ErrorMap(), http.StatusUnprocessableEntity
	}
	info.Has = sortedKeys(raw)

	score := d.computeScore(ctx, scoreArgs(args.Bound), info.RequestID)
	if req.IsAdmin() {
		score = adminScore
	}
	info.Score = &score
	return map[string]any{"score": score}, http.StatusOK
}

// computeScore вызывает внешний скоринг; любой сбой (ошибка или паника)
// заменяется нулевым скорингом.
func (d *Dispatcher) computeScore(ctx context.Context, args scoring.ScoreArgs, requestID string) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("score computation panicked",
				slog.String("request_id", requestID),
				slog.Any("panic", r))
			metrics.RecordScoreFallback()
			score = 0
		}
	}()

	score, err := d.scorer.Score(ctx, args)
	if err != nil {
		d.logger.Warn("score computation failed, falling back to zero",
			slog.String("request_id", requestID),
			slog.Any("error", err))
		metrics.RecordScoreFallback()
		return 0
	}
	return score
}

func (d *Dispatcher) clientsInterests(ctx context.Context, req *MethodRequest, info *RequestInfo) (any, int, error) {
	args := NewClientsInterestsRequest(d.schemas.clientsInterests, req.Arguments())
	if !args.IsValid() {
		return args.Errors, http.StatusUnprocessableEntity, nil
	}

	ids := args.ClientIDs()
	result := make(map[string][]string, len(ids))
	for _, id := range ids {
		interests, err := d.scorer.Interests(ctx, id)
		if err != nil {
			return nil, http.StatusInternalServerError, fmt.Errorf("interests for client %d: %w", id, err)
		}
		result[strconv.FormatInt(id, 10)] = interests
	}

	n := len(ids)
	info.NClients = &n
	return result, http.StatusOK, nil
}

// scoreArgs переносит связанные аргументы в запрос к скорингу.
func scoreArgs(b *schema.Bound) scoring.ScoreArgs {
	args := scoring.ScoreArgs{
		FirstName: b.String("first_name"),
		LastName:  b.String("last_name"),
		Email:     b.String("email"),
		Phone:     b.String("phone"),
	}
	if s := b.String("birthday"); s != "" {
		if date, err := schema.ParseDate(s); err == nil {
			args.Birthday = &date
		}
	}
	if g, ok := b.Int("gender"); ok {
		gender := int(g)
		args.Gender = &gender
	}
	return args
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
