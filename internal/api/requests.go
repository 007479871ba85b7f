package api

import (
	"time"

	"scoring-api/internal/schema"
)

// AdminLogin — логин, для которого действуют админские правила
// аутентификации и фиксированный скоринг.
const AdminLogin = "admin"

const (
	MethodOnlineScore      = "online_score"
	MethodClientsInterests = "clients_interests"
)

// pairsErrorKey — ключ ошибки межполевого правила online_score.
const pairsErrorKey = "pairs"

const pairsErrorMessage = "at least one pair must be present: phone and email, first_name and last_name, gender and birthday"

// scorePairs — пары аргументов, из которых хотя бы одна должна быть заполнена.
var scorePairs = [][2]string{
	{"phone", "email"},
	{"first_name", "last_name"},
	{"gender", "birthday"},
}

// requestSchemas группирует схемы, используемые диспетчером.
type requestSchemas struct {
	method           *schema.Schema
	onlineScore      *schema.Schema
	clientsInterests *schema.Schema
}

func newRequestSchemas(now func() time.Time) requestSchemas {
	return requestSchemas{
		method: schema.New(
			schema.F("account", schema.Char(false, true)),
			schema.F("login", schema.Char(true, true)),
			schema.F("token", schema.Char(true, true)),
			schema.F("arguments", schema.Arguments(true, true)),
			schema.F("method", schema.Char(true, false)),
		),
		onlineScore: schema.New(
			schema.F("first_name", schema.Char(false, true)),
			schema.F("last_name", schema.Char(false, true)),
			schema.F("email", schema.Email(false, true)),
			schema.F("phone", schema.Phone(false, true)),
			schema.F("birthday", schema.Birthday(false, true).WithClock(now)),
			schema.F("gender", schema.Gender(false, true)),
		),
		clientsInterests: schema.New(
			schema.F("client_ids", schema.ClientIDs(true, false)),
			schema.F("date", schema.Date(false, true)),
		),
	}
}

// MethodRequest — внешний конверт запроса.
type MethodRequest struct {
	*schema.Bound
}

func NewMethodRequest(s *schema.Schema, raw map[string]any) *MethodRequest {
	return &MethodRequest{Bound: s.Bind(raw)}
}

func (r *MethodRequest) Account() string { return r.String("account") }
func (r *MethodRequest) Login() string   { return r.String("login") }
func (r *MethodRequest) Token() string   { return r.String("token") }
func (r *MethodRequest) Method() string  { return r.String("method") }

// Arguments возвращает аргументы метода; пустой объект, если их нет.
func (r *MethodRequest) Arguments() map[string]any {
	if args := r.Map("arguments"); args != nil {
		return args
	}
	return map[string]any{}
}

func (r *MethodRequest) IsAdmin() bool {
	return r.Login() == AdminLogin
}

// OnlineScoreRequest — аргументы метода online_score.
type OnlineScoreRequest struct {
	*schema.Bound
}

func NewOnlineScoreRequest(s *schema.Schema, raw map[string]any) *OnlineScoreRequest {
	return &OnlineScoreRequest{Bound: s.Bind(raw)}
}

// HasPair сообщает, что хотя бы одна пара аргументов заполнена целиком.
func (r *OnlineScoreRequest) HasPair() bool {
	for _, p := range scorePairs {
		if r.Has(p[0]) && r.Has(p[1]) {
			return true
		}
	}
	return false
}

// Validate проверяет поля и межполевое правило пар.
func (r *OnlineScoreRequest) Validate() bool {
	return r.IsValid() && r.HasPair()
}

// ErrorMap возвращает ошибки полей, а если поля корректны, но ни одна
// пара не заполнена, — ошибку правила пар.
func (r *OnlineScoreRequest) ErrorMap() map[string]string {
	if !r.IsValid() {
		return r.Errors
	}
	if !r.HasPair() {
		return map[string]string{pairsErrorKey: pairsErrorMessage}
	}
	return nil
}

// ClientsInterestsRequest — аргументы метода clients_interests.
type ClientsInterestsRequest struct {
	*schema.Bound
}

func NewClientsInterestsRequest(s *schema.Schema, raw map[string]any) *ClientsInterestsRequest {
	return &ClientsInterestsRequest{Bound: s.Bind(raw)}
}

func (r *ClientsInterestsRequest) ClientIDs() []int64 {
	return r.IntSlice("client_ids")
}
