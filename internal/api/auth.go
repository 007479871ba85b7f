package api

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

// adminTokenLayout — метка текущего часа (YYYYMMDDHH) в админском токене.
const adminTokenLayout = "2006010215"

// AuthConfig задаёт соли для вычисления подписи.
type AuthConfig struct {
	Salt      string
	AdminSalt string
}

// Authenticator сверяет токен запроса с ожидаемой подписью.
//
// Админский токен действителен только в течение текущего часа
// по локальному времени.
type Authenticator struct {
	cfg AuthConfig
	now func() time.Time
}

type AuthOption func(*Authenticator)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) AuthOption {
	return func(a *Authenticator) { a.now = now }
}

func NewAuthenticator(cfg AuthConfig, opts ...AuthOption) *Authenticator {
	a := &Authenticator{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Digest вычисляет ожидаемую подпись для запроса.
func (a *Authenticator) Digest(req *MethodRequest) string {
	var payload string
	if req.IsAdmin() {
		payload = a.now().Local().Format(adminTokenLayout) + a.cfg.AdminSalt
	} else {
		payload = req.Account() + req.Login() + a.cfg.Salt
	}
	sum := sha512.Sum512([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Check возвращает true, если токен запроса совпадает с подписью.
func (a *Authenticator) Check(req *MethodRequest) bool {
	return subtle.ConstantTimeCompare([]byte(a.Digest(req)), []byte(req.Token())) == 1
}
