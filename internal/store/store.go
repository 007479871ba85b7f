// Package store — хранилище, к которому обращается скоринг: постоянные
// данные (интересы клиентов) и кэш посчитанных скорингов.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound возвращается Get, если ключа нет.
var ErrNotFound = errors.New("store: key not found")

// Store — доступ к данным и кэшу.
//
// Кэш не влияет на успех вызывающего: CacheGet при сбое сообщает промах,
// CacheSet сбой только логирует. Get возвращает ошибку как есть.
// Реализации безопасны для параллельных вызовов.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	CacheGet(ctx context.Context, key string) (string, bool)
	CacheSet(ctx context.Context, key, value string, ttl time.Duration)
	Close() error
}
