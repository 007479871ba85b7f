// Package scoring считает скоринг клиента и отдаёт его интересы,
// используя Store как источник данных и кэш.
package scoring

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"scoring-api/internal/store"
)

// DefaultCacheTTL — время жизни посчитанного скоринга в кэше.
const DefaultCacheTTL = time.Hour

// ScoreArgs — аргументы скоринга. Пустая строка и nil означают,
// что значение не передано.
type ScoreArgs struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Birthday  *time.Time
	Gender    *int
}

// Service считает скоринг и читает интересы клиентов.
type Service struct {
	store    store.Store
	cacheTTL time.Duration
}

func NewService(st store.Store, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Service{store: st, cacheTTL: cacheTTL}
}

// Score возвращает скоринг из кэша или считает его заново и кэширует.
func (s *Service) Score(ctx context.Context, args ScoreArgs) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	key := cacheKey(args)
	if cached, ok := s.store.CacheGet(ctx, key); ok {
		if v, err := strconv.ParseFloat(cached, 64); err == nil && v != 0 {
			return v, nil
		}
	}

	var score float64
	if args.Phone != "" {
		score += 1.5
	}
	if args.Email != "" {
		score += 1.5
	}
	if args.Birthday != nil && args.Gender != nil {
		score += 1.5
	}
	if args.FirstName != "" && args.LastName != "" {
		score += 0.5
	}

	s.store.CacheSet(ctx, key, strconv.FormatFloat(score, 'f', -1, 64), s.cacheTTL)
	return score, nil
}

// Interests возвращает интересы клиента; для неизвестного клиента —
// пустой список. Остальные ошибки хранилища возвращаются вызывающему.
func (s *Service) Interests(ctx context.Context, clientID int64) ([]string, error) {
	raw, err := s.store.Get(ctx, "i:"+strconv.FormatInt(clientID, 10))
	if errors.Is(err, store.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	interests := []string{}
	if err := json.Unmarshal([]byte(raw), &interests); err != nil {
		return nil, fmt.Errorf("decode interests of client %d: %w", clientID, err)
	}
	return interests, nil
}

// cacheKey строится из имени, телефона и даты рождения.
func cacheKey(args ScoreArgs) string {
	var birthday string
	if args.Birthday != nil {
		birthday = args.Birthday.Format("20060102")
	}
	sum := md5.Sum([]byte(args.FirstName + args.LastName + args.Phone + birthday))
	return "uid:" + hex.EncodeToString(sum[:])
}
