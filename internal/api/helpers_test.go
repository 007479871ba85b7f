package api

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"scoring-api/internal/scoring"
)

const testSalt, testAdminSalt = "Otus", "42"

var testNow = time.Date(2017, time.July, 20, 13, 45, 0, 0, time.Local)

func fixedNow() time.Time { return testNow }

func sha512Hex(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}

func userToken(account, login string) string {
	return sha512Hex(account + login + testSalt)
}

func adminToken(now time.Time) string {
	return sha512Hex(now.Format("2006010215") + testAdminSalt)
}

func newTestAuth() *Authenticator {
	return NewAuthenticator(AuthConfig{Salt: testSalt, AdminSalt: testAdminSalt}, WithClock(fixedNow))
}

var errStoreDown = errors.New("store is down")

// fakeScorer считает вызовы и возвращает заданные ответы.
type fakeScorer struct {
	score        float64
	scoreErr     error
	scorePanic   bool
	interests    map[int64][]string
	interestsErr error

	mu            sync.Mutex
	scoreArgs     []scoring.ScoreArgs
	interestCalls []int64
}

func (f *fakeScorer) Score(_ context.Context, args scoring.ScoreArgs) (float64, error) {
	f.mu.Lock()
	f.scoreArgs = append(f.scoreArgs, args)
	f.mu.Unlock()
	if f.scorePanic {
		panic("scoring exploded")
	}
	return f.score, f.scoreErr
}

func (f *fakeScorer) Interests(_ context.Context, id int64) ([]string, error) {
	f.mu.Lock()
	f.interestCalls = append(f.interestCalls, id)
	f.mu.Unlock()
	if f.interestsErr != nil {
		return nil, f.interestsErr
	}
	if v, ok := f.interests[id]; ok {
		return v, nil
	}
	return []string{}, nil
}

func newBufferLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, nil))
}
