package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMethodRequest(t *testing.T) {
	s := newRequestSchemas(fixedNow).method

	req := NewMethodRequest(s, map[string]any{
		"account":   "horns&hoofs",
		"login":     "admin",
		"token":     "",
		"arguments": map[string]any{"a": "b"},
		"method":    "online_score",
	})
	assert.True(t, req.IsValid())
	assert.True(t, req.IsAdmin())
	assert.Equal(t, "online_score", req.Method())
	assert.Equal(t, map[string]any{"a": "b"}, req.Arguments())

	req = NewMethodRequest(s, map[string]any{
		"login":     "h&f",
		"token":     "t",
		"arguments": map[string]any{},
		"method":    "",
	})
	assert.False(t, req.IsValid())
	assert.False(t, req.IsAdmin())
	assert.Equal(t, map[string]string{"method": "field cannot be empty"}, req.Errors)
}

func TestMethodRequestMissingFields(t *testing.T) {
	req := NewMethodRequest(newRequestSchemas(fixedNow).method, map[string]any{})

	assert.Equal(t, map[string]string{
		"login":     "field is required",
		"token":     "field is required",
		"arguments": "field is required",
		"method":    "field is required",
	}, req.Errors)
}

func TestOnlineScoreRequestPairs(t *testing.T) {
	s := newRequestSchemas(fixedNow).onlineScore
	tests := []struct {
		name string
		raw  map[string]any
		ok   bool
	}{
		{"phone and email", map[string]any{"phone": "79175002040", "email": "stupnikov@otus.ru"}, true},
		{"first and last name", map[string]any{"first_name": "a", "last_name": "b"}, true},
		{"gender and birthday", map[string]any{"gender": json.Number("0"), "birthday": "01.01.2000"}, true},
		{"empty strings still pair", map[string]any{"first_name": "", "last_name": ""}, true},
		{"first name only", map[string]any{"first_name": "a"}, false},
		{"phone only", map[string]any{"phone": "79175002040"}, false},
		{"mixed halves", map[string]any{"phone": "79175002040", "last_name": "b", "gender": json.Number("1")}, false},
		{"nothing", map[string]any{}, false},
		{"null pair", map[string]any{"phone": nil, "email": nil}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := NewOnlineScoreRequest(s, tt.raw)
			assert.Equal(t, tt.ok, args.Validate())
			if tt.ok {
				assert.Nil(t, args.ErrorMap())
			} else {
				assert.Contains(t, args.ErrorMap(), pairsErrorKey)
			}
		})
	}
}

func TestOnlineScoreRequestFieldErrorsWin(t *testing.T) {
	args := NewOnlineScoreRequest(newRequestSchemas(fixedNow).onlineScore, map[string]any{
		"phone": "89175002040",
		"email": "stupnikov@otus.ru",
	})

	assert.False(t, args.Validate())
	errs := args.ErrorMap()
	assert.Contains(t, errs, "phone")
	assert.NotContains(t, errs, pairsErrorKey)
}

func TestClientsInterestsRequest(t *testing.T) {
	s := newRequestSchemas(fixedNow).clientsInterests

	args := NewClientsInterestsRequest(s, map[string]any{
		"client_ids": []any{json.Number("1"), json.Number("2")},
		"date":       "20.07.2017",
	})
	assert.True(t, args.IsValid())
	assert.Equal(t, []int64{1, 2}, args.ClientIDs())

	args = NewClientsInterestsRequest(s, map[string]any{"date": "20.07.2017"})
	assert.Equal(t, map[string]string{"client_ids": "field is required"}, args.Errors)

	args = NewClientsInterestsRequest(s, map[string]any{"client_ids": []any{}, "date": "2017-07-20"})
	assert.Len(t, args.Errors, 2)
}
