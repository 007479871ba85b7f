package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSchema() *Schema {
	return New(
		F("login", Char(true, true)),
		F("method", Char(true, false)),
		F("email", Email(false, true)),
		F("client_ids", ClientIDs(false, false)),
	)
}

func TestBindPartitionsFields(t *testing.T) {
	b := testSchema().Bind(map[string]any{
		"login":  "h&f",
		"method": "",
		"email":  "bad",
	})

	assert.False(t, b.IsValid())
	assert.Equal(t, map[string]any{"login": "h&f"}, b.Values)
	assert.Equal(t, map[string]string{
		"method": "field cannot be empty",
		"email":  "field must be a valid email address",
	}, b.Errors)
	assert.False(t, b.Has("client_ids"), "absent optional field is not bound")
	_, inErrors := b.Errors["client_ids"]
	assert.False(t, inErrors)
}

func TestBindCollectsAllErrors(t *testing.T) {
	b := testSchema().Bind(nil)

	assert.Len(t, b.Errors, 2)
	assert.Equal(t, "field is required", b.Errors["login"])
	assert.Equal(t, "field is required", b.Errors["method"])
	assert.NotNil(t, b.Raw)
}

func TestBindEmptyNullableValueIsBound(t *testing.T) {
	b := testSchema().Bind(map[string]any{"login": "", "method": "m"})

	assert.True(t, b.IsValid())
	assert.True(t, b.Has("login"))
	assert.Equal(t, "", b.String("login"))
}

func TestBindIsIdempotent(t *testing.T) {
	raw := map[string]any{
		"login":      "admin",
		"method":     "online_score",
		"email":      "nope",
		"client_ids": []any{json.Number("1")},
	}
	s := testSchema()
	first, second := s.Bind(raw), s.Bind(raw)

	assert.Equal(t, first.Values, second.Values)
	assert.Equal(t, first.Errors, second.Errors)
}

func TestBoundGetters(t *testing.T) {
	s := New(
		F("phone", Phone(false, true)),
		F("gender", Gender(false, true)),
		F("client_ids", ClientIDs(false, false)),
		F("arguments", Arguments(false, true)),
	)
	b := s.Bind(map[string]any{
		"phone":      json.Number("79175002040"),
		"gender":     json.Number("1"),
		"client_ids": []any{json.Number("3"), json.Number("1")},
		"arguments":  map[string]any{"a": "b"},
	})

	assert.True(t, b.IsValid())
	assert.Equal(t, "79175002040", b.String("phone"))
	g, ok := b.Int("gender")
	assert.True(t, ok)
	assert.EqualValues(t, 1, g)
	assert.Equal(t, []int64{3, 1}, b.IntSlice("client_ids"))
	assert.Equal(t, map[string]any{"a": "b"}, b.Map("arguments"))
	assert.Equal(t, "", b.String("missing"))
}

func TestFieldsReturnsCopy(t *testing.T) {
	s := testSchema()
	fields := s.Fields()
	fields[0].Name = "changed"

	assert.Equal(t, "login", s.Fields()[0].Name)
}
