package schema

import (
	"strconv"
)

// NamedField связывает имя ключа во входном JSON с его дескриптором.
type NamedField struct {
	Name  string
	Field Field
}

// F — короткий конструктор NamedField для объявления схем.
func F(name string, field Field) NamedField {
	return NamedField{Name: name, Field: field}
}

// Schema — упорядоченный неизменяемый набор полей.
// Объявляется один раз, связывается с данными много раз.
type Schema struct {
	fields []NamedField
}

func New(fields ...NamedField) *Schema {
	return &Schema{fields: append([]NamedField(nil), fields...)}
}

// Fields возвращает копию списка полей в порядке объявления.
func (s *Schema) Fields() []NamedField {
	return append([]NamedField(nil), s.fields...)
}

// Bind проверяет каждое объявленное поле и возвращает связанный запрос.
//
// Поля проверяются независимо: ошибка в одном поле не мешает проверке
// остальных. Поле, прошедшее проверку с присутствующим значением, попадает
// в Values; не прошедшее — в Errors. Отсутствующее необязательное поле
// не попадает никуда.
func (s *Schema) Bind(raw map[string]any) *Bound {
	if raw == nil {
		raw = map[string]any{}
	}
	b := &Bound{
		Values: make(map[string]any, len(s.fields)),
		Errors: make(map[string]string),
		Raw:    raw,
	}
	for _, nf := range s.fields {
		value := raw[nf.Name]
		if err := nf.Field.Validate(value); err != nil {
			b.Errors[nf.Name] = err.Error()
			continue
		}
		if value != nil {
			b.Values[nf.Name] = value
		}
	}
	return b
}

// Bound — результат применения схемы к сырым данным.
// После Bind не изменяется.
type Bound struct {
	Values map[string]any
	Errors map[string]string
	Raw    map[string]any
}

// IsValid сообщает, что ни одно поле не вернуло ошибку.
// Межполевые бизнес-правила здесь не проверяются.
func (b *Bound) IsValid() bool {
	return len(b.Errors) == 0
}

// Has сообщает, что поле прошло проверку и имеет значение (не null).
func (b *Bound) Has(name string) bool {
	_, ok := b.Values[name]
	return ok
}

// String возвращает строковое значение поля; целые числа
// (например, телефон) приводятся к десятичной записи.
func (b *Bound) String(name string) string {
	switch v := b.Values[name].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		if n, ok := AsInt(v); ok {
			return strconv.FormatInt(n, 10)
		}
		return ""
	}
}

// Int возвращает целое значение поля.
func (b *Bound) Int(name string) (int64, bool) {
	return AsInt(b.Values[name])
}

// Map возвращает значение поля-объекта.
func (b *Bound) Map(name string) map[string]any {
	m, _ := b.Values[name].(map[string]any)
	return m
}

// IntSlice возвращает значение поля-списка целых.
func (b *Bound) IntSlice(name string) []int64 {
	ids, _ := intList(b.Values[name])
	return ids
}
