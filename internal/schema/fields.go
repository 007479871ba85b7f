// Package schema содержит декларативные правила валидации полей запроса
// (дескрипторы полей) и связывание сырых JSON-данных с этими правилами.
//
// Дескрипторы неизменяемы: их объявляют один раз при сборке схемы
// и безопасно разделяют между параллельными запросами.
package schema

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"time"
	"unicode/utf8"
)

// DateLayout — формат дат DD.MM.YYYY (ведущие нули необязательны).
const DateLayout = "2.1.2006"

// birthdayMaxAgeYears ограничивает возраст в поле birthday.
const birthdayMaxAgeYears = 70

var (
	ErrRequired = errors.New("field is required")
	ErrEmpty    = errors.New("field cannot be empty")

	errNotString     = errors.New("field must be a string")
	errNotMapping    = errors.New("field must be a mapping")
	errEmail         = errors.New("field must be a valid email address")
	errPhoneType     = errors.New("phone must be a string or an integer")
	errPhoneLength   = errors.New("phone must be 11 characters long")
	errPhonePrefix   = errors.New("phone must start with 7")
	errDate          = errors.New("invalid date, expected format DD.MM.YYYY")
	errBirthdayRange = errors.New("birthday must be no more than 70 years ago")
	errGender        = errors.New("gender must be an integer: 0, 1 or 2")
	errClientIDsType = errors.New("client_ids must be a list")
	errClientIDsLen  = errors.New("client_ids cannot be an empty list")
	errClientIDsItem = errors.New("client_ids must contain only integers")
)

var emailPattern = regexp.MustCompile(`^.+@.+`)

// Field — правило валидации для одного именованного поля схемы.
type Field interface {
	Required() bool
	Nullable() bool
	// Validate возвращает ошибку, если значение не проходит правило.
	// nil означает отсутствующее значение (нет ключа или JSON null).
	Validate(value any) error
}

type base struct {
	required bool
	nullable bool
}

func (b base) Required() bool { return b.required }
func (b base) Nullable() bool { return b.nullable }

// presence проверяет наличие и пустоту значения.
// skip=true означает, что типовые проверки выполнять не нужно.
func (b base) presence(value any) (skip bool, err error) {
	if value == nil {
		if b.required {
			return true, ErrRequired
		}
		return true, nil
	}
	if s, ok := value.(string); ok && s == "" {
		if !b.nullable {
			return true, ErrEmpty
		}
		return true, nil
	}
	return false, nil
}

// CharField — строковое поле.
type CharField struct{ base }

func Char(required, nullable bool) CharField {
	return CharField{base{required, nullable}}
}

func (f CharField) Validate(value any) error {
	if skip, err := f.presence(value); skip {
		return err
	}
	if _, ok := value.(string); !ok {
		return errNotString
	}
	return nil
}

// ArgumentsField — вложенный JSON-объект.
// Проверка типа выполняется для любого присутствующего значения,
// в том числе для пустой строки.
type ArgumentsField struct{ base }

func Arguments(required, nullable bool) ArgumentsField {
	return ArgumentsField{base{required, nullable}}
}

func (f ArgumentsField) Validate(value any) error {
	if _, err := f.presence(value); err != nil || value == nil {
		return err
	}
	if _, ok := value.(map[string]any); !ok {
		return errNotMapping
	}
	return nil
}

// EmailField — строка, содержащая "@" с непустыми частями по обе стороны.
type EmailField struct{ base }

func Email(required, nullable bool) EmailField {
	return EmailField{base{required, nullable}}
}

func (f EmailField) Validate(value any) error {
	if skip, err := f.presence(value); skip {
		return err
	}
	s, ok := value.(string)
	if !ok {
		return errNotString
	}
	if !emailPattern.MatchString(s) {
		return errEmail
	}
	return nil
}

// PhoneField принимает строку или целое число из 11 символов,
// начинающееся с цифры 7.
type PhoneField struct{ base }

func Phone(required, nullable bool) PhoneField {
	return PhoneField{base{required, nullable}}
}

func (f PhoneField) Validate(value any) error {
	if skip, err := f.presence(value); skip {
		return err
	}
	text, ok := phoneText(value)
	if !ok {
		return errPhoneType
	}
	if utf8.RuneCountInString(text) != 11 {
		return errPhoneLength
	}
	if text[0] != '7' {
		return errPhonePrefix
	}
	return nil
}

// phoneText приводит телефон (строку или целое) к строковому виду.
func phoneText(value any) (string, bool) {
	if s, ok := value.(string); ok {
		return s, true
	}
	if n, ok := AsInt(value); ok {
		return strconv.FormatInt(n, 10), true
	}
	return "", false
}

// DateField — дата в формате DD.MM.YYYY без ограничений диапазона.
type DateField struct{ base }

func Date(required, nullable bool) DateField {
	return DateField{base{required, nullable}}
}

func (f DateField) Validate(value any) error {
	if skip, err := f.presence(value); skip {
		return err
	}
	_, err := parseDateValue(value)
	return err
}

// BirthdayField — дата в формате DD.MM.YYYY не раньше, чем 70 лет назад.
// Верхняя граница не проверяется: дата из будущего допустима.
type BirthdayField struct {
	base
	now func() time.Time
}

func Birthday(required, nullable bool) BirthdayField {
	return BirthdayField{base: base{required, nullable}}
}

// WithClock возвращает копию поля, которая берёт "сегодня" из now.
func (f BirthdayField) WithClock(now func() time.Time) BirthdayField {
	f.now = now
	return f
}

func (f BirthdayField) Validate(value any) error {
	if skip, err := f.presence(value); skip {
		return err
	}
	date, err := parseDateValue(value)
	if err != nil {
		return err
	}
	if date.Before(f.earliest()) {
		return errBirthdayRange
	}
	return nil
}

// earliest возвращает самую раннюю допустимую дату рождения.
// 29 февраля сдвигается на последний день месяца, а не на 1 марта.
func (f BirthdayField) earliest() time.Time {
	now := time.Now
	if f.now != nil {
		now = f.now
	}
	y, m, d := now().Date()
	y -= birthdayMaxAgeYears
	if last := daysIn(y, m); d > last {
		d = last
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// GenderField — целое число из {0, 1, 2}.
type GenderField struct{ base }

func Gender(required, nullable bool) GenderField {
	return GenderField{base{required, nullable}}
}

func (f GenderField) Validate(value any) error {
	if skip, err := f.presence(value); skip {
		return err
	}
	n, ok := AsInt(value)
	if !ok || n < 0 || n > 2 {
		return errGender
	}
	return nil
}

// ClientIDsField — непустой список целых чисел.
type ClientIDsField struct{ base }

func ClientIDs(required, nullable bool) ClientIDsField {
	return ClientIDsField{base{required, nullable}}
}

func (f ClientIDsField) Validate(value any) error {
	if _, err := f.presence(value); err != nil || value == nil {
		return err
	}
	ids, ok := intList(value)
	if !ok {
		if _, isList := value.([]any); isList {
			return errClientIDsItem
		}
		return errClientIDsType
	}
	if len(ids) == 0 {
		return errClientIDsLen
	}
	return nil
}

// ParseDate разбирает дату в формате DD.MM.YYYY.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errDate
	}
	return t, nil
}

func parseDateValue(value any) (time.Time, error) {
	s, ok := value.(string)
	if !ok {
		return time.Time{}, errDate
	}
	return ParseDate(s)
}

// AsInt возвращает целое значение для json.Number без дробной части
// и для целочисленных типов Go. Числа с плавающей точкой целыми не считаются.
func AsInt(value any) (int64, bool) {
	switch n := value.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	default:
		return 0, false
	}
}

// intList приводит список к []int64; ok=false, если это не список
// или в нём есть нецелые элементы.
func intList(value any) ([]int64, bool) {
	switch list := value.(type) {
	case []any:
		out := make([]int64, 0, len(list))
		for _, item := range list {
			n, ok := AsInt(item)
			if !ok {
				return nil, false
			}
			out = append(out, n)
		}
		return out, true
	case []int:
		out := make([]int64, len(list))
		for i, n := range list {
			out[i] = int64(n)
		}
		return out, true
	case []int64:
		return append([]int64(nil), list...), true
	default:
		return nil, false
	}
}
