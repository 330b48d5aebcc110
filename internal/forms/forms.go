// Package forms декодирует и проверяет HTML-формы сайта.
//
// Каждая форма — структура с тегами schema (имя поля формы) и validate
// (правила go-playground/validator). Ошибки возвращаются в виде Errors,
// готовом для показа рядом с полями в шаблоне.
package forms

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

// NonFieldKey — ключ Errors для ошибок, не относящихся к одному полю.
const NonFieldKey = "__all__"

// Errors — сообщения об ошибках по имени поля формы.
type Errors map[string]string

func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

func (e Errors) Get(field string) string {
	return e[field]
}

func (e Errors) Any() bool {
	return len(e) > 0
}

var (
	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

	once     sync.Once
	validate *validator.Validate
	decoder  *schema.Decoder
)

func setup() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("schema"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("imageurl", func(fl validator.FieldLevel) bool {
		return HasImageExtension(fl.Field().String())
	})

	decoder = schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	decoder.ZeroEmpty(true)
}

// Decode заполняет dst значениями формы и обрезает пробелы по краям строк.
func Decode(dst any, values url.Values) error {
	once.Do(setup)

	trimmed := make(url.Values, len(values))
	for k, vs := range values {
		for _, v := range vs {
			trimmed.Add(k, strings.TrimSpace(v))
		}
	}
	if err := decoder.Decode(dst, trimmed); err != nil {
		return fmt.Errorf("decode form: %w", err)
	}
	return nil
}

// Validate проверяет форму и возвращает ошибки по полям (пустой Errors — форма валидна).
func Validate(form any) Errors {
	once.Do(setup)

	errs := Errors{}
	err := validate.Struct(form)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add(NonFieldKey, err.Error())
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

// Bind — Decode и Validate за один вызов. Ошибка декодирования тоже превращается в Errors.
func Bind(dst any, values url.Values) Errors {
	if err := Decode(dst, values); err != nil {
		errs := Errors{}
		var multi schema.MultiError
		if errors.As(err, &multi) {
			for field := range multi {
				errs.Add(field, "Enter a valid value.")
			}
			return errs
		}
		errs.Add(NonFieldKey, "Invalid form submission.")
		return errs
	}
	return Validate(dst)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url", "http_url":
		return "Enter a valid URL."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), len([]rune(fmt.Sprint(fe.Value()))))
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "eqfield":
		return "The two password fields didn't match."
	case "oneof":
		return "Select a valid choice."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "imageurl":
		return "The given URL does not match valid image extensions."
	case "datetime":
		return "Enter a valid date."
	default:
		return "Enter a valid value."
	}
}
