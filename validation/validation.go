// Package validation holds the request schemas and turns validator tag
// failures into field errors a client can show next to a form input.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// FieldError is a single failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is returned for any input that fails decoding or validation.
type Errors []FieldError

func (e Errors) Error() string {
	return e.First()
}

// First returns the message of the first failure, which is what handlers send
// back with a 400.
func (e Errors) First() string {
	if len(e) == 0 {
		return "Invalid input"
	}
	if e[0].Field == "" {
		return e[0].Message
	}
	return e[0].Field + " " + e[0].Message
}

// Message is the text a handler sends back with a 400 for err.
func Message(err error) string {
	var errs Errors
	if errors.As(err, &errs) {
		return errs.First()
	}
	return "Invalid input"
}

// Checker is implemented by schemas with rules that tags cannot express.
type Checker interface {
	Check() Errors
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("date", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(time.DateOnly, fl.Field().String())
			return err == nil
		})
		// bcrypt reads at most 72 bytes; max counts runes
		_ = validate.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
			limit, err := strconv.Atoi(fl.Param())
			return err == nil && len(fl.Field().String()) <= limit
		})
	})
	return validate
}

// Struct runs tag validation and, when v implements Checker, its extra rules.
func Struct(v any) error {
	if err := instance().Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fromValidator(verrs)
		}
		return err
	}
	if c, ok := v.(Checker); ok {
		if errs := c.Check(); len(errs) > 0 {
			return errs
		}
	}
	return nil
}

// Decode reads a JSON body into dst, rejecting unknown fields, then validates
// it. Every failure is reported as Errors.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	return Struct(dst)
}

func decodeError(err error) Errors {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return Errors{{Message: "Request body is required"}}
	case errors.As(err, &typeErr):
		return Errors{{Field: typeErr.Field, Message: "has the wrong type"}}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return Errors{{Field: field, Message: "is not allowed"}}
	default:
		return Errors{{Message: "Invalid JSON body"}}
	}
}

func fromValidator(verrs validator.ValidationErrors) Errors {
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return out
}

// fieldPath drops the root struct name: ItineraryInput.customerInfo.email ->
// customerInfo.email.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must not contain more than %s items", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("must not exceed %s bytes", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "date":
		return "must be a date in YYYY-MM-DD format"
	case "hexadecimal":
		return "is malformed"
	case "mongodb":
		return "must be a valid id"
	case "nefield":
		return "must differ from the current value"
	case "e164":
		return "must be a valid phone number with country code"
	default:
		return "is invalid"
	}
}
