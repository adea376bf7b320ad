package apperror

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	Unauthenticated
	Forbidden
	NotFound
	TooManyRequests
	Storage
)

var statusOf = map[Kind]int{
	Internal:        http.StatusInternalServerError,
	Validation:      http.StatusUnprocessableEntity,
	Unauthenticated: http.StatusUnauthorized,
	Forbidden:       http.StatusForbidden,
	NotFound:        http.StatusNotFound,
	TooManyRequests: http.StatusTooManyRequests,
	Storage:         http.StatusInternalServerError,
}

// Error is the one error type handlers hand to Respond. Message is always safe
// to show the client; Err carries the internal cause for the log.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Status() int {
	return statusOf[e.Kind]
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Invalid builds a validation error for a single field.
func Invalid(field, message string) *Error {
	return &Error{
		Kind:    Validation,
		Message: message,
		Fields:  map[string][]string{field: {message}},
	}
}

func Unauthorized() *Error {
	return New(Unauthenticated, "Unauthenticated.")
}

func Denied() *Error {
	return New(Forbidden, "This action is unauthorized.")
}

func Missing(what string) *Error {
	return New(NotFound, what+" not found")
}

func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// From classifies an arbitrary error. Record-not-found becomes NotFound,
// *Error passes through, anything else is Internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(NotFound, "Resource not found", err)
	}
	return Wrap(Internal, "Server error", err)
}

// Respond writes err as {"message", "errors"} and aborts the request.
// 5xx causes are logged and never echoed to the client.
func Respond(c *gin.Context, err error) {
	e := From(err)
	status := e.Status()
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, e)
	}
	body := gin.H{"message": e.Message}
	if len(e.Fields) > 0 {
		body["errors"] = e.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

// FromBinding turns a ShouldBind error into a validation error with one
// message per offending field.
func FromBinding(err error) *Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Kind: Validation, Message: "The given data was invalid.", Err: err}
	}
	fields := make(map[string][]string, len(verrs))
	var first string
	for _, fe := range verrs {
		name := snake(fe.Field())
		msg := fieldMessage(name, fe)
		fields[name] = append(fields[name], msg)
		if first == "" {
			first = msg
		}
	}
	return &Error{Kind: Validation, Message: first, Fields: fields, Err: err}
}

func fieldMessage(field string, fe validator.FieldError) string {
	label := strings.ReplaceAll(field, "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", label)
	case "min":
		return fmt.Sprintf("The %s must be at least %s.", label, fe.Param())
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s must be at least %s.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", label)
	case "eqfield":
		return fmt.Sprintf("The %s confirmation does not match.", strings.TrimSuffix(label, " confirmation"))
	}
	return fmt.Sprintf("The %s is invalid.", label)
}

// snake converts a Go field name (ProjectCode, TaskID) to its JSON key.
// Only needed when no json tag-name func is registered on the validator.
func snake(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		upper := r >= 'A' && r <= 'Z'
		if upper && prevLower {
			b.WriteByte('_')
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
		prevLower = !upper
	}
	return b.String()
}
