package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const maxBodyBytes = 1 << 20

// fieldMessages are the responses for a missing or mistyped field.
var fieldMessages = map[string]string{
	"userId": "userId is required",
	"logs":   "logs must be an array",
	"state":  "state object is required",
}

// requestError is a 400 response.
type requestError struct {
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(message string) error {
	return &requestError{message: message}
}

// requestValidator checks decoded requests against their validate tags.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return &requestValidator{validate: v}
}

// Struct reports the first failing field using fieldMessages.
func (rv *requestValidator) Struct(req any) error {
	err := rv.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if msg, ok := fieldMessages[fe.Field()]; ok {
			return badRequest(msg)
		}
		return badRequest(fe.Field() + " failed on '" + fe.Tag() + "' validation")
	}
	return badRequest(err.Error())
}

// decodeJSON reads the request body into dst. An empty body leaves dst
// untouched so that field validation reports what is missing.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if msg, ok := fieldMessages[typeErr.Field]; ok {
			return badRequest(msg)
		}
	}
	return badRequest("invalid request body")
}
