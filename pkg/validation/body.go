package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	civicTypes "github.com/civic-lens/civic-backend/pkg/civic/types"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report JSON names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("reportstatus", func(fl validator.FieldLevel) bool {
		return civicTypes.ReportStatus(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("solutionstatus", func(fl validator.FieldLevel) bool {
		return civicTypes.SolutionStatus(fl.Field().String()).IsValid()
	})
	return v
}

// DecodeJSON reads an untrusted JSON payload into dst. Keys that dst does not declare are
// dropped silently. Malformed JSON and type mismatches become a *ValidationError.
func DecodeJSON(body io.Reader, dst any) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return (&ValidationError{}).Add("", "body", "request body could not be read")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return (&ValidationError{}).Add("", "body", "request body is empty")
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		var syntaxErr *json.SyntaxError
		switch {
		case errors.As(err, &typeErr):
			field := typeErr.Field
			if field == "" {
				field = "body"
			}
			verr := (&ValidationError{}).Add(field, "type", fmt.Sprintf("must be of type %s", jsonTypeName(typeErr.Type)))
			// decoding went on past the mismatch, so the remaining fields can still be checked
			return withRuleViolations(verr, dst)
		case errors.As(err, &syntaxErr):
			return (&ValidationError{}).Add("", "json", "request body is not valid JSON")
		default:
			return (&ValidationError{}).Add("", "json", err.Error())
		}
	}
	return nil
}

// Struct checks v against its `validate` tags and collects every violation.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return (&ValidationError{}).Add("", "schema", err.Error())
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fieldPath(fe), fe.Tag(), messageFor(fe))
	}
	return verr
}

// withRuleViolations appends the tag rule violations of dst to verr. Violations on a field that
// already failed its type check are dropped. dst may be a pointer to a pointer to a struct; nil
// or non struct targets add nothing.
func withRuleViolations(verr *ValidationError, dst any) *ValidationError {
	v := reflect.ValueOf(dst)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return verr
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return verr
	}

	typeFailed := map[string]bool{}
	for _, violation := range verr.Violations {
		typeFailed[violation.Field] = true
	}

	var ruleErr *ValidationError
	if !errors.As(Struct(v.Addr().Interface()), &ruleErr) {
		return verr
	}
	for _, violation := range ruleErr.Violations {
		if typeFailed[indexPattern.ReplaceAllString(violation.Field, "")] {
			continue
		}
		verr.Violations = append(verr.Violations, violation)
	}
	return verr
}

// type errors name nested fields without slice indexes, e.g. "coordinates.latitude"
var indexPattern = regexp.MustCompile(`\[\d+\]`)

// DecodeAndValidate is DecodeJSON followed by Struct.
func DecodeAndValidate(body io.Reader, dst any) error {
	if err := DecodeJSON(body, dst); err != nil {
		return err
	}
	return Struct(dst)
}

// fieldPath strips the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func messageFor(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	isCollection := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array || fe.Kind() == reflect.Map

	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		if isCollection {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		}
		if isCollection {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "mongodb":
		return "must be a valid identifier"
	case "reportstatus":
		return "must be one of " + joinValues(civicTypes.ReportStatusValues())
	case "solutionstatus":
		return "must be one of " + joinValues(civicTypes.SolutionStatusValues())
	default:
		return fmt.Sprintf("failed rule %q", fe.Tag())
	}
}

func joinValues[T ~string](values []T) string {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = string(v)
	}
	return strings.Join(s, ", ")
}

func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "unknown"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int32, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.String()
	}
}
