// Package request decodes and checks incoming API requests.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
)

const maxBodyBytes = 1 << 20

var (
	validate = newValidator()
	policy   = bluemonday.StrictPolicy()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Decode reads a JSON body into dst and runs its `validate` tags.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return &respond.BadRequest{Message: fmt.Sprintf("invalid request body: %v", err)}
	}

	return Validate(dst)
}

func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &respond.BadRequest{Message: err.Error()}
	}

	details := make([]respond.FieldError, len(verrs))
	for i, fe := range verrs {
		details[i] = respond.FieldError{Field: fe.Field(), Message: message(fe)}
	}

	return &respond.BadRequest{Message: "validation failed", Details: details}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "nefield":
		return "must differ from " + fe.Param()
	case "hexcolor":
		return "must be a hex color"
	default:
		return "is invalid"
	}
}

// Text strips markup from user supplied text. Entities produced by the
// sanitizer are decoded again so "Rent & bills" survives unchanged.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}

	return new(Text(*s))
}

// ID parses the chi URL parameter name as a UUID.
func ID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, &respond.BadRequest{Message: "invalid " + name}
	}

	return id, nil
}

// Query reads optional typed query-string values, collecting the first
// parse error.
type Query struct {
	r   *http.Request
	err error
}

func NewQuery(r *http.Request) *Query {
	return &Query{r: r}
}

func (q *Query) Err() error {
	return q.err
}

func (q *Query) get(key string) (string, bool) {
	v := strings.TrimSpace(q.r.URL.Query().Get(key))
	return v, v != ""
}

func (q *Query) fail(key string) {
	if q.err == nil {
		q.err = &respond.BadRequest{Message: "invalid query parameter", Details: []respond.FieldError{
			{Field: key, Message: "is invalid"},
		}}
	}
}

func (q *Query) String(key string) *string {
	v, ok := q.get(key)
	if !ok {
		return nil
	}

	return &v
}

func (q *Query) UUID(key string) *uuid.UUID {
	v, ok := q.get(key)
	if !ok {
		return nil
	}

	id, err := uuid.Parse(v)
	if err != nil {
		q.fail(key)
		return nil
	}

	return &id
}

func (q *Query) Bool(key string) *bool {
	v, ok := q.get(key)
	if !ok {
		return nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		q.fail(key)
		return nil
	}

	return &b
}

func (q *Query) Int(key string, def int) int {
	v, ok := q.get(key)
	if !ok {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		q.fail(key)
		return def
	}

	return n
}

func (q *Query) Date(key string) *time.Time {
	v, ok := q.get(key)
	if !ok {
		return nil
	}

	d, err := time.Parse(time.DateOnly, v)
	if err != nil {
		q.fail(key)
		return nil
	}

	return &d
}

// Cents parses a decimal amount such as 12.50 into cents.
func (q *Query) Cents(key string) *int64 {
	v, ok := q.get(key)
	if !ok {
		return nil
	}

	a, err := money.Parse(v)
	if err != nil {
		q.fail(key)
		return nil
	}

	return new(a.Cents())
}

// Day is a calendar date sent as "2006-01-02" or as a full RFC 3339
// timestamp, whose clock part is dropped.
type Day struct {
	time.Time
}

func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	if t, err := time.Parse(time.DateOnly, s); err == nil {
		d.Time = t
		return nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}

	d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	return nil
}

func (d *Day) Ptr() *time.Time {
	if d == nil {
		return nil
	}

	return &d.Time
}

// OptionalID tells an absent key apart from an explicit null.
type OptionalID struct {
	Set bool
	ID  *uuid.UUID
}

func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Set = true

	if string(b) == "null" {
		o.ID = nil
		return nil
	}

	var id uuid.UUID
	if err := json.Unmarshal(b, &id); err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}

	if id == uuid.Nil {
		return nil
	}

	o.ID = &id

	return nil
}

// Parse reads key with parse, recording a failure on q.
func Parse[T any](q *Query, key string, parse func(string) (T, error)) *T {
	v, ok := q.get(key)
	if !ok {
		return nil
	}

	out, err := parse(v)
	if err != nil {
		q.fail(key)
		return nil
	}

	return &out
}

// PathInt parses the chi URL parameter name as an integer.
func PathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, &respond.BadRequest{Message: "invalid " + name}
	}

	return n, nil
}
