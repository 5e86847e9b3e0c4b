// Package validation checks and sanitises client input.
package validation

import (
	"fmt"
	"html"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/videotube/videotube-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPageLimit int64 = 10
	MaxPageLimit     int64 = 100
)

// SortFields are the fields the public video listing may be sorted by.
var SortFields = map[string]bool{
	"createdAt": true,
	"views":     true,
	"duration":  true,
	"title":     true,
}

// Validator wraps struct-tag validation and HTML sanitising.
type Validator struct {
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
}

// New creates a Validator with the custom "objectid" and "notblank" tags.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &Validator{
		validate:  v,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// FieldError describes one failed rule.
type FieldError struct {
	Field string
	Tag   string
}

func (e FieldError) String() string {
	switch e.Tag {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", e.Field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", e.Field)
	case "min":
		return fmt.Sprintf("%s is too short", e.Field)
	case "max":
		return fmt.Sprintf("%s is too long", e.Field)
	case "objectid":
		return fmt.Sprintf("%s is not a valid id", e.Field)
	default:
		return fmt.Sprintf("%s is invalid", e.Field)
	}
}

// Errors is returned by Struct when one or more rules fail.
type Errors []FieldError

func (ve Errors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	return "validation failed: " + ve[0].String()
}

// Messages returns one message per failed rule.
func (ve Errors) Messages() []string {
	out := make([]string, 0, len(ve))
	for _, e := range ve {
		out = append(out, e.String())
	}
	return out
}

// Struct validates s by its `validate` tags.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag()})
	}
	return out
}

// IsValidEmail reports whether s is a well-formed email address.
func (v *Validator) IsValidEmail(s string) bool {
	return v.validate.Var(s, "required,email") == nil
}

// Sanitize strips all markup and surrounding whitespace from user text and
// returns plain text. Entities escaped by the policy are decoded again.
func (v *Validator) Sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(v.sanitizer.Sanitize(s)))
}

// ParseObjectID parses a hex object id.
func ParseObjectID(s string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// ParsePage normalises page and limit query values: page < 1 becomes 1,
// a missing or non-positive limit becomes the default and limit is capped.
// Page is capped so the skip offset fits in an int64.
func ParsePage(pageStr, limitStr string) models.Page {
	page, err := strconv.ParseInt(pageStr, 10, 64)
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil || limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if maxPage := math.MaxInt64 / limit; page > maxPage {
		page = maxPage
	}

	return models.Page{Page: page, Limit: limit}
}

// ParseVideoQuery builds the public listing query from raw query values.
// Unknown sort fields fall back to createdAt; any sortType but "asc" sorts descending.
func ParseVideoQuery(page, limit, query, sortBy, sortType string) models.VideoQuery {
	if !SortFields[sortBy] {
		sortBy = "createdAt"
	}
	return models.VideoQuery{
		Page:     ParsePage(page, limit),
		Query:    strings.TrimSpace(query),
		SortBy:   sortBy,
		SortDesc: !strings.EqualFold(sortType, "asc"),
	}
}
