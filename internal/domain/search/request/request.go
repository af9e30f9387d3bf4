package request

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kailas-cloud/talentsearch/internal/domain"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/filter"
)

// Search parameter limits.
const (
	MaxQueryLength = 500
	DefaultLimit   = 10
	MaxLimit       = 50
	MaxYears       = 70
)

// Filter field names shared by the index adapters.
const (
	FieldLocation        = "location"
	FieldYearsExperience = "years_experience"
)

// Params are the raw invocation parameters.
type Params struct {
	Query     string   `param:"query" validate:"required,max=500"`
	Limit     int      `param:"limit" validate:"min=0,max=50"`
	UserScope string   `param:"user_scope" validate:"required,max=128"`
	Location  string   `param:"location" validate:"max=128"`
	MinYears  *float64 `param:"min_years" validate:"omitempty,min=0,max=70"`
	MaxYears  *float64 `param:"max_years" validate:"omitempty,min=0,max=70"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("param")
	})
	return v
}

// Request is a validated search invocation.
type Request struct {
	query     string
	limit     int
	userScope string
	location  string
	minYears  *float64
	maxYears  *float64
	filters   filter.Expression
}

// New validates and normalizes search parameters. Errors wrap domain.ErrInvalidRequest.
// Defaults: limit=10.
func New(p Params) (Request, error) {
	p.Query = strings.TrimSpace(p.Query)
	p.UserScope = strings.TrimSpace(p.UserScope)
	p.Location = strings.TrimSpace(p.Location)

	if err := validate.Struct(p); err != nil {
		return Request{}, translate(err)
	}
	if p.MinYears != nil && p.MaxYears != nil && *p.MinYears > *p.MaxYears {
		return Request{}, domain.NewValidationError("min_years", "must not exceed max_years")
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}

	filters, err := buildFilters(p)
	if err != nil {
		return Request{}, domain.NewValidationError("filters", err.Error())
	}

	return Request{
		query:     p.Query,
		limit:     p.Limit,
		userScope: p.UserScope,
		location:  p.Location,
		minYears:  p.MinYears,
		maxYears:  p.MaxYears,
		filters:   filters,
	}, nil
}

func buildFilters(p Params) (filter.Expression, error) {
	var must []filter.Condition
	if p.Location != "" {
		c, err := filter.NewMatch(FieldLocation, p.Location)
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, c)
	}
	if p.MinYears != nil || p.MaxYears != nil {
		r, err := filter.NewRangeFilter(nil, p.MinYears, nil, p.MaxYears)
		if err != nil {
			return filter.Expression{}, err
		}
		c, err := filter.NewRange(FieldYearsExperience, r)
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, c)
	}
	return filter.NewExpression(must, nil, nil)
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(fe.Field(), "is required")
	case "max":
		return domain.NewValidationError(fe.Field(), "must be at most "+fe.Param())
	case "min":
		return domain.NewValidationError(fe.Field(), "must be at least "+fe.Param())
	default:
		return domain.NewValidationError(fe.Field(), "failed "+fe.Tag())
	}
}

// Query returns the trimmed query text.
func (r *Request) Query() string { return r.query }

// Limit returns the number of results the caller wants.
func (r *Request) Limit() int { return r.limit }

// UserScope returns the tenant the search is restricted to.
func (r *Request) UserScope() string { return r.userScope }

// Filters returns the structured pre-filter.
func (r *Request) Filters() filter.Expression { return r.filters }

// NormalizedQuery lower-cases the query, collapses whitespace and appends a
// filter fingerprint, so equal searches share a cache entry.
func (r *Request) NormalizedQuery() string {
	var b strings.Builder
	b.WriteString(strings.Join(strings.Fields(strings.ToLower(r.query)), " "))
	if r.location != "" {
		b.WriteString("|loc=")
		b.WriteString(strings.ToLower(r.location))
	}
	if r.minYears != nil {
		b.WriteString("|min=")
		b.WriteString(strconv.FormatFloat(*r.minYears, 'g', -1, 64))
	}
	if r.maxYears != nil {
		b.WriteString("|max=")
		b.WriteString(strconv.FormatFloat(*r.maxYears, 'g', -1, 64))
	}
	return b.String()
}
