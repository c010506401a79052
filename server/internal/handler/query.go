package handler

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/navid-fn/ecomdash/internal/dataset"
	"github.com/navid-fn/ecomdash/internal/models"
)

var validate = newValidator()

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

// SelectionQuery is a dashboard selection as sent by clients, either as
// query parameters or as a JSON body. Empty fields keep their defaults.
type SelectionQuery struct {
	Start    string `form:"start" json:"start" validate:"omitempty,datetime=2006-01-02"`
	End      string `form:"end" json:"end" validate:"omitempty,datetime=2006-01-02"`
	City     string `form:"city" json:"city" validate:"max=256"`
	Category string `form:"category" json:"category" validate:"max=256"`
}

// Selection applies q over defaults.
func (q SelectionQuery) Selection(defaults dataset.Selection) (dataset.Selection, error) {
	if err := validate.Struct(q); err != nil {
		return dataset.Selection{}, fmt.Errorf("%w: %s", ErrBadRequest, describe(err))
	}

	sel := defaults
	if q.Start != "" {
		start, _ := time.Parse(models.DateLayout, q.Start)
		sel.Start = models.DateOf(start)
	}
	if q.End != "" {
		end, _ := time.Parse(models.DateLayout, q.End)
		sel.End = models.DateOf(end)
	}
	if q.City != "" {
		sel.City = q.City
	}
	if q.Category != "" {
		sel.Category = q.Category
	}

	if err := sel.Validate(); err != nil {
		return dataset.Selection{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return sel, nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s must be a date formatted as %s", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
