// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"productcatalog/internal/apperr"
	"productcatalog/internal/models"
)

// Client-facing validation messages.
const (
	msgRequestNull = "Request cannot be null."
	msgIDNull      = "Category ID cannot be null."
)

// fieldLabels maps JSON field names to the labels used in messages.
var fieldLabels = map[string]string{
	"name":        "Name",
	"description": "Description",
	"parentid":    "Parent ID",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest normalizes req in place and checks it. Only the first
// failing field is reported.
func (s *CategoryService) validateRequest(req *models.CategoryRequest) error {
	if req == nil {
		return apperr.Validation(msgRequestNull)
	}
	req.Normalize()

	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Validation(msgRequestNull)
	}
	return apperr.Validation(fieldMessage(fieldErrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		return label + " must be at most " + fe.Param() + " characters."
	case "min":
		return label + " must not be negative."
	default:
		return label + " is invalid."
	}
}

// validateID rejects ids that cannot belong to a persisted category.
func validateID(id int) error {
	if id <= 0 {
		return apperr.Validation(msgIDNull)
	}
	return nil
}
