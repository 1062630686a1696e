// Reina Core
// Copyright (c) 2026 The Reina Core Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Reina Core.
//
// Reina Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Reina Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Reina Core.  If not, see <http://www.gnu.org/licenses/>.

// Package validation checks API request parameters with
// go-playground/validator. Error messages use the JSON field names.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrMissingParams = errors.New("missing params")
	ErrInvalidParams = errors.New("invalid params")
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	_ = v.RegisterValidation("path", validatePath)
	_ = v.RegisterValidation("duration", validateDuration)
	_ = v.RegisterValidation("timezone", validateTimezone)

	return &Validator{validate: v}
}

var DefaultValidator = NewValidator()

// Validate returns an *Error listing every failed field.
func (v *Validator) Validate(params any) error {
	if err := v.validate.Struct(params); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewError(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// ValidateAndUnmarshal decodes params into dest and validates it. Empty
// params give ErrMissingParams and malformed JSON gives ErrInvalidParams.
func ValidateAndUnmarshal[T any](params json.RawMessage, dest *T) error {
	if len(params) == 0 || string(params) == "null" {
		return ErrMissingParams
	}
	if err := json.Unmarshal(params, dest); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return DefaultValidator.Validate(dest)
}

// UnmarshalOptional is ValidateAndUnmarshal for methods whose params may
// be omitted entirely. dest keeps its zero value in that case.
func UnmarshalOptional[T any](params json.RawMessage, dest *T) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	return ValidateAndUnmarshal(params, dest)
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	default:
		return name
	}
}

// validatePath accepts any non-blank path without NUL bytes.
func validatePath(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	return strings.TrimSpace(val) != "" && !strings.ContainsRune(val, 0)
}

func validateDuration(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	d, err := time.ParseDuration(val)
	return err == nil && d >= 0
}

// validateTimezone accepts IANA names. Empty means host local time.
func validateTimezone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	_, err := time.LoadLocation(val)
	return err == nil
}
