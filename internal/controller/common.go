package controller

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

const (
	defaultLimit  = 20
	defaultOffset = 0
)

type errorResponse struct {
	Reason string `json:"reason"`
}

type validationErrorResponse struct {
	Reason  string   `json:"reason"`
	Missing []string `json:"missing"`
}

// fail writes the error body and hands err back to echo, which skips an
// already committed response.
func fail(c echo.Context, status int, reason string, err error) error {
	if e := c.JSON(status, errorResponse{reason}); e != nil {
		return e
	}

	return err
}

func bindAndValidate(c echo.Context, v *validator.Validate, input any) error {
	if err := c.Bind(input); err != nil {
		return fail(c, http.StatusBadRequest, "Input data is not formed correctly", err)
	}

	if err := v.Struct(input); err != nil {
		return fail(c, http.StatusBadRequest, getAllErrorMessages(err), err)
	}

	return nil
}

func getAllErrorMessages(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	var builder strings.Builder
	for _, fe := range validationErrors {
		message := fmt.Sprintf("'%s': %s\n", fe.Field(), getMessage(fe))
		builder.WriteString(message)
	}

	return builder.String()
}

func getMessage(fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.String:
		return getMessageForString(fe)
	case reflect.Int, reflect.Int32, reflect.Int64, reflect.Float32, reflect.Float64:
		return getMessageForNumber(fe)
	case reflect.Bool:
		if fe.Tag() == "eq" {
			return "should be " + fe.Param()
		}
	case reflect.Slice:
		return getMessageForSlice(fe)
	}

	return "incorrect value passed"
}

func getMessageForNumber(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "lte", "max":
		return "should be less or equal than " + fe.Param()
	case "gte", "min":
		return "should be greater or equal than " + fe.Param()
	case "gt":
		return "should be greater than " + fe.Param()
	}

	return "incorrect value passed"
}

func getMessageForString(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "lte", "max":
		return "length should be less or equal than " + fe.Param()
	case "gte", "min":
		return "length should be greater or equal than " + fe.Param()
	case "len":
		return "length should be equal to " + fe.Param()
	case "oneof":
		return "should have value in: " + fe.Param()
	case "email":
		return "should be an email address"
	case "url":
		return "should be an absolute URL"
	case "datetime":
		return "should be a date formatted as " + fe.Param()
	case "nefield":
		return "should differ from " + fe.Param()
	case "uuid":
		return "should be a uuid"
	}

	return "incorrect value passed"
}

func getMessageForSlice(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "min":
		return "should contain at least one value"
	case "max":
		return "should contain at most " + fe.Param() + " values"
	}

	return "incorrect value passed"
}
