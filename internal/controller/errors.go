package controller

import (
	"errors"
	"net/http"
	"strings"
	"waseet-api/internal/lifecycle"
	"waseet-api/internal/service"

	"github.com/labstack/echo"
)

// serviceError maps a service failure onto its response.
func serviceError(c echo.Context, err error) error {
	var validationErr *lifecycle.ValidationError
	if errors.As(err, &validationErr) {
		if e := c.JSON(http.StatusUnprocessableEntity, validationErrorResponse{
			Reason:  validationErr.Error(),
			Missing: validationErr.Missing,
		}); e != nil {
			return e
		}

		return err
	}

	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		return fail(c, http.StatusNotFound, "There is no request with given id", err)
	case errors.Is(err, service.ErrOrderNotFound):
		return fail(c, http.StatusNotFound, "There is no order with given id", err)
	case errors.Is(err, service.ErrNoPublicListing), errors.Is(err, service.ErrNotRequestDomain), errors.Is(err, lifecycle.ErrUnknownDomain):
		return fail(c, http.StatusNotFound, "Unknown request domain", err)
	case errors.Is(err, lifecycle.ErrUnknownStatus):
		return fail(c, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, lifecycle.ErrBackwardTransition), errors.Is(err, lifecycle.ErrTerminalStatus):
		return fail(c, http.StatusConflict, err.Error(), err)
	case errors.Is(err, service.ErrAssignmentNotAllowed), errors.Is(err, service.ErrInvalidCart):
		return fail(c, http.StatusBadRequest, err.Error(), err)
	}

	return fail(c, http.StatusInternalServerError, "Error", err)
}

// domainParam accepts both "blood_donor" and "blood-donor" spellings.
func domainParam(c echo.Context) (lifecycle.Domain, error) {
	domain, err := lifecycle.ParseDomain(c.Param("domain"))
	if err == nil {
		return domain, nil
	}

	return lifecycle.ParseDomain(strings.ReplaceAll(c.Param("domain"), "-", "_"))
}
