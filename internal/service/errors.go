package service

import "errors"

var (
	ErrRequestNotFound = errors.New("request not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrDonorNotFound   = errors.New("no blood donor with given id and phone")

	ErrNoPublicListing      = errors.New("domain has no public listing")
	ErrNotRequestDomain     = errors.New("not a request domain")
	ErrAssignmentNotAllowed = errors.New("agent assignment is only accepted on import requests")
	ErrInvalidCart          = errors.New("invalid cart")
)
