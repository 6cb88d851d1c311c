package service

import "errors"

var (
	ErrInvalidCustomerInfo = errors.New("invalid customer info")
	ErrSessionUnavailable  = errors.New("session store unavailable")
	ErrNoOrder             = errors.New("no completed order in this session")
	ErrUnauthorized        = errors.New("admin sign-in required")
)
