package domain

import "errors"

var (
	ErrRequestNotEligible  = errors.New("request not eligible for evaluation")
	ErrInvalidNotification = errors.New("invalid notification")
)
