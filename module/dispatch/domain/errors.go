package domain

import "errors"

var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrInvalidSteps      = errors.New("total steps must be positive")
	ErrAlreadyCompleted  = errors.New("simulation already completed")

	ErrRunNotFound = errors.New("tracking run not found")
	ErrRunExists   = errors.New("tracking run already active")

	ErrUnknownAmbulanceType = errors.New("unknown ambulance type")
	ErrInvalidRequest       = errors.New("invalid dispatch request")
	ErrDispatchNotFound     = errors.New("dispatch not found")
	ErrDispatchClosed       = errors.New("dispatch already closed")
)
