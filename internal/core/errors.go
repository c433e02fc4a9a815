package core

import "errors"

// Input-contract violations. Infeasibility is never reported through these.
var (
	ErrUnknownNode     = errors.New("node not in graph")
	ErrInvalidPolygon  = errors.New("polygon needs at least 3 vertices")
	ErrInvalidWindow   = errors.New("invalid time window")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrInvalidDrone    = errors.New("invalid drone")
	ErrInvalidDelivery = errors.New("invalid delivery")
)
