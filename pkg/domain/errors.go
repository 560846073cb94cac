package domain

import "errors"

// ErrUnknownActionType is returned when decoding an action whose "type" is not known.
var ErrUnknownActionType = errors.New("unknown action type")

// ErrUnknownRouterType is returned when decoding a router whose "type" is not known.
var ErrUnknownRouterType = errors.New("unknown router type")

// ErrFlowNotFound is returned when a flow uuid cannot be found in a store.
var ErrFlowNotFound = errors.New("flow not found")
