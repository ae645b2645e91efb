package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Event validation errors (rejected at write time, never stored)
var (
	ErrUnknownEventKind    = errors.New("unknown event kind")
	ErrMagnitudeOutOfRange = errors.New("magnitude outside allowed range for kind")
	ErrEventInFuture       = errors.New("event timestamp is in the future")
	ErrEventMemberNotFound = errors.New("member not found for event")
)

// Vouch errors (rejected, no partial state change)
var (
	ErrVouchNotFound        = errors.New("vouch not found")
	ErrNotAnElder           = errors.New("issuer tier does not permit vouching")
	ErrVouchQuotaExceeded   = errors.New("elder has reached max concurrent vouches")
	ErrVouchPointsTooHigh   = errors.New("points exceed elder's per-vouch limit")
	ErrVouchCapReached      = errors.New("recipient active vouch points cap reached")
	ErrVouchNotActive       = errors.New("vouch is not active")
	ErrVouchRevokeForbidden = errors.New("only the issuing elder or an admin may revoke")
	ErrSelfVouch            = errors.New("members cannot vouch for themselves")
)

// Endorsement errors
var (
	ErrSelfEndorsement      = errors.New("members cannot endorse themselves")
	ErrNoSharedCircleTenure = errors.New("endorser lacks required shared circle tenure")
	ErrDuplicateEndorsement = errors.New("endorsement already given in this circle")
)

// Score errors
var (
	ErrMemberNotFound = errors.New("member not found")
	ErrStaleData      = errors.New("score data unavailable and no cached snapshot exists")
)
