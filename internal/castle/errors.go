package castle

import "errors"

var (
	// ErrLevelNotEligible is returned when a spawn asks for a level the
	// progression gate does not currently offer.
	ErrLevelNotEligible = errors.New("castle: level not eligible")

	// ErrInvalidLevel is returned for levels outside 1..6.
	ErrInvalidLevel = errors.New("castle: invalid level")

	// ErrUnknownPart is returned for stale or unknown part handles.
	ErrUnknownPart = errors.New("castle: unknown part")

	// ErrAlreadyPlaced is returned when a placement is judged twice.
	ErrAlreadyPlaced = errors.New("castle: part already placed")
)
