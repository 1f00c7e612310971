package complaints

import "errors"

var (
	// ErrReasonRequired rejects a complaint filed without a reason.
	ErrReasonRequired = errors.New("complaint reason is required")

	// ErrResolutionNoteTooShort rejects a resolution whose note is under
	// the 10-character rationale minimum.
	ErrResolutionNoteTooShort = errors.New("resolution note must be at least 10 characters")

	// ErrComplaintNotFound is returned when the referenced complaint id
	// does not exist.
	ErrComplaintNotFound = errors.New("complaint not found")

	// ErrOptimizationNotFound is returned when the referenced optimization
	// id does not exist.
	ErrOptimizationNotFound = errors.New("optimization not found")

	// ErrNetworkNotFound is returned when the referenced network id does
	// not exist.
	ErrNetworkNotFound = errors.New("seo network not found")
)
