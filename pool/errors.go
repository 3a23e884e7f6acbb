package pool

import "github.com/cockroachdb/errors"

// ErrInvalidOrder is returned by Construct when minOrder/maxOrder fail the
// constraints in the data model: 0 < minOrder < maxOrder <= maxSupportedOrder.
var ErrInvalidOrder error = errors.New("pool: invalid minOrder/maxOrder")

// ErrMinOrderTooSmall is returned by Construct when a block at minOrder
// could not hold a Header plus at least one usable byte.
var ErrMinOrderTooSmall error = errors.New("pool: minOrder too small to hold a header and a usable byte")

// ErrBackingAllocFailed is returned by Construct when the host could not
// provide the backing region (surfaced so callers can treat it as a
// configuration error, per the error handling design).
var ErrBackingAllocFailed error = errors.New("pool: failed to allocate backing region")
