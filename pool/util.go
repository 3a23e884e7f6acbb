package pool

import cerrors "github.com/cockroachdb/errors"

// maxSupportedOrder is the implementation sanity bound from the data model:
// maxOrder <= 30. It is not a theoretical limit.
const maxSupportedOrder = 30

// checkOrders validates the (minOrder, maxOrder) constraint and returns a
// wrapped ErrInvalidOrder describing which part of the constraint failed.
func checkOrders(minOrder, maxOrder int) error {
	if minOrder <= 0 {
		return cerrors.Wrapf(ErrInvalidOrder, "minOrder must be > 0, got %d", minOrder)
	}
	if maxOrder > maxSupportedOrder {
		return cerrors.Wrapf(ErrInvalidOrder, "maxOrder must be <= %d, got %d", maxSupportedOrder, maxOrder)
	}
	if minOrder >= maxOrder {
		return cerrors.Wrapf(ErrInvalidOrder, "minOrder (%d) must be < maxOrder (%d)", minOrder, maxOrder)
	}
	return nil
}

// sizeToOrder returns the smallest order o in [minOrder, maxOrder] such that
// 2^o >= n + headerSize, or maxOrder when no order in range is large enough.
// The caller must separately check that 2^o >= n + headerSize for the
// returned order before trusting the result, since this function clamps
// rather than fails (mirroring the reference implementation's
// sizeToOrder, which the spec calls out as ambiguous on this exact point).
func sizeToOrder(n, headerSize, minOrder, maxOrder int) int {
	if n <= 0 {
		n = 1
	}

	required := n + headerSize
	order := minOrder
	for order < maxOrder && (1<<uint(order)) < required {
		order++
	}
	return order
}
