package hxsite

// SwapMode is an hx-swap strategy.
type SwapMode string

const (
	// SwapOuter replaces the target element itself. This is the default.
	SwapOuter SwapMode = "outerHTML"

	// SwapInner replaces the target's children.
	SwapInner SwapMode = "innerHTML"

	// SwapBeforeEnd appends to the target's children.
	SwapBeforeEnd SwapMode = "beforeend"

	// SwapNone discards the response body; headers (events, redirects)
	// still apply.
	SwapNone SwapMode = "none"
)
