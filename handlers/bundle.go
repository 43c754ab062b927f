package handlers

// HandlerBundle groups the endpoint handlers the router needs.
type HandlerBundle struct {
	Availability *AvailabilityHandler
	Booking      *BookingHandler
	Cancellation *CancellationHandler
}
