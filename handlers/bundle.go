package handlers

// HandlerBundle groups the HTTP handlers so route registration receives one
// dependency instead of many.
type HandlerBundle struct {
	Auth         *AuthHandler
	Reservations *ReservationHandler
	Payments     *PaymentHandler
	PriceSchemes *PriceSchemeHandler
	Bunq         *BunqHandler
}
