package shopify

// Shopify Admin REST API wire types. Only the fields the board needs are
// requested and decoded.

// ordersResponse is the envelope of GET /admin/api/{version}/orders.json
type ordersResponse struct {
	Orders []orderPayload `json:"orders"`
}

// orderPayload is one order row from the Admin API
type orderPayload struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	TotalPrice string           `json:"total_price"`
	CreatedAt  string           `json:"created_at"`
	Customer   *customerPayload `json:"customer"`
}

// customerPayload carries the customer display fields
type customerPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// errorResponse is the Admin API error envelope
type errorResponse struct {
	Errors interface{} `json:"errors"`
}
