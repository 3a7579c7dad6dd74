package entities

// OrderStatus is the status vocabulary used on the client side. The backend
// only knows a subset of it; see utils.ToBackendStatus for the translation.
//
// Go Learning Note — Named String Types:
// A named type over string keeps the vocabulary in one place while still
// marshalling as a plain JSON string.
type OrderStatus string

const (
	OrderStatusOpen       OrderStatus = "open"
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusAccepted   OrderStatus = "accepted"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusDelivering OrderStatus = "delivering"
	OrderStatusPickedUp   OrderStatus = "picked_up"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order is a delivery request as the backend returns it.
type Order struct {
	ID            string   `json:"request_id"`
	PostedBy      string   `json:"posted_by"`
	PosterEmail   string   `json:"poster_email"`
	PosterName    string   `json:"poster_name,omitempty"`
	PosterPhone   string   `json:"poster_phone,omitempty"`
	AcceptedBy    string   `json:"accepted_by,omitempty"`
	AcceptorEmail string   `json:"acceptor_email,omitempty"`
	AcceptorName  string   `json:"acceptor_name,omitempty"`
	AcceptorPhone string   `json:"acceptor_phone,omitempty"`
	Items         []string `json:"item"`
	PickupLoc     string   `json:"pickup_location"`
	PickupArea    string   `json:"pickup_area"`
	DropLoc       string   `json:"drop_location"`
	DropArea      string   `json:"drop_area"`
	Reward        float64  `json:"reward"`
	ItemPrice     float64  `json:"item_price"`
	BestBefore    string   `json:"time_requested"`
	Deadline      string   `json:"deadline"`
	PriorityFlag  bool     `json:"priority"`
	Status        string   `json:"status"`
	Notes         string   `json:"notes,omitempty"`
	CreatedAt     string   `json:"created_at"`
	AcceptedAt    string   `json:"accepted_at,omitempty"`
	CompletedAt   string   `json:"completed_at,omitempty"`
	IsExpired     bool     `json:"is_expired"`
}

// Priority returns "emergency" when the priority flag is set, "normal" otherwise.
func (o *Order) Priority() string {
	if o.PriorityFlag {
		return "emergency"
	}
	return "normal"
}

// CreateOrderRequest is the body of POST request/create.
type CreateOrderRequest struct {
	Items      []string `json:"item"`
	PickupLoc  string   `json:"pickup_location"`
	PickupArea string   `json:"pickup_area"`
	DropLoc    string   `json:"drop_location"`
	DropArea   string   `json:"drop_area"`
	Reward     *float64 `json:"reward,omitempty"`
	ItemPrice  float64  `json:"item_price"`
	BestBefore string   `json:"time_requested,omitempty"`
	Deadline   string   `json:"deadline"`
	Priority   bool     `json:"priority"`
	Notes      string   `json:"notes,omitempty"`
}

// AcceptOrderRequest is the body of POST request/accept.
type AcceptOrderRequest struct {
	RequestID string `json:"request_id"`
}

// UpdateOrderStatusRequest is the body of POST request/update-status.
type UpdateOrderStatusRequest struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// OrderFilter narrows GET request/all. Empty fields are not sent.
type OrderFilter struct {
	Status     string
	PickupArea string
	DropArea   string
}

// DeliveryRequest is the display projection of an Order used by listings.
type DeliveryRequest struct {
	OrderID          string  `json:"order_id"`
	Title            string  `json:"title"`
	Pickup           string  `json:"pickup"`
	Dropoff          string  `json:"dropoff"`
	Fee              string  `json:"fee"`
	Time             string  `json:"time"`
	Priority         bool    `json:"priority"`
	Details          string  `json:"details"`
	BestBefore       string  `json:"best_before"`
	Deadline         string  `json:"deadline"`
	RewardPercentage int     `json:"reward_percentage"`
	ItemPrice        float64 `json:"item_price"`
	PickupArea       string  `json:"pickup_area,omitempty"`
	DropArea         string  `json:"drop_area,omitempty"`
	Status           string  `json:"status,omitempty"`
	AcceptorEmail    string  `json:"acceptor_email,omitempty"`
	AcceptorName     string  `json:"acceptor_name,omitempty"`
	AcceptorPhone    string  `json:"acceptor_phone,omitempty"`
	RequesterEmail   string  `json:"requester_email,omitempty"`
	RequesterName    string  `json:"requester_name,omitempty"`
	RequesterPhone   string  `json:"requester_phone,omitempty"`
}
