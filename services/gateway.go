package services

import (
	"context"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// OrderRequest describes a provider order to open
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]interface{}
}

// Order is the provider's view of a created order
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
	Notes    map[string]interface{}
}

// PaymentGateway is the payment provider as seen by the renewal workflow
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	FetchOrder(ctx context.Context, orderID string) (*Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

// orderResource is satisfied by the razorpay-go order resource
type orderResource interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Fetch(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayGateway talks to Razorpay. It is built once at startup and shared.
type RazorpayGateway struct {
	orders    orderResource
	keyID     string
	keySecret string
}

// NewRazorpayGateway creates a gateway backed by a razorpay-go client
func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	client := razorpay.NewClient(keyID, keySecret)
	return newRazorpayGateway(client.Order, keyID, keySecret)
}

func newRazorpayGateway(orders orderResource, keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{orders: orders, keyID: keyID, keySecret: keySecret}
}

// KeyID is the public key the browser checkout needs
func (g *RazorpayGateway) KeyID() string {
	return g.keyID
}

// VerifySignature checks a checkout callback signature
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifyPaymentSignature(orderID, paymentID, signature, g.keySecret)
}

// CreateOrder opens an order. An order abandoned because ctx ended is never
// paid and needs no cleanup.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	data := map[string]interface{}{
		"amount":          req.Amount,
		"currency":        req.Currency,
		"receipt":         req.Receipt,
		"payment_capture": 1,
	}
	if len(req.Notes) > 0 {
		data["notes"] = req.Notes
	}

	body, err := call(ctx, func() (map[string]interface{}, error) {
		return g.orders.Create(data, nil)
	})
	if err != nil {
		return nil, err
	}

	order, err := orderFromBody(body)
	if err != nil {
		return nil, err
	}
	if order.Amount != 0 && order.Amount != req.Amount {
		return nil, fmt.Errorf("provider order amount %d does not match requested %d", order.Amount, req.Amount)
	}
	order.Amount = req.Amount
	order.Currency = req.Currency
	order.Receipt = req.Receipt
	if order.Notes == nil {
		order.Notes = req.Notes
	}
	return order, nil
}

// FetchOrder reads an order back from the provider, notes included
func (g *RazorpayGateway) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	if orderID == "" {
		return nil, errors.New("order id is required")
	}
	body, err := call(ctx, func() (map[string]interface{}, error) {
		return g.orders.Fetch(orderID, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	return orderFromBody(body)
}

// call runs a provider request. The razorpay client has no context support,
// so the request runs in its own goroutine and is abandoned if ctx ends first.
func call(ctx context.Context, fn func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		body map[string]interface{}
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, err := fn()
		done <- result{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.body, res.err
	}
}

func orderFromBody(body map[string]interface{}) (*Order, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, errors.New("provider response has no order id")
	}
	order := &Order{ID: id}
	if amount, ok := body["amount"].(float64); ok {
		order.Amount = int64(amount)
	}
	order.Currency, _ = body["currency"].(string)
	order.Receipt, _ = body["receipt"].(string)
	order.Status, _ = body["status"].(string)
	// an order without notes comes back with an empty JSON array
	order.Notes, _ = body["notes"].(map[string]interface{})
	return order, nil
}
