package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
)

// Client bicara ke REST API provider (form-encoded request, JSON response,
// bearer key). Semua error dipetakan ke KindExternal; caller yang memutuskan
// fatal (checkout) atau logged-only (refund).
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) CreateCheckoutSession(ctx context.Context, p CreateSessionParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	for i, it := range p.Items {
		form.Set(fmt.Sprintf("line_items[%d][price]", i), it.PriceRef)
		form.Set(fmt.Sprintf("line_items[%d][quantity]", i), strconv.Itoa(it.Quantity))
	}
	if p.CustomerEmail != "" {
		form.Set("customer_email", p.CustomerEmail)
	}
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	for k, v := range p.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var ses CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &ses); err != nil {
		return nil, err
	}
	return &ses, nil
}

func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	var ses CheckoutSession
	if err := c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(sessionID), nil, &ses); err != nil {
		return nil, err
	}
	return &ses, nil
}

func (c *Client) ListLineItems(ctx context.Context, sessionID string) ([]LineItem, error) {
	var out struct {
		Data []struct {
			Quantity       int   `json:"quantity"`
			AmountSubtotal int64 `json:"amount_subtotal"`
			Price          struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	}
	path := "/v1/checkout/sessions/" + url.PathEscape(sessionID) + "/line_items"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	items := make([]LineItem, 0, len(out.Data))
	for _, d := range out.Data {
		items = append(items, LineItem{PriceRef: d.Price.ID, Quantity: d.Quantity, AmountSubtotal: d.AmountSubtotal})
	}
	return items, nil
}

func (c *Client) CreateRefund(ctx context.Context, paymentIntentID string) (*Refund, error) {
	form := url.Values{}
	form.Set("payment_intent", paymentIntentID)
	var rf Refund
	if err := c.do(ctx, http.MethodPost, "/v1/refunds", form, &rf); err != nil {
		return nil, err
	}
	return &rf, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return orders.Externalf(err, "payment gateway: build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return orders.Externalf(err, "payment gateway: %s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return orders.Externalf(err, "payment gateway: read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		msg := apiErr.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return orders.Externalf(nil, "payment gateway: %s %s: %d %s", method, path, resp.StatusCode, msg)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return orders.Externalf(err, "payment gateway: decode response")
		}
	}
	return nil
}
