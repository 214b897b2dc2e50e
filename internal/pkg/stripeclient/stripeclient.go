// Package stripeclient adapts the Stripe API to the payment provider
// contract used by the payment workflow.
package stripeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
	"github.com/stripe/stripe-go/v72/webhook"

	"github.com/buddyshare/buddyshare-api/internal/service"
)

type Client struct {
	api           *client.API
	webhookSecret string
}

func New(secretKey, webhookSecret string) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &Client{
		api:           api,
		webhookSecret: webhookSecret,
	}
}

// EnsureCustomer reuses an existing customer with the given email, and
// creates one otherwise.
func (c *Client) EnsureCustomer(ctx context.Context, email, name string) (string, error) {
	listParams := &stripe.CustomerListParams{}
	listParams.Context = ctx
	listParams.Filters.AddFilter("email", "", email)
	listParams.Filters.AddFilter("limit", "", "1")

	iter := c.api.Customers.List(listParams)
	for iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("stripe customer list: %w", err)
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx

	customer, err := c.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe customer create: %w", err)
	}

	return customer.ID, nil
}

func (c *Client) CreateIntent(ctx context.Context, customerID string, amountMinor int64, currency string, metadata map[string]string) (service.ProviderIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountMinor),
		Currency:           stripe.String(currency),
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	intent, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return service.ProviderIntent{}, fmt.Errorf("stripe intent create: %w", err)
	}

	return toProviderIntent(intent), nil
}

func (c *Client) RetrieveIntent(ctx context.Context, id string) (service.ProviderIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := c.api.PaymentIntents.Get(id, params)
	if err != nil {
		return service.ProviderIntent{}, fmt.Errorf("stripe intent retrieve: %w", err)
	}

	return toProviderIntent(intent), nil
}

// ConstructWebhookEvent verifies the delivery signature and extracts the
// payment intent reference from the payload.
func (c *Client) ConstructWebhookEvent(payload []byte, signature string) (service.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, c.webhookSecret)
	if err != nil {
		return service.WebhookEvent{}, fmt.Errorf("%w: %v", service.ErrWebhookSignature, err)
	}

	out := service.WebhookEvent{Type: event.Type}

	// Charge events carry a ch_ object whose payment_intent field points
	// back at the intent; everything else is the intent itself.
	if strings.HasPrefix(event.Type, "charge.") {
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return service.WebhookEvent{}, fmt.Errorf("stripe webhook charge payload: %w", err)
		}
		if charge.PaymentIntent != nil {
			out.IntentID = charge.PaymentIntent.ID
		}
		out.ReceiptURL = charge.ReceiptURL

		return out, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return service.WebhookEvent{}, fmt.Errorf("stripe webhook intent payload: %w", err)
	}
	out.IntentID = intent.ID
	out.ReceiptURL = receiptURL(&intent)

	return out, nil
}

func toProviderIntent(intent *stripe.PaymentIntent) service.ProviderIntent {
	return service.ProviderIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
		AmountMinor:  intent.Amount,
		Currency:     string(intent.Currency),
		ReceiptURL:   receiptURL(intent),
	}
}

func receiptURL(intent *stripe.PaymentIntent) string {
	if intent.Charges == nil || len(intent.Charges.Data) == 0 {
		return ""
	}

	return intent.Charges.Data[0].ReceiptURL
}
