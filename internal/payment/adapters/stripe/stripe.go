// Package stripe talks to Stripe directly over its HTTP API: hosted
// checkout sessions out, signed webhooks in. No SDK; the surface we need
// is two endpoints and an HMAC.
package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vdmx/riskintel/internal/config"
	paymentdomain "github.com/vdmx/riskintel/internal/payment/domain"
)

const defaultAPIBase = "https://api.stripe.com"

// signatureTolerance bounds how old a signed webhook may be. Outside the
// window a captured payload with a once-valid signature replays cleanly,
// so the timestamp is part of what Verify checks.
const signatureTolerance = 5 * time.Minute

type Adapter struct {
	secretKey     string
	webhookSecret string
	clientBaseURL string
	apiBase       string
	httpClient    *http.Client
	now           func() time.Time
}

func New(cfg config.Config) *Adapter {
	return &Adapter{
		secretKey:     cfg.StripeSecretKey,
		webhookSecret: cfg.StripeWebhookSecret,
		clientBaseURL: cfg.ClientBaseURL,
		apiBase:       defaultAPIBase,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		now:           time.Now,
	}
}

type sessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *Adapter) CreateCheckoutSession(ctx context.Context, req paymentdomain.CheckoutRequest) (string, error) {
	name := req.PackageName
	if name == "" {
		name = "Risk Analysis Package"
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", "mxn")
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.Amount, 10))
	form.Set("line_items[0][price_data][product_data][name]", name)
	form.Set("line_items[0][price_data][product_data][metadata][package_id]", req.PackageID)
	form.Set("success_url", fmt.Sprintf("%s/#/dashboard?newCase=%s&pkg=%s&success=true", a.clientBaseURL, req.CaseID, req.PackageID))
	form.Set("cancel_url", fmt.Sprintf("%s/#/checkout/%s?canceled=true", a.clientBaseURL, req.PackageID))
	form.Set("payment_intent_data[metadata][case_id]", req.CaseID)
	form.Set("payment_intent_data[metadata][package_id]", req.PackageID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiBase+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.secretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("stripe checkout session: %s", apiErr.Error.Message)
		}
		return "", fmt.Errorf("stripe checkout session: status %d", resp.StatusCode)
	}

	var session sessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return "", err
	}
	if session.URL == "" {
		return "", errors.New("stripe checkout session: missing redirect url")
	}
	return session.URL, nil
}

func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	sigHeader := strings.TrimSpace(headers.Get("Stripe-Signature"))
	if sigHeader == "" {
		return paymentdomain.ErrInvalidSignature
	}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return paymentdomain.ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return paymentdomain.ErrInvalidSignature
	}
	nowFn := a.now
	if nowFn == nil {
		nowFn = time.Now
	}
	if age := nowFn().Sub(time.Unix(ts, 0)); age > signatureTolerance || age < -signatureTolerance {
		return paymentdomain.ErrInvalidSignature
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(a.webhookSecret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}

	return paymentdomain.ErrInvalidSignature
}

type stripeEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Created int64           `json:"created"`
	Data    stripeEventData `json:"data"`
}

type stripeEventData struct {
	Object json.RawMessage `json:"object"`
}

type stripePaymentIntent struct {
	ID             string            `json:"id"`
	Amount         int64             `json:"amount"`
	AmountReceived int64             `json:"amount_received"`
	Currency       string            `json:"currency"`
	Created        int64             `json:"created"`
	Metadata       map[string]string `json:"metadata"`
}

func (a *Adapter) Parse(ctx context.Context, payload []byte) (*paymentdomain.Event, error) {
	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	if strings.TrimSpace(event.Type) != "payment_intent.succeeded" {
		return nil, paymentdomain.ErrEventIgnored
	}

	var intent stripePaymentIntent
	if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}

	caseID := strings.TrimSpace(intent.Metadata["case_id"])
	packageID := strings.TrimSpace(intent.Metadata["package_id"])
	if caseID == "" || packageID == "" {
		return nil, paymentdomain.ErrMissingMetadata
	}

	amount := intent.AmountReceived
	if amount <= 0 {
		amount = intent.Amount
	}

	return &paymentdomain.Event{
		Provider:        "stripe",
		ProviderEventID: event.ID,
		PaymentID:       intent.ID,
		CaseID:          caseID,
		PackageID:       packageID,
		Amount:          amount,
		Currency:        strings.ToUpper(strings.TrimSpace(intent.Currency)),
		OccurredAt:      timestamp(intent.Created, event.Created),
		RawPayload:      payload,
	}, nil
}

func parseSignatureHeader(header string) (string, []string, error) {
	parts := strings.Split(header, ",")
	var timestamp string
	signatures := []string{}
	for _, part := range parts {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "t" {
			timestamp = value
		}
		if key == "v1" {
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, errors.New("invalid_signature")
	}
	return timestamp, signatures, nil
}

func timestamp(primary int64, fallback int64) time.Time {
	value := primary
	if value == 0 {
		value = fallback
	}
	if value == 0 {
		return time.Now().UTC()
	}
	return time.Unix(value, 0).UTC()
}
