package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vdmx/riskintel/internal/config"
	paymentdomain "github.com/vdmx/riskintel/internal/payment/domain"
)

func buildSignatureHeader(secret string, payload []byte, timestamp int64) string {
	signed := fmt.Sprintf("%d.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signed))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_123","type":"payment_intent.succeeded","data":{"object":{}}}`)
	ts := time.Now().Unix()

	header := http.Header{}
	header.Set("Stripe-Signature", buildSignatureHeader(secret, payload, ts))

	adapter := &Adapter{webhookSecret: secret}
	if err := adapter.Verify(context.Background(), payload, header); err != nil {
		t.Fatalf("expected valid signature, got error: %v", err)
	}

	header.Set("Stripe-Signature", buildSignatureHeader("wrong", payload, ts))
	if err := adapter.Verify(context.Background(), payload, header); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}

	header.Del("Stripe-Signature")
	if err := adapter.Verify(context.Background(), payload, header); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("missing header err = %v, want ErrInvalidSignature", err)
	}
}

func TestVerifyRejectsStaleTimestamp(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_replay","type":"payment_intent.succeeded","data":{"object":{}}}`)
	adapter := &Adapter{webhookSecret: secret}

	// A correctly signed payload replayed outside the tolerance window must
	// not verify, in either direction of clock skew.
	for _, skew := range []time.Duration{-10 * time.Minute, 10 * time.Minute} {
		ts := time.Now().Add(skew).Unix()
		header := http.Header{}
		header.Set("Stripe-Signature", buildSignatureHeader(secret, payload, ts))
		if err := adapter.Verify(context.Background(), payload, header); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
			t.Fatalf("skew %v: err = %v, want ErrInvalidSignature", skew, err)
		}
	}

	// Just inside the window still verifies.
	ts := time.Now().Add(-time.Minute).Unix()
	header := http.Header{}
	header.Set("Stripe-Signature", buildSignatureHeader(secret, payload, ts))
	if err := adapter.Verify(context.Background(), payload, header); err != nil {
		t.Fatalf("recent timestamp rejected: %v", err)
	}

	// A timestamp that is not a number never verifies.
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("soon." + string(payload)))
	header.Set("Stripe-Signature", "t=soon,v1="+hex.EncodeToString(mac.Sum(nil)))
	if err := adapter.Verify(context.Background(), payload, header); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("non-numeric timestamp err = %v, want ErrInvalidSignature", err)
	}
}

func TestParsePaymentIntentSucceeded(t *testing.T) {
	created := time.Now().UTC().Unix()
	payload, err := json.Marshal(map[string]any{
		"id":      "evt_pi",
		"type":    "payment_intent.succeeded",
		"created": created,
		"data": map[string]any{
			"object": map[string]any{
				"id":              "pi_1",
				"amount":          129900,
				"amount_received": 129900,
				"currency":        "mxn",
				"created":         created,
				"metadata": map[string]any{
					"case_id":    "CASE-4821",
					"package_id": "auto-2",
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	adapter := &Adapter{webhookSecret: "whsec_test"}
	event, err := adapter.Parse(context.Background(), payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if event.CaseID != "CASE-4821" || event.PackageID != "auto-2" {
		t.Fatalf("metadata = %s %s", event.CaseID, event.PackageID)
	}
	if event.Amount != 129900 || event.Currency != "MXN" {
		t.Fatalf("amount = %d %s", event.Amount, event.Currency)
	}
	if event.ProviderEventID != "evt_pi" {
		t.Fatalf("event id = %s", event.ProviderEventID)
	}
}

func TestParseIgnoresOtherEvents(t *testing.T) {
	adapter := &Adapter{webhookSecret: "whsec_test"}

	payload := []byte(`{"id":"evt_x","type":"charge.succeeded","data":{"object":{}}}`)
	if _, err := adapter.Parse(context.Background(), payload); !errors.Is(err, paymentdomain.ErrEventIgnored) {
		t.Fatalf("err = %v, want ErrEventIgnored", err)
	}
}

func TestParseMissingMetadata(t *testing.T) {
	adapter := &Adapter{webhookSecret: "whsec_test"}

	payload := []byte(`{"id":"evt_y","type":"payment_intent.succeeded","data":{"object":{"id":"pi_2","amount":1000,"currency":"mxn","metadata":{}}}}`)
	if _, err := adapter.Parse(context.Background(), payload); !errors.Is(err, paymentdomain.ErrMissingMetadata) {
		t.Fatalf("err = %v, want ErrMissingMetadata", err)
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	var gotForm map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk_test" {
			t.Fatalf("authorization = %q", auth)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cs_1","url":"https://checkout.stripe.com/pay/cs_1"}`)
	}))
	defer srv.Close()

	adapter := New(config.Config{
		StripeSecretKey: "sk_test",
		ClientBaseURL:   "http://localhost:3000",
	})
	adapter.apiBase = srv.URL

	redirect, err := adapter.CreateCheckoutSession(context.Background(), paymentdomain.CheckoutRequest{
		CaseID:      "CASE-7777",
		PackageID:   "auto-2",
		PackageName: "Verificación Profunda",
		Amount:      129900,
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if redirect != "https://checkout.stripe.com/pay/cs_1" {
		t.Fatalf("redirect = %s", redirect)
	}

	if got := gotForm["line_items[0][price_data][unit_amount]"]; len(got) != 1 || got[0] != "129900" {
		t.Fatalf("unit_amount = %v", got)
	}
	if got := gotForm["payment_intent_data[metadata][case_id]"]; len(got) != 1 || got[0] != "CASE-7777" {
		t.Fatalf("case metadata = %v", got)
	}
	if got := gotForm["success_url"]; len(got) != 1 || !strings.Contains(got[0], "newCase=CASE-7777") {
		t.Fatalf("success_url = %v", got)
	}
}

func TestCreateCheckoutSessionAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"error":{"message":"Your card was declined."}}`)
	}))
	defer srv.Close()

	adapter := New(config.Config{StripeSecretKey: "sk_test", ClientBaseURL: "http://localhost:3000"})
	adapter.apiBase = srv.URL

	_, err := adapter.CreateCheckoutSession(context.Background(), paymentdomain.CheckoutRequest{
		CaseID: "CASE-1", PackageID: "auto-1", Amount: 49900,
	})
	if err == nil || !strings.Contains(err.Error(), "declined") {
		t.Fatalf("err = %v, want declined message", err)
	}
}
