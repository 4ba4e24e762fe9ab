package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
)

// Header signature dari provider: "t=<unix>,v1=<hex hmac-sha256>",
// HMAC dihitung atas "<t>.<raw body>" pakai shared secret.
const SignatureHeader = "Payment-Signature"

// Toleransi umur timestamp; di luar itu dianggap replay.
const signatureTolerance = 5 * time.Minute

const EventCheckoutCompleted = "checkout.session.completed"

type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object CheckoutSession `json:"object"`
	} `json:"data"`
}

// VerifySignature memeriksa otentisitas payload webhook. Harus dipanggil
// atas raw body apa adanya, sebelum body diparse sama sekali.
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	var ts string
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			sigs = append(sigs, v)
		}
	}
	if ts == "" || len(sigs) == 0 {
		return orders.Signaturef("webhook signature: malformed header")
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return orders.Signaturef("webhook signature: bad timestamp")
	}
	age := now.Sub(time.Unix(unix, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return orders.Signaturef("webhook signature: timestamp outside tolerance")
	}

	expected := Sign(payload, ts, secret)
	for _, s := range sigs {
		if hmac.Equal([]byte(s), []byte(expected)) {
			return nil
		}
	}
	return orders.Signaturef("webhook signature: no matching v1 signature")
}

// Sign menghitung hex hmac-sha256 atas "<ts>.<payload>".
// Dipakai verifikasi dan juga fixture test.
func Sign(payload []byte, ts, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureFor membentuk isi header signature utuh untuk payload.
func SignatureFor(payload []byte, secret string, now time.Time) string {
	ts := strconv.FormatInt(now.Unix(), 10)
	return fmt.Sprintf("t=%s,v1=%s", ts, Sign(payload, ts, secret))
}

func ParseEvent(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, orders.Validationf("webhook: invalid event payload")
	}
	if ev.Type == "" {
		return nil, orders.Validationf("webhook: missing event type")
	}
	return &ev, nil
}
