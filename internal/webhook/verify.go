package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hirepath/hirepath/internal/apperrors"
)

// Inbound events are signed svix-style: HMAC-SHA256 over "{id}.{timestamp}.{body}"
// keyed with the base64 portion of the endpoint secret. The signature header
// carries space-separated "v1,<base64>" entries; any matching entry verifies.

const (
	secretPrefix = "whsec_"

	// HeaderID, HeaderTimestamp and HeaderSignature are the event headers
	// set by the identity provider.
	HeaderID        = "webhook-id"
	HeaderTimestamp = "webhook-timestamp"
	HeaderSignature = "webhook-signature"
)

// Tolerance bounds the accepted clock skew between the provider's timestamp
// and local time.
const Tolerance = 5 * time.Minute

// Verifier checks event signatures for one endpoint secret.
type Verifier struct {
	key []byte
	now func() time.Time
}

func NewVerifier(secret string) (*Verifier, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, secretPrefix))
	if err != nil {
		return nil, fmt.Errorf("decode webhook secret: %w", err)
	}
	return &Verifier{key: key, now: time.Now}, nil
}

// Verify validates one delivery. Any failure (missing header, stale
// timestamp, bad signature) is an ErrUnauthenticated.
func (v *Verifier) Verify(id, timestamp, signatures string, payload []byte) error {
	if id == "" || timestamp == "" || signatures == "" {
		return fmt.Errorf("%w: missing webhook headers", apperrors.ErrUnauthenticated)
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed webhook timestamp", apperrors.ErrUnauthenticated)
	}
	age := v.now().Sub(time.Unix(ts, 0))
	if age > Tolerance || age < -Tolerance {
		return fmt.Errorf("%w: webhook timestamp outside tolerance", apperrors.ErrUnauthenticated)
	}

	want := v.Sign(id, timestamp, payload)
	for _, entry := range strings.Fields(signatures) {
		version, sig, ok := strings.Cut(entry, ",")
		if !ok || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(want)) {
			return nil
		}
	}
	return fmt.Errorf("%w: no matching webhook signature", apperrors.ErrUnauthenticated)
}

// Sign computes the base64 v1 signature for a delivery.
func (v *Verifier) Sign(id, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(id))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
