package webhook

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

func newTestVerifier(t *testing.T, at time.Time) *Verifier {
	t.Helper()
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)
	v.now = func() time.Time { return at }
	return v
}

func TestVerifyKnownSignature(t *testing.T) {
	// Reference vector from the svix documentation.
	id := "msg_p5jXN8AQM9LWM0D4loKWxJek"
	timestamp := "1614265330"
	payload := []byte(`{"test": 2432232314}`)
	want := "v1,g0hM9SsE+OTPJTGt/tmIKtSyZlE3uFJELVlNIOLJ1OE="

	v := newTestVerifier(t, time.Unix(1614265330, 0))
	assert.Equal(t, "g0hM9SsE+OTPJTGt/tmIKtSyZlE3uFJELVlNIOLJ1OE=", v.Sign(id, timestamp, payload))
	assert.NoError(t, v.Verify(id, timestamp, want, payload))
}

func TestVerifyMultipleEntries(t *testing.T) {
	at := time.Unix(1700000000, 0)
	v := newTestVerifier(t, at)
	ts := strconv.FormatInt(at.Unix(), 10)
	payload := []byte(`{"type":"user.created"}`)
	good := "v1," + v.Sign("msg_1", ts, payload)

	// Rotated secrets produce several entries; one match is enough. Unknown
	// versions are skipped.
	assert.NoError(t, v.Verify("msg_1", ts, "v1,Zm9v "+good+" v2,YmFy", payload))
}

func TestVerifyRejections(t *testing.T) {
	at := time.Unix(1700000000, 0)
	v := newTestVerifier(t, at)
	ts := strconv.FormatInt(at.Unix(), 10)
	payload := []byte(`{}`)
	good := "v1," + v.Sign("msg_1", ts, payload)

	assert.Error(t, v.Verify("", ts, good, payload))
	assert.Error(t, v.Verify("msg_1", "", good, payload))
	assert.Error(t, v.Verify("msg_1", ts, "", payload))
	assert.Error(t, v.Verify("msg_1", "not-a-number", good, payload))

	// Tampered payload.
	assert.Error(t, v.Verify("msg_1", ts, good, []byte(`{"x":1}`)))
	// Signature computed for a different message id.
	assert.Error(t, v.Verify("msg_2", ts, good, payload))
	// Unknown version only.
	assert.Error(t, v.Verify("msg_1", ts, "v2,"+v.Sign("msg_1", ts, payload), payload))
}

func TestVerifyTimestampTolerance(t *testing.T) {
	at := time.Unix(1700000000, 0)
	v := newTestVerifier(t, at)
	payload := []byte(`{}`)

	sign := func(offset time.Duration) (string, string) {
		ts := strconv.FormatInt(at.Add(offset).Unix(), 10)
		return ts, "v1," + v.Sign("msg_1", ts, payload)
	}

	ts, sig := sign(-4 * time.Minute)
	assert.NoError(t, v.Verify("msg_1", ts, sig, payload))
	ts, sig = sign(4 * time.Minute)
	assert.NoError(t, v.Verify("msg_1", ts, sig, payload))

	ts, sig = sign(-6 * time.Minute)
	assert.Error(t, v.Verify("msg_1", ts, sig, payload))
	ts, sig = sign(6 * time.Minute)
	assert.Error(t, v.Verify("msg_1", ts, sig, payload))
}

func TestNewVerifierBadSecret(t *testing.T) {
	_, err := NewVerifier("whsec_!!!not-base64!!!")
	assert.Error(t, err)
}
