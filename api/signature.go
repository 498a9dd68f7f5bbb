package api

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/zkballot/crypto/ethereum"
	"github.com/vocdoni/zkballot/util"
)

const (
	// TimestampHeader carries the unix time, in seconds, of a signed request.
	TimestampHeader = "X-Zkballot-Timestamp"
	// NonceHeader carries a random hex string, so that identical requests
	// signed within the same second are told apart from replays.
	NonceHeader = "X-Zkballot-Nonce"
	// SignatureHeader carries the hex encoded signature of a request.
	SignatureHeader = "X-Zkballot-Signature"

	// DefaultSignatureWindow is how far the timestamp of a signed request may
	// be from the server clock.
	DefaultSignatureWindow = 5 * time.Minute

	maxBodySize = 1 << 20
	nonceSize   = 16
)

type callerKey struct{}

// SignedMessage returns the bytes signed by the caller of a request.
func SignedMessage(method, path, timestamp, nonce string, body []byte) []byte {
	msg := make([]byte, 0, len(method)+len(path)+len(timestamp)+len(nonce)+len(body)+4)
	for _, field := range []string{method, path, timestamp, nonce} {
		msg = append(msg, field...)
		msg = append(msg, '\n')
	}
	return append(msg, body...)
}

// SignRequest sets the signature headers of req, whose body is body, with
// the keys of the caller.
func SignRequest(req *http.Request, body []byte, keys *ethereum.SignKeys, now time.Time) error {
	ts := strconv.FormatInt(now.Unix(), 10)
	nonce := hex.EncodeToString(util.RandomBytes(nonceSize))
	sig, err := keys.SignEthereum(SignedMessage(req.Method, req.URL.Path, ts, nonce, body))
	if err != nil {
		return err
	}
	req.Header.Set(TimestampHeader, ts)
	req.Header.Set(NonceHeader, nonce)
	req.Header.Set(SignatureHeader, hex.EncodeToString(sig))
	return nil
}

// Caller returns the address that signed the request, set by the
// authentication middleware.
func Caller(ctx context.Context) (common.Address, bool) {
	addr, ok := ctx.Value(callerKey{}).(common.Address)
	return addr, ok
}

// authenticate recovers the caller of a signed request and puts it in the
// request context. Requests with a stale timestamp or a signature already
// seen are rejected.
func (a *API) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			ErrMalformedBody.WithErr(err).Write(w)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		ts := r.Header.Get(TimestampHeader)
		nonce := r.Header.Get(NonceHeader)
		sigHex := r.Header.Get(SignatureHeader)
		if ts == "" || nonce == "" || sigHex == "" {
			ErrUnauthenticated.With("missing signature headers").Write(w)
			return
		}
		unix, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			ErrInvalidSignature.Withf("malformed timestamp %q", ts).Write(w)
			return
		}
		if d := a.now().Sub(time.Unix(unix, 0)).Abs(); d > a.signatureWindow {
			ErrExpiredSignature.Withf("%s off", d).Write(w)
			return
		}
		sig, err := hex.DecodeString(util.TrimHex(sigHex))
		if err != nil {
			ErrInvalidSignature.WithErr(err).Write(w)
			return
		}
		msg := SignedMessage(r.Method, r.URL.Path, ts, nonce, body)
		caller, err := ethereum.AddrFromSignature(msg, sig)
		if err != nil {
			ErrInvalidSignature.WithErr(err).Write(w)
			return
		}
		// keyed by signer and message, since a signature may have more than
		// one valid encoding
		if !a.markSeen(fmt.Sprintf("%x%x", caller, ethereum.Hash(msg)), unix) {
			ErrReplayedRequest.Write(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, caller)))
	})
}

// markSeen records a signed request and reports whether it was new. The
// key covers the timestamp, and requests older than the window are rejected
// before reaching here, so the cache only needs to hold one window.
func (a *API) markSeen(key string, unix int64) bool {
	found, _ := a.seen.ContainsOrAdd(key, unix)
	return !found
}
