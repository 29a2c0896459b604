package signer

import (
	"context"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pilacorp/go-ssi-sdk/crypto/schnorr"
	"github.com/pilacorp/go-ssi-sdk/log"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultRemoteTimeout bounds one remote signing request.
const DefaultRemoteTimeout = 10 * time.Second

// RemoteSigner is a signer that signs a payload using a remote API.
//
// The API receives {"payload_hex": "<hex>"} and answers
// {"signature_hex": "<128 hex chars>"}. The key never leaves the remote
// service, so the public key is configured alongside the endpoint.
type RemoteSigner struct {
	endpoint  string
	apiKey    string
	publicKey string
	address   string
	client    *resty.Client
}

type remoteSignRequest struct {
	PayloadHex string `json:"payload_hex"`
}

type remoteSignResponse struct {
	SignatureHex string `json:"signature_hex"`
}

// NewRemoteSigner creates a new RemoteSigner.
func NewRemoteSigner(endpoint, apiKey, publicKey string) (SignerProvider, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("endpoint required")
	}
	address, err := AddressOf(publicKey)
	if err != nil {
		return nil, err
	}

	client := resty.New().
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetTimeout(DefaultRemoteTimeout).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetHeader("x-api-key", apiKey)
	}

	return &RemoteSigner{
		endpoint:  endpoint,
		apiKey:    apiKey,
		publicKey: strings.ToLower(publicKey),
		address:   address,
		client:    client,
	}, nil
}

// Sign signs a payload using the remote API.
func (s *RemoteSigner) Sign(payload []byte) ([]byte, error) {
	return s.SignContext(context.Background(), payload)
}

// SignContext is Sign bound to ctx.
func (s *RemoteSigner) SignContext(ctx context.Context, payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, errors.New("payload is empty")
	}

	requestID := uuid.New().String()
	log.L(ctx).WithField("requestId", requestID).Debugf("Requesting remote signature for %d bytes", len(payload))

	var out remoteSignResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("X-Request-Id", requestID).
		SetBody(remoteSignRequest{PayloadHex: hex.EncodeToString(payload)}).
		SetResult(&out).
		Post(s.endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "remote signer request failed")
	}
	if resp.IsError() {
		return nil, errors.Errorf("remote signer http %d", resp.StatusCode())
	}

	sig, err := hex.DecodeString(strings.TrimPrefix(out.SignatureHex, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid signature hex")
	}
	if len(sig) != schnorr.SignatureSize {
		return nil, errors.Errorf("invalid signature length %d", len(sig))
	}
	return sig, nil
}

func (s *RemoteSigner) PublicKey() string {
	return s.publicKey
}

func (s *RemoteSigner) GetAddress() string {
	return s.address
}
