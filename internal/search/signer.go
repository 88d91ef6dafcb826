// Where: cli/internal/search/signer.go
// What: SigV4 request signing for collection calls.
// Why: Keep credential handling out of the provisioner; inject a sender instead.
package search

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

// serviceName is the signing name of the managed vector-search service.
const serviceName = "aoss"

// emptyPayloadHash is the SHA-256 of a zero-length body.
const emptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// SigV4Sender signs requests with the resolved AWS credentials and sends
// them over a plain HTTP client. It performs no retries.
type SigV4Sender struct {
	Client      *http.Client
	Credentials aws.CredentialsProvider
	Region      string
	Signer      *v4.Signer
	Now         func() time.Time
}

// NewSigV4Sender wires a sender from a loaded AWS config.
func NewSigV4Sender(cfg aws.Config) *SigV4Sender {
	return &SigV4Sender{
		Client:      &http.Client{Timeout: 30 * time.Second},
		Credentials: cfg.Credentials,
		Region:      cfg.Region,
		Signer:      v4.NewSigner(),
		Now:         time.Now,
	}
}

// Send signs the request and executes it once.
func (s *SigV4Sender) Send(ctx context.Context, req *http.Request) (*http.Response, error) {
	if s.Credentials == nil {
		return nil, fmt.Errorf("credentials provider not configured")
	}
	if s.Region == "" {
		return nil, fmt.Errorf("signing region not configured")
	}

	creds, err := s.Credentials.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve credentials: %w", err)
	}

	payloadHash, err := hashPayload(req)
	if err != nil {
		return nil, err
	}

	now := s.Now
	if now == nil {
		now = time.Now
	}
	signer := s.Signer
	if signer == nil {
		signer = v4.NewSigner()
	}
	if err := signer.SignHTTP(ctx, creds, req, payloadHash, serviceName, s.Region, now().UTC()); err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	return client.Do(req)
}

// hashPayload computes the SigV4 payload hash and restores the request body
// so the client can still send it.
func hashPayload(req *http.Request) (string, error) {
	if req.Body == nil {
		return emptyPayloadHash, nil
	}

	data, err := io.ReadAll(req.Body)
	if err != nil {
		return "", fmt.Errorf("read request body: %w", err)
	}
	if err := req.Body.Close(); err != nil {
		return "", err
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.ContentLength = int64(len(data))

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
