package ledger

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Signer hands a built transaction to an external signer, submits it and
// waits for ledger finality. Once SignAndSubmit has been issued the attempt
// can no longer be cancelled; callers must wait out a terminal outcome.
type Signer interface {
	SignAndSubmit(ctx context.Context, tx *Transaction) (*SubmissionResult, error)
}

type nodeSigner struct {
	client *Client
}

// NewNodeSigner returns a Signer that delegates signing to the ledger
// node's wallet endpoint. Production deployments inject a remote signer
// instead.
func NewNodeSigner(client *Client) Signer {
	return &nodeSigner{client: client}
}

func (s *nodeSigner) SignAndSubmit(ctx context.Context, tx *Transaction) (*SubmissionResult, error) {
	var result SubmissionResult
	err := s.client.Call(ctx, "market_signAndSubmit", []interface{}{tx}, &result)
	if err == nil {
		return &result, nil
	}

	// Transport failures after submission may have reached the node; the
	// outcome is unknown, not failed.
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &SubmissionResult{Status: StatusIndeterminate}, nil
	}

	return nil, fmt.Errorf("failed to submit transaction: %w", err)
}
