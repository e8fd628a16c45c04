// Package ledger holds the client for the external identity ledger. The
// ledger is an opaque collaborator: this gateway consults it as the source
// of public-key identities but does not verify signatures against it
// (login accepts unproven identity claims by design).
package ledger

import (
	"context"
	"errors"

	"github.com/mr-tron/base58"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// PublicKeySize is the decoded length of a valid public-key identity.
const PublicKeySize = 32

// ErrInvalidPublicKey is returned for identity strings that are not a
// base58-encoded 32-byte public key.
var ErrInvalidPublicKey = errors.New("invalid public key")

// Client talks to the identity-ledger RPC endpoint. The connection is
// dialed lazily; constructing a Client does not require the ledger to be
// reachable.
type Client struct {
	conn   *grpc.ClientConn
	health grpc_health_v1.HealthClient
}

// NewClient creates a ledger client for the given RPC endpoint.
func NewClient(endpoint string) (*Client, error) {
	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &Client{
		conn:   conn,
		health: grpc_health_v1.NewHealthClient(conn),
	}, nil
}

// Check pings the ledger endpoint's health service.
func (c *Client) Check(ctx context.Context) error {
	resp, err := c.health.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		return err
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		return errors.New("ledger not serving")
	}
	return nil
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// ParsePublicKey validates that s is a base58-encoded 32-byte public key
// and returns the decoded bytes.
func ParsePublicKey(s string) ([]byte, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	if len(b) != PublicKeySize {
		return nil, ErrInvalidPublicKey
	}
	return b, nil
}
