package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// ErrCaptureDeclined is returned by a gateway when the processor declines the
// capture. Declines are retryable.
var ErrCaptureDeclined = errors.New("payment capture declined")

// PaymentGateway is the capability interface for capturing installment
// payments with an external processor.
type PaymentGateway interface {
	Capture(ctx context.Context, amount float64, method string) (string, error)
}

// SimulatedGateway stands in for a real payment processor. It declines a
// configurable fraction of captures so the retry path stays exercised.
type SimulatedGateway struct {
	mu          sync.Mutex
	rng         *rand.Rand
	failureRate float64
}

// NewSimulatedGateway creates a new SimulatedGateway
func NewSimulatedGateway(failureRate float64) *SimulatedGateway {
	return &SimulatedGateway{
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		failureRate: failureRate,
	}
}

// Capture simulates a payment capture and returns a transaction reference
func (g *SimulatedGateway) Capture(ctx context.Context, amount float64, method string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("capture aborted: %w", err)
	}

	if amount <= 0 {
		return "", fmt.Errorf("capture amount must be positive, got %f", amount)
	}

	g.mu.Lock()
	roll := g.rng.Float64()
	g.mu.Unlock()

	if roll < g.failureRate {
		return "", ErrCaptureDeclined
	}

	return fmt.Sprintf("txn_%d", time.Now().UnixNano()), nil
}
