package kafka

import (
	"context"
	"fmt"
	"net"
	"time"
)

// HealthChecker checks Kafka broker connectivity with a plain TCP dial, so it
// works before a producer exists.
type HealthChecker struct {
	brokers string
	timeout time.Duration
}

func NewHealthChecker(brokers string) *HealthChecker {
	return &HealthChecker{
		brokers: brokers,
		timeout: 5 * time.Second,
	}
}

// Check returns nil if at least one broker is reachable.
func (h *HealthChecker) Check(ctx context.Context) error {
	brokers := splitBrokers(h.brokers)
	if len(brokers) == 0 {
		return fmt.Errorf("kafka brokers not configured")
	}

	var lastErr error
	for _, broker := range brokers {
		dialer := net.Dialer{Timeout: h.timeout}
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		conn.Close()
		return nil
	}
	return fmt.Errorf("no kafka brokers reachable: %w", lastErr)
}

func (h *HealthChecker) Name() string {
	return "kafka"
}
