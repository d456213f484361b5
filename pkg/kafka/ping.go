package kafka

import (
	"context"
	"errors"
	"fmt"
)

// Ping dials the configured brokers and succeeds as soon as one accepts a
// connection.
func Ping(ctx context.Context, cfg Config) error {
	if len(cfg.Brokers) == 0 {
		return errors.New("kafka: no brokers configured")
	}
	dialer, err := cfg.dialer()
	if err != nil {
		return err
	}

	var errs []error
	for _, broker := range cfg.Brokers {
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", broker, err))
			continue
		}
		_ = conn.Close()
		return nil
	}
	return fmt.Errorf("kafka: no broker reachable: %w", errors.Join(errs...))
}
