package bus

import (
	"github.com/apper-canvas/holodevboard/internal/common/config"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
)

// Provide returns a NATS bus when a URL is configured and an in-memory bus otherwise.
func Provide(cfg config.NATSConfig, log *logger.Logger) (EventBus, error) {
	if cfg.URL == "" {
		log.Info("Using in-memory event bus")
		return NewMemoryEventBus(log), nil
	}
	nb, err := NewNATSEventBus(cfg, log)
	if err != nil {
		return nil, err
	}
	return nb, nil
}
