package pubsub

import (
	"context"
	"log/slog"

	"dispatch/config"
	"dispatch/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	// ProviderBus keeps events in-process only. This is the default.
	ProviderBus = "bus"
	// ProviderGoogle mirrors events to Google Pub/Sub on top of the bus.
	ProviderGoogle = "google"
)

// multiPublisher delivers each event to every underlying publisher. The
// in-process bus always comes first so local subscribers never wait on the
// remote mirror.
type multiPublisher struct {
	publishers []service.EventPublisher
}

func (m *multiPublisher) PublishChange(ctx context.Context, event *service.ChangeEvent) error {
	for _, p := range m.publishers {
		if err := p.PublishChange(ctx, event); err != nil {
			return err
		}
	}

	return nil
}

func (m *multiPublisher) Close() error {
	var firstErr error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// PublisherParams holds dependencies for EventPublisher, injected by Fx.
type PublisherParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
	Bus    *Bus
}

// NewEventPublisher builds the configured publisher chain. The in-process
// bus is always part of it; it is what the event stream endpoint reads.
func NewEventPublisher(params PublisherParams) (service.EventPublisher, error) {
	logger := params.Logger

	var publisher service.EventPublisher = params.Bus

	cfg := params.Config.PubSub
	provider := ProviderBus
	if cfg != nil && cfg.Provider != "" {
		provider = cfg.Provider
	}

	switch provider {
	case ProviderBus:
		logger.Info("using in-process event bus")

	case ProviderGoogle:
		if cfg.ProjectID == "" {
			return nil, errors.New("project ID is required for google provider")
		}
		if cfg.TopicID == "" {
			return nil, errors.New("topic ID is required for google provider")
		}

		google, err := NewGooglePublisher(params.Ctx, cfg.ProjectID, cfg.TopicID, logger)
		if err != nil {
			return nil, err
		}
		publisher = &multiPublisher{publishers: []service.EventPublisher{params.Bus, google}}

	default:
		return nil, errors.Errorf("unknown pubsub provider: %s", provider)
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("closing event publisher")

			return publisher.Close()
		},
	})

	return publisher, nil
}

// Module provides the Pub/Sub FX module.
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewBus),
	fx.Provide(func(bus *Bus) service.ChangeFeed { return bus }),
	fx.Provide(NewEventPublisher),
)
