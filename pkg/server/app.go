package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "CosmicClock/internal/domain/repository"
	"CosmicClock/internal/middleware"
	"CosmicClock/internal/usecase"
	"CosmicClock/pkg/cache"
	pkgch "CosmicClock/pkg/clickhouse"
	"CosmicClock/pkg/config"
	xhttp "CosmicClock/pkg/http"
	pkgkafka "CosmicClock/pkg/kafka"
	applogger "CosmicClock/pkg/logger"
	"CosmicClock/pkg/postgres"
)

// Resources are the infrastructure clients the app owns and closes on shutdown.
// Any of them may be nil.
type Resources struct {
	ClickHouse  *pkgch.Client
	Postgres    *postgres.Pool
	Cache       cache.Service
	LogProducer *pkgkafka.Producer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	sampler    *usecase.ClockSampler
	pipeline   *middleware.RealtimePipeline
	processor  *usecase.PatternProcessor
	archive    domrepo.PatternArchive
	consumer   *pkgkafka.Consumer
	httpServer *xhttp.Server
	res        Resources
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	sampler *usecase.ClockSampler,
	pipeline *middleware.RealtimePipeline,
	processor *usecase.PatternProcessor,
	archive domrepo.PatternArchive,
	consumer *pkgkafka.Consumer,
	httpServer *xhttp.Server,
	res Resources,
) *App {
	if log == nil {
		log = applogger.Nop()
	}
	return &App{
		cfg:        cfg,
		log:        log,
		sampler:    sampler,
		pipeline:   pipeline,
		processor:  processor,
		archive:    archive,
		consumer:   consumer,
		httpServer: httpServer,
		res:        res,
	}
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts every component, blocks until ctx is done and then shuts down.
func (a *App) RunContext(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.start(runCtx); err != nil {
		cancel()
		a.shutdown()
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	cancel()
	a.shutdown()
	return nil
}

func (a *App) start(ctx context.Context) error {
	if a.archive != nil {
		initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := a.archive.Init(initCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("init archive: %w", err)
		}
	}

	if a.pipeline != nil {
		a.pipeline.Start(ctx)
	}

	if a.sampler != nil {
		if err := a.sampler.Start(ctx); err != nil {
			return fmt.Errorf("start sampler: %w", err)
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Start(ctx); err != nil {
			return fmt.Errorf("start kafka consumer: %w", err)
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.cfg.Kafka.Topic))
	}

	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			return fmt.Errorf("start http server: %w", err)
		}
	}

	a.log.Info("cosmic clock started",
		applogger.String("environment", a.cfg.Environment),
		applogger.String("backend", a.cfg.Backend.Type),
		applogger.String("timezone", a.cfg.Clock.Timezone))
	return nil
}

// shutdown stops producers of work before the sinks they feed.
func (a *App) shutdown() {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.log.Info("shutting down...")

	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}

	if a.sampler != nil {
		a.sampler.Wait()
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.pipeline != nil {
		if n := a.pipeline.Buffered(); n > 0 {
			a.log.Warn("dropping buffered detection events", applogger.Int("count", n))
		}
		a.pipeline.Stop()
	}

	if a.processor != nil {
		a.processor.Close()
	}

	if a.res.ClickHouse != nil {
		if err := a.res.ClickHouse.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.res.Postgres != nil {
		a.res.Postgres.Close()
	}
	if a.res.Cache != nil {
		if err := a.res.Cache.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	// flush aggregated error logs before their producer goes away
	a.log.RemoveCollector()
	if a.res.LogProducer != nil {
		if err := a.res.LogProducer.Close(); err != nil {
			a.log.Warn("log producer close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
}
