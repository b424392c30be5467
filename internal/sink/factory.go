package sink

import (
	"database/sql"
	"fmt"

	"mobile-forms/internal/common/config"
	"mobile-forms/internal/common/logger"
	"mobile-forms/internal/common/observability"

	"github.com/elastic/go-elasticsearch/v8"
)

// Deps carries the already connected backends. Only the one matching the
// configured kind is required.
type Deps struct {
	Logger        logger.Logger
	DB            *sql.DB
	Hasher        PasswordHasher
	Elasticsearch *elasticsearch.Client
	Starter       ProcessStarter
	Email         EmailSender
	SMS           SMSSender
	Observability *observability.Observability
}

// Build assembles the configured sink: the backend, then notifications when
// any sender is present, then tracing when observability is set.
func Build(cfg *config.Config, deps Deps) (Sink, error) {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"sink": cfg.Sink.Kind})

	var s Sink
	switch cfg.Sink.Kind {
	case config.SinkLog:
		s = NewLogSink(log)
	case config.SinkHTTP:
		s = NewHTTPSink(cfg.Sink.HTTP.URL, config.GetDuration(cfg.Sink.HTTP.Timeout), log)
	case config.SinkPostgres:
		if deps.DB == nil {
			return nil, fmt.Errorf("%w: postgres connection", ErrMissingDependency)
		}
		s = NewPostgresSink(deps.DB, cfg.Sink.Postgres.Table, deps.Hasher, log)
	case config.SinkElasticsearch:
		if deps.Elasticsearch == nil {
			return nil, fmt.Errorf("%w: elasticsearch client", ErrMissingDependency)
		}
		s = NewElasticsearchSink(deps.Elasticsearch, cfg.Sink.Elasticsearch.Index, log)
	case config.SinkZeebe:
		if deps.Starter == nil {
			return nil, fmt.Errorf("%w: zeebe client", ErrMissingDependency)
		}
		s = NewZeebeSink(deps.Starter, cfg.Sink.Zeebe.ProcessID, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSinkKind, cfg.Sink.Kind)
	}

	if deps.Email != nil || deps.SMS != nil {
		s = NewNotifying(s, deps.Email, deps.SMS, cfg.Notifications.Email.Subject, log)
	}
	if deps.Observability != nil {
		s = NewInstrumented(s, deps.Observability)
	}
	return s, nil
}
