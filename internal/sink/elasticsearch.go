package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	commonerrors "mobile-forms/internal/common/errors"
	"mobile-forms/internal/common/logger"
	"mobile-forms/internal/profileform"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticsearchSink indexes the profile record, keyed by the submission id.
type ElasticsearchSink struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
	now    func() time.Time
}

func NewElasticsearchSink(client *elasticsearch.Client, index string, log logger.Logger) *ElasticsearchSink {
	return &ElasticsearchSink{
		client: client,
		index:  index,
		logger: log,
		now:    time.Now,
	}
}

func (s *ElasticsearchSink) Name() string { return "elasticsearch" }

func (s *ElasticsearchSink) Submit(ctx context.Context, values profileform.FormValues) error {
	rec := newRecord(values, s.now())

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: rec.ID,
		Body:       bytes.NewReader(body),
		OpType:     "create",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("%w: %w", commonerrors.NewSearchIndexFailedError(err), err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return commonerrors.NewSearchIndexFailedError(fmt.Errorf("index profile: %s", res.String()))
	}

	s.logger.Info("profile indexed", map[string]interface{}{
		"id":    rec.ID,
		"index": s.index,
	})
	return nil
}
