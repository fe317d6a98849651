// Package app assembles the digest components from a config.Config.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pricedigest/internal/catalog"
	"pricedigest/internal/catalog/cache"
	"pricedigest/internal/catalog/paapi"
	"pricedigest/internal/catalog/ratelimit"
	"pricedigest/internal/config"
	"pricedigest/internal/httpx"
	"pricedigest/internal/metrics"
	"pricedigest/internal/notify"
	"pricedigest/internal/pipeline"
	"pricedigest/internal/search"
)

// NewCatalog builds the PA-API client wrapped with rate limiting and
// caching as configured. A nil httpClient uses httpx with the configured
// timeout.
func NewCatalog(cfg config.PAAPI, httpClient paapi.HTTPClient) (catalog.Catalog, error) {
	if httpClient == nil {
		httpClient = httpx.New(time.Duration(cfg.TimeoutSec) * time.Second)
	}
	opts := []paapi.Option{paapi.WithHTTPClient(httpClient)}
	if cfg.Host != "" {
		opts = append(opts, paapi.WithBaseURL("https://"+cfg.Host))
	}
	if cfg.Region != "" {
		opts = append(opts, paapi.WithRegion(cfg.Region))
	}
	if cfg.Marketplace != "" {
		opts = append(opts, paapi.WithMarketplace(cfg.Marketplace))
	}
	if cfg.PartnerType != "" {
		opts = append(opts, paapi.WithPartnerType(cfg.PartnerType))
	}
	client, err := paapi.NewClient(cfg.AccessKey, cfg.SecretKey, cfg.PartnerTag, opts...)
	if err != nil {
		return nil, err
	}

	var c catalog.Catalog = client
	if cfg.MaxRequestsPerSecond > 0 {
		c = ratelimit.New(c, cfg.MaxRequestsPerSecond, cfg.Burst)
	}
	if cfg.CacheTTLSeconds > 0 {
		c = &cache.Catalog{C: c, TTL: time.Duration(cfg.CacheTTLSeconds) * time.Second, MaxItems: cfg.CacheMaxItems}
	}
	return c, nil
}

// NewSearcher binds a catalog to the search settings.
func NewSearcher(cfg config.Search, c catalog.Catalog, log *zap.Logger, m *metrics.Metrics) *search.Searcher {
	return &search.Searcher{
		Catalog:     c,
		MaxItems:    cfg.MaxItems,
		Concurrency: cfg.Concurrency,
		Logger:      log,
		Metrics:     m,
	}
}

// NewTransport returns the configured mail transport. dryRun always
// selects the log transport.
func NewTransport(ctx context.Context, cfg config.Email, log *zap.Logger, dryRun bool) (notify.Transport, error) {
	if dryRun {
		return &notify.LogTransport{Logger: log}, nil
	}
	switch cfg.Transport {
	case config.TransportSMTP:
		return &notify.SMTPTransport{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			Timeout:  time.Minute,
		}, nil
	case config.TransportSES:
		t, err := notify.NewSESTransport(ctx, cfg.SES.Region)
		if err != nil {
			return nil, err
		}
		t.ConfigurationSet = cfg.SES.ConfigurationSet
		return t, nil
	case config.TransportLog:
		return &notify.LogTransport{Logger: log}, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownTransport, cfg.Transport)
	}
}

// NewAlerter returns an SNS alerter, or nil when no topic is configured.
func NewAlerter(ctx context.Context, cfg config.Alerts) (pipeline.Alerter, error) {
	if cfg.SNSTopicARN == "" {
		return nil, nil
	}
	a, err := notify.NewSNSAlerter(ctx, cfg.Region, cfg.SNSTopicARN)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// NewPipeline assembles a digest run from its parts.
func NewPipeline(cfg config.Config, s pipeline.Searcher, t notify.Transport, alerter pipeline.Alerter, log *zap.Logger, m *metrics.Metrics) *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Keywords:          cfg.Keywords,
		Searcher:          s,
		Notifier:          &notify.Notifier{Transport: t, From: cfg.Email.From, Logger: log},
		ReportPath:        cfg.Report.Path,
		Recipient:         cfg.Email.To,
		SubjectPrefix:     cfg.Email.SubjectPrefix,
		SubjectTimeFormat: cfg.Email.SubjectTimeFormat,
		Body:              cfg.Email.Body,
		Alerter:           alerter,
		Metrics:           m,
		Logger:            log,
	}
}
