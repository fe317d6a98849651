package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pricedigest/internal/app"
	"pricedigest/internal/config"
	"pricedigest/internal/logger"
	"pricedigest/internal/metrics"
	"pricedigest/internal/pipeline"
)

// dryRunAddress stands in for unset addresses when mail is only logged.
const dryRunAddress = "dry-run@localhost"

type options struct {
	configPath string
	keywords   string
	maxItems   int
	out        string
	to         string
	dryRun     bool
	interval   time.Duration
}

func parseOptions(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("digest", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", getenv("CONFIG_FILE", ""), "path to config.yaml or config.json (optional)")
	fs.StringVar(&o.keywords, "keywords", "", "comma-separated keywords, overrides config")
	fs.IntVar(&o.maxItems, "max-items", 0, "results requested per keyword (1-10)")
	fs.StringVar(&o.out, "out", "", "report CSV path")
	fs.StringVar(&o.to, "to", getenv("EMAIL_TO", ""), "report recipient")
	fs.BoolVar(&o.dryRun, "dry-run", getenvBool("DRY_RUN", false), "log the email instead of sending it")
	fs.DurationVar(&o.interval, "interval", getenvDuration("DIGEST_INTERVAL", 0), "repeat every interval; 0 runs once")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

// apply overrides config values with the flags that were set.
func (o options) apply(cfg *config.Config) {
	if kws := splitCSV(o.keywords); len(kws) > 0 {
		cfg.Keywords = kws
	}
	if o.maxItems != 0 {
		cfg.Search.MaxItems = o.maxItems
	}
	if o.out != "" {
		cfg.Report.Path = o.out
	}
	if o.to != "" {
		cfg.Email.To = o.to
	}
	if o.dryRun {
		cfg.Email.Transport = config.TransportLog
		if cfg.Email.To == "" {
			cfg.Email.To = dryRunAddress
		}
		if cfg.Email.From == "" {
			cfg.Email.From = dryRunAddress
		}
	}
	if o.interval > 0 {
		cfg.Schedule.Interval = o.interval
	}
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	opts.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	c, err := app.NewCatalog(cfg.Catalog.PAAPI, nil)
	if err != nil {
		lg.Fatal("catalog", zap.Error(err))
	}
	transport, err := app.NewTransport(ctx, cfg.Email, lg, opts.dryRun)
	if err != nil {
		lg.Fatal("email transport", zap.Error(err))
	}
	alerter, err := app.NewAlerter(ctx, cfg.Alerts)
	if err != nil {
		lg.Fatal("alerts", zap.Error(err))
	}
	p := app.NewPipeline(cfg, app.NewSearcher(cfg.Search, c, lg, m), transport, alerter, lg, m)

	lg.Info("price digest starting",
		zap.String("catalog", c.Name()),
		zap.Strings("keywords", cfg.Keywords),
		zap.String("transport", cfg.Email.Transport),
		zap.Duration("interval", cfg.Schedule.Interval),
	)

	if cfg.Schedule.Interval <= 0 {
		if err := runOnce(ctx, p, m, cfg.Metrics, lg); err != nil {
			_ = lg.Sync()
			os.Exit(1)
		}
		return
	}

	ticker := time.NewTicker(cfg.Schedule.Interval)
	defer ticker.Stop()
	for {
		_ = runOnce(ctx, p, m, cfg.Metrics, lg)
		select {
		case <-ctx.Done():
			lg.Info("shutting down")
			return
		case <-ticker.C:
		}
	}
}

// runOnce runs the pipeline and pushes metrics when a gateway is set.
// Failures are already logged by the pipeline.
func runOnce(ctx context.Context, p *pipeline.Pipeline, m *metrics.Metrics, mc config.Metrics, lg *zap.Logger) error {
	res, err := p.Run(ctx)
	if mc.PushgatewayURL != "" {
		if perr := m.Push(ctx, mc.PushgatewayURL, mc.Job); perr != nil {
			lg.Warn("metrics push failed", zap.Error(perr))
		}
	}
	if err != nil {
		var se *pipeline.StageError
		if errors.As(err, &se) {
			return fmt.Errorf("run %s: %w", res.RunID, se)
		}
		return err
	}
	return nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
