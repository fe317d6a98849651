package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Search struct {
	MaxItems    int `mapstructure:"max_items"`
	Concurrency int `mapstructure:"concurrency"`
}

type PAAPI struct {
	AccessKey            string  `mapstructure:"access_key"`
	SecretKey            string  `mapstructure:"secret_key"`
	PartnerTag           string  `mapstructure:"partner_tag"`
	PartnerType          string  `mapstructure:"partner_type"`
	Marketplace          string  `mapstructure:"marketplace"`
	Host                 string  `mapstructure:"host"`
	Region               string  `mapstructure:"region"`
	TimeoutSec           int     `mapstructure:"timeout_sec"`
	MaxRequestsPerSecond float64 `mapstructure:"max_requests_per_second"`
	Burst                int     `mapstructure:"burst"`
	CacheTTLSeconds      int     `mapstructure:"cache_ttl_sec"`
	CacheMaxItems        int     `mapstructure:"cache_max_items"`
}

type Catalog struct {
	PAAPI PAAPI `mapstructure:"paapi"`
}

type Report struct {
	Path string `mapstructure:"path"`
}

type SMTP struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type SES struct {
	Region           string `mapstructure:"region"`
	ConfigurationSet string `mapstructure:"configuration_set"`
}

type Email struct {
	// Transport is one of smtp, ses or log.
	Transport         string `mapstructure:"transport"`
	From              string `mapstructure:"from"`
	To                string `mapstructure:"to"`
	SubjectPrefix     string `mapstructure:"subject_prefix"`
	SubjectTimeFormat string `mapstructure:"subject_time_format"`
	Body              string `mapstructure:"body"`
	SMTP              SMTP   `mapstructure:"smtp"`
	SES               SES    `mapstructure:"ses"`
}

type Alerts struct {
	SNSTopicARN string `mapstructure:"sns_topic_arn"`
	Region      string `mapstructure:"region"`
}

type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Metrics struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

type Server struct {
	Port              string `mapstructure:"port"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec"`
}

type Schedule struct {
	// Interval repeats the run when positive; zero runs once.
	Interval time.Duration `mapstructure:"interval"`
}

type Config struct {
	Keywords []string `mapstructure:"keywords"`
	Search   Search   `mapstructure:"search"`
	Catalog  Catalog  `mapstructure:"catalog"`
	Report   Report   `mapstructure:"report"`
	Email    Email    `mapstructure:"email"`
	Alerts   Alerts   `mapstructure:"alerts"`
	Logging  Logging  `mapstructure:"logging"`
	Metrics  Metrics  `mapstructure:"metrics"`
	Server   Server   `mapstructure:"server"`
	Schedule Schedule `mapstructure:"schedule"`
}

// Transports accepted in email.transport.
const (
	TransportSMTP = "smtp"
	TransportSES  = "ses"
	TransportLog  = "log"
)

// MaxItemsLimit is the largest item count the catalog accepts per search.
const MaxItemsLimit = 10

func Default() Config {
	return Config{
		Keywords: []string{
			"café especial",
			"secante para lava louças",
			"duracell pilhas",
			"detergente para lava louças",
			"smart lampadas da positivo",
		},
		Search: Search{MaxItems: 10, Concurrency: 1},
		Catalog: Catalog{PAAPI: PAAPI{
			PartnerType:          "Associates",
			Marketplace:          "www.amazon.com.br",
			Host:                 "webservices.amazon.com.br",
			Region:               "us-east-1",
			TimeoutSec:           10,
			MaxRequestsPerSecond: 1,
			Burst:                1,
			CacheTTLSeconds:      300,
			CacheMaxItems:        1000,
		}},
		Report: Report{Path: "melhores_precos_amazon_br.csv"},
		Email: Email{
			Transport:         TransportSMTP,
			SubjectPrefix:     "Melhores preços Amazon BR",
			SubjectTimeFormat: "02/01/2006 15:04",
			SMTP:              SMTP{Host: "smtp.gmail.com", Port: 587},
			SES:               SES{Region: "us-east-1"},
		},
		Alerts:  Alerts{Region: "us-east-1"},
		Logging: Logging{Level: "info", Format: "console"},
		Metrics: Metrics{Job: "price_digest"},
		Server:  Server{Port: "8080", RequestTimeoutSec: 10},
	}
}

// aliases are short environment names accepted for secrets, in addition
// to the derived names such as CATALOG_PAAPI_ACCESS_KEY.
var aliases = map[string]string{
	"catalog.paapi.access_key":  "PAAPI_ACCESS_KEY",
	"catalog.paapi.secret_key":  "PAAPI_SECRET_KEY",
	"catalog.paapi.partner_tag": "PAAPI_PARTNER_TAG",
	"email.smtp.username":       "SMTP_USERNAME",
	"email.smtp.password":       "SMTP_PASSWORD",
	"keywords":                  "DIGEST_KEYWORDS",
	"server.port":               "PORT",
}

// Load reads a YAML or JSON config. When path is empty, CONFIG_FILE is
// used, then config.{yaml,json} in . or ./configs. A missing file yields
// defaults. A .env file in the working directory is loaded first and
// environment variables override file values. An empty email.from falls
// back to the SMTP username.
func Load(path string) (Config, error) {
	loadEnvFile(".env")

	v := viper.New()
	setDefaults(v, Default())

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Default(), fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Default(), fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, alias := range aliases {
		_ = v.BindEnv(key, strings.ToUpper(strings.NewReplacer(".", "_").Replace(key)), alias)
	}

	// DIGEST_KEYWORDS arrives as one comma-separated string; list entries
	// from a config file are kept whole.
	if raw, ok := v.Get("keywords").(string); ok {
		v.Set("keywords", strings.Split(raw, ","))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	cfg.Keywords = cleanKeywords(cfg.Keywords)
	if cfg.Email.From == "" {
		cfg.Email.From = cfg.Email.SMTP.Username
	}
	return cfg, nil
}

func loadEnvFile(path string) {
	if _, err := os.Stat(path); err == nil {
		_ = godotenv.Load(path)
	}
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("keywords", d.Keywords)
	v.SetDefault("search.max_items", d.Search.MaxItems)
	v.SetDefault("search.concurrency", d.Search.Concurrency)

	p := d.Catalog.PAAPI
	v.SetDefault("catalog.paapi.access_key", p.AccessKey)
	v.SetDefault("catalog.paapi.secret_key", p.SecretKey)
	v.SetDefault("catalog.paapi.partner_tag", p.PartnerTag)
	v.SetDefault("catalog.paapi.partner_type", p.PartnerType)
	v.SetDefault("catalog.paapi.marketplace", p.Marketplace)
	v.SetDefault("catalog.paapi.host", p.Host)
	v.SetDefault("catalog.paapi.region", p.Region)
	v.SetDefault("catalog.paapi.timeout_sec", p.TimeoutSec)
	v.SetDefault("catalog.paapi.max_requests_per_second", p.MaxRequestsPerSecond)
	v.SetDefault("catalog.paapi.burst", p.Burst)
	v.SetDefault("catalog.paapi.cache_ttl_sec", p.CacheTTLSeconds)
	v.SetDefault("catalog.paapi.cache_max_items", p.CacheMaxItems)

	v.SetDefault("report.path", d.Report.Path)

	e := d.Email
	v.SetDefault("email.transport", e.Transport)
	v.SetDefault("email.from", e.From)
	v.SetDefault("email.to", e.To)
	v.SetDefault("email.subject_prefix", e.SubjectPrefix)
	v.SetDefault("email.subject_time_format", e.SubjectTimeFormat)
	v.SetDefault("email.body", e.Body)
	v.SetDefault("email.smtp.host", e.SMTP.Host)
	v.SetDefault("email.smtp.port", e.SMTP.Port)
	v.SetDefault("email.smtp.username", e.SMTP.Username)
	v.SetDefault("email.smtp.password", e.SMTP.Password)
	v.SetDefault("email.ses.region", e.SES.Region)
	v.SetDefault("email.ses.configuration_set", e.SES.ConfigurationSet)

	v.SetDefault("alerts.sns_topic_arn", d.Alerts.SNSTopicARN)
	v.SetDefault("alerts.region", d.Alerts.Region)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("metrics.pushgateway_url", d.Metrics.PushgatewayURL)
	v.SetDefault("metrics.job", d.Metrics.Job)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.request_timeout_sec", d.Server.RequestTimeoutSec)
	v.SetDefault("schedule.interval", d.Schedule.Interval)
}

// cleanKeywords trims every keyword and drops blanks.
func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, k := range in {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
