package config

import (
	"errors"
	"fmt"
)

var (
	// ErrNoKeywords indicates an empty keyword list.
	ErrNoKeywords = errors.New("config: at least one keyword is required")
	// ErrInvalidMaxItems indicates search.max_items outside 1..MaxItemsLimit.
	ErrInvalidMaxItems = errors.New("config: search.max_items out of range")
	// ErrInvalidConcurrency indicates search.concurrency below 1.
	ErrInvalidConcurrency = errors.New("config: search.concurrency must be at least 1")
	// ErrNoReportPath indicates an empty report.path.
	ErrNoReportPath = errors.New("config: report.path is required")
	// ErrNoRecipient indicates an empty email.to.
	ErrNoRecipient = errors.New("config: email.to is required")
	// ErrNoSender indicates an empty email.from.
	ErrNoSender = errors.New("config: email.from is required")
	// ErrNoSMTPHost indicates the smtp transport without host or port.
	ErrNoSMTPHost = errors.New("config: email.smtp.host and port are required")
	// ErrNoSMTPCredentials indicates the smtp transport without username or password.
	ErrNoSMTPCredentials = errors.New("config: email.smtp.username and password are required")
	// ErrUnknownTransport indicates an unsupported email.transport.
	ErrUnknownTransport = errors.New("config: unknown email.transport")
)

// Validate checks the settings a digest run depends on.
func (c Config) Validate() error {
	var errs []error
	if len(c.Keywords) == 0 {
		errs = append(errs, ErrNoKeywords)
	}
	if c.Search.MaxItems < 1 || c.Search.MaxItems > MaxItemsLimit {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidMaxItems, c.Search.MaxItems))
	}
	if c.Search.Concurrency < 1 {
		errs = append(errs, ErrInvalidConcurrency)
	}
	if c.Report.Path == "" {
		errs = append(errs, ErrNoReportPath)
	}

	switch c.Email.Transport {
	case TransportSMTP:
		if c.Email.SMTP.Host == "" || c.Email.SMTP.Port <= 0 {
			errs = append(errs, ErrNoSMTPHost)
		}
		if c.Email.SMTP.Username == "" || c.Email.SMTP.Password == "" {
			errs = append(errs, ErrNoSMTPCredentials)
		}
	case TransportSES, TransportLog:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownTransport, c.Email.Transport))
	}
	if c.Email.Transport != TransportLog {
		if c.Email.To == "" {
			errs = append(errs, ErrNoRecipient)
		}
		if c.Email.From == "" {
			errs = append(errs, ErrNoSender)
		}
	}
	return errors.Join(errs...)
}
