package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pricedigest/internal/aggregate"
	"pricedigest/internal/logger"
	"pricedigest/internal/metrics"
	"pricedigest/internal/notify"
	"pricedigest/internal/quote"
	"pricedigest/internal/report"
)

// Searcher returns the quotes of every keyword, concatenated in keyword order.
type Searcher interface {
	SearchAll(ctx context.Context, keywords []string) []quote.ProductQuote
}

// Deliverer sends a written report to a recipient.
type Deliverer interface {
	Deliver(ctx context.Context, reportPath, subject, body, recipient string) error
}

// Alerter tells the operator about runs that delivered nothing.
type Alerter interface {
	Alert(ctx context.Context, subject, message string) error
}

// Pipeline runs keyword searches, keeps the cheapest quote per keyword,
// writes the report and mails it.
type Pipeline struct {
	Keywords   []string
	Searcher   Searcher
	Notifier   Deliverer
	ReportPath string
	Recipient  string

	SubjectPrefix     string
	SubjectTimeFormat string
	Body              string

	// Alerter is optional.
	Alerter Alerter
	Metrics *metrics.Metrics
	Logger  *zap.Logger

	now      func() time.Time
	newRunID func() string
}

// Result describes a finished run.
type Result struct {
	RunID string
	State State
	// Path lists every state the run entered, ending with State.
	Path     []State
	Keywords int
	// Quotes counts the normalized quotes returned by all searches.
	Quotes int
	Best   []quote.ProductQuote
	// ReportPath is set once the report has been written.
	ReportPath string
	Started    time.Time
	Duration   time.Duration
}

func (r *Result) enter(s State) {
	r.State = s
	r.Path = append(r.Path, s)
}

func (p *Pipeline) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}

func (p *Pipeline) runID() string {
	if p.newRunID != nil {
		return p.newRunID()
	}
	return uuid.NewString()
}

// Run executes one digest. Abort states return a nil error; write and
// delivery failures return a *StageError.
func (p *Pipeline) Run(ctx context.Context) (res Result, err error) {
	res = Result{
		RunID:    p.runID(),
		State:    StateStart,
		Path:     []State{StateStart},
		Keywords: len(p.Keywords),
		Started:  p.clock(),
	}
	log := logger.OrNop(p.Logger).With(zap.String("run_id", res.RunID))
	log.Info("run started", zap.Strings("keywords", p.Keywords))

	defer func() {
		res.Duration = p.clock().Sub(res.Started)
		p.finish(ctx, log, res, err)
	}()

	res.enter(StateSearching)
	quotes := p.Searcher.SearchAll(ctx, p.Keywords)
	res.Quotes = len(quotes)
	if len(quotes) == 0 {
		res.enter(StateAbortEmpty)
		return res, nil
	}

	res.enter(StateAggregating)
	best := aggregate.BestByKeyword(quotes)
	log.Debug("quotes aggregated", zap.Int("quotes", len(quotes)), zap.Int("keywords_priced", best.Len()))
	if best.Len() == 0 {
		res.enter(StateAbortNoPrice)
		return res, nil
	}

	res.enter(StateWriting)
	res.Best = best.Quotes()
	if err := report.WriteFile(p.ReportPath, res.Best); err != nil {
		return res, &StageError{State: StateWriting, Err: err}
	}
	res.ReportPath = p.ReportPath
	log.Info("report written", zap.String("path", p.ReportPath), zap.Int("rows", len(res.Best)))

	res.enter(StateNotifying)
	subject := notify.Subject(p.SubjectPrefix, p.SubjectTimeFormat, p.clock())
	body := p.Body
	if body == "" {
		body = notify.DefaultBody
	}
	if err := p.Notifier.Deliver(ctx, p.ReportPath, subject, body, p.Recipient); err != nil {
		return res, &StageError{State: StateNotifying, Err: err}
	}

	res.enter(StateDone)
	return res, nil
}

func (p *Pipeline) finish(ctx context.Context, log *zap.Logger, res Result, err error) {
	fields := []zap.Field{
		zap.String("state", string(res.State)),
		zap.Int("quotes", res.Quotes),
		zap.Int("rows", len(res.Best)),
		zap.Duration("took", res.Duration),
	}
	var stageErr *StageError
	switch {
	case errors.As(err, &stageErr):
		log.Error("run failed", append(fields, zap.Error(err))...)
		p.Metrics.ObserveRun(string(stageErr.State), res.Duration, false, p.clock())
		p.alert(ctx, log, "price digest failed: "+string(stageErr.State), err.Error())
	case res.State.Aborted():
		log.Info("nothing to report", fields...)
		p.Metrics.ObserveRun(string(res.State), res.Duration, false, p.clock())
		p.alert(ctx, log, "price digest: "+string(res.State), "nothing to report for "+strings.Join(p.Keywords, ", "))
	default:
		log.Info("run finished", fields...)
		p.Metrics.ObserveRun(string(res.State), res.Duration, res.State == StateDone, p.clock())
	}
}

func (p *Pipeline) alert(ctx context.Context, log *zap.Logger, subject, message string) {
	if p.Alerter == nil {
		return
	}
	if err := p.Alerter.Alert(ctx, subject, message); err != nil {
		log.Warn("alert not sent", zap.Error(err))
	}
}
