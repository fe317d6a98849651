package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pricedigest/internal/aggregate"
	"pricedigest/internal/app"
	"pricedigest/internal/config"
	"pricedigest/internal/logger"
	"pricedigest/internal/metrics"
	"pricedigest/internal/pipeline"
	"pricedigest/internal/quote"
	"pricedigest/internal/report"
)

// maxKeywords caps the keywords accepted by one preview request.
const maxKeywords = 20

type bestResponse struct {
	Best []quote.ProductQuote `json:"best"`
	// Quotes counts every normalized quote, priced or not.
	Quotes int `json:"quotes"`
	// Missing lists keywords without a priced quote.
	Missing []string `json:"missing,omitempty"`
}

type reportResponse struct {
	Path string               `json:"path"`
	Rows []quote.ProductQuote `json:"rows"`
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	m := metrics.New()
	c, err := app.NewCatalog(cfg.Catalog.PAAPI, nil)
	if err != nil {
		lg.Fatal("catalog", zap.Error(err))
	}
	searcher := app.NewSearcher(cfg.Search, c, lg, m)
	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second

	api := http.NewServeMux()
	api.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	api.HandleFunc("/api/best", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handleGetBest(w, r, searcher, timeout)
		case http.MethodPost:
			handlePostBest(w, r, searcher, timeout)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	api.HandleFunc("/api/report", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeReport(w, cfg.Report.Path)
	})

	mux := http.NewServeMux()
	// promhttp negotiates its own encoding and content type.
	mux.Handle("/metrics", m.Handler())
	mux.Handle("/", withJSONHeaders(withGzip(recoverPanic(lg, limitBody(api)))))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      timeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		lg.Info("server listening", zap.String("addr", srv.Addr), zap.String("catalog", c.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func handleGetBest(w http.ResponseWriter, r *http.Request, s pipeline.Searcher, timeout time.Duration) {
	q := r.URL.Query().Get("keywords")
	if strings.TrimSpace(q) == "" {
		http.Error(w, "missing keywords query param", http.StatusBadRequest)
		return
	}
	keywords := splitCSV(q)
	if len(keywords) > maxKeywords {
		http.Error(w, "too many keywords", http.StatusBadRequest)
		return
	}
	writeBest(w, r.Context(), s, keywords, timeout)
}

type postBody struct {
	Keywords []string `json:"keywords"`
}

func handlePostBest(w http.ResponseWriter, r *http.Request, s pipeline.Searcher, timeout time.Duration) {
	var b postBody
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	keywords := make([]string, 0, len(b.Keywords))
	for _, k := range b.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		http.Error(w, "keywords cannot be empty", http.StatusBadRequest)
		return
	}
	if len(keywords) > maxKeywords {
		http.Error(w, "too many keywords", http.StatusBadRequest)
		return
	}
	writeBest(w, r.Context(), s, keywords, timeout)
}

// writeBest searches the keywords and writes the cheapest quote per keyword.
// Nothing is written to disk or mailed.
func writeBest(w http.ResponseWriter, rctx context.Context, s pipeline.Searcher, keywords []string, timeout time.Duration) {
	ctx := rctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(rctx, timeout)
		defer cancel()
	}
	quotes := s.SearchAll(ctx, keywords)
	best := aggregate.BestByKeyword(quotes)

	resp := bestResponse{Best: best.Quotes(), Quotes: len(quotes)}
	if resp.Best == nil {
		resp.Best = []quote.ProductQuote{}
	}
	for _, k := range keywords {
		if _, ok := best.Get(k); !ok {
			resp.Missing = append(resp.Missing, k)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeReport serves the rows of the last written report.
func writeReport(w http.ResponseWriter, path string) {
	rows, err := report.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.Error(w, "no report written yet", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, "report unreadable", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []quote.ProductQuote{}
	}
	writeJSON(w, http.StatusOK, reportResponse{Path: path, Rows: rows})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func withJSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withGzip compresses the response when the client accepts gzip.
func withGzip(next http.Handler) http.Handler {
	var gzPool = sync.Pool{New: func() any {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
		return w
	}}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		gz := gzPool.Get().(*gzip.Writer)
		gz.Reset(w)
		defer func() {
			_ = gz.Close()
			gz.Reset(io.Discard)
			gzPool.Put(gz)
		}()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		next.ServeHTTP(gzipResponseWriter{ResponseWriter: w, Writer: gz}, r)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
	return g.Writer.Write(b)
}

// limitBody caps POST bodies at 64KB.
func limitBody(next http.Handler) http.Handler {
	const maxBody = 64 << 10
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}
		next.ServeHTTP(w, r)
	})
}

func recoverPanic(lg *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				lg.Error("handler panic", zap.Any("panic", rec), zap.String("path", r.URL.Path))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func splitCSV(s string) []string {
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
