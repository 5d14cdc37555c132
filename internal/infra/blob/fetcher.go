package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const DefaultMaxAttempts = 3

// FetchFailedError é uma resposta não-2xx do storage. Nunca é retentada.
type FetchFailedError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *FetchFailedError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("download %s: %s", e.URL, e.Status)
	}
	return fmt.Sprintf("download %s: status %d", e.URL, e.StatusCode)
}

// ObjectStore lê objetos de um storage S3 compatível (locators s3://bucket/key).
type ObjectStore interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

type Fetcher struct {
	http        *http.Client
	objects     ObjectStore
	backoffUnit time.Duration
	log         *zap.Logger
}

type Option func(*Fetcher)

func WithHTTPClient(c *http.Client) Option { return func(f *Fetcher) { f.http = c } }

func WithObjectStore(s ObjectStore) Option { return func(f *Fetcher) { f.objects = s } }

// WithBackoffUnit troca a unidade do backoff linear (tentativa k espera k*unit).
func WithBackoffUnit(d time.Duration) Option { return func(f *Fetcher) { f.backoffUnit = d } }

func WithLogger(l *zap.Logger) Option { return func(f *Fetcher) { f.log = l } }

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		http:        &http.Client{Timeout: 60 * time.Second},
		backoffUnit: time.Second,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ResolveURL usa o locator como está quando já tem esquema; senão prefixa https://.
func ResolveURL(locator string) string {
	locator = strings.TrimSpace(locator)
	if strings.Contains(locator, "://") {
		return locator
	}
	return "https://" + strings.TrimPrefix(locator, "//")
}

// FetchWithRetry baixa o arquivo, retentando apenas falhas de transporte.
// Depois de maxAttempts o último erro é devolvido sem embrulho.
func (f *Fetcher) FetchWithRetry(ctx context.Context, locator string, maxAttempts int) ([]byte, error) {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	target := ResolveURL(locator)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		data, err := f.fetch(ctx, target)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if attempt == maxAttempts || ctx.Err() != nil || !IsRetryable(err) {
			return nil, err
		}

		delay := time.Duration(attempt) * f.backoffUnit
		f.log.Warn("falha de rede ao baixar arquivo, nova tentativa agendada",
			zap.String("url", target),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, err
		case <-timer.C:
		}
	}
	return nil, lastErr
}

func (f *Fetcher) fetch(ctx context.Context, target string) ([]byte, error) {
	if bucket, key, ok := parseS3(target); ok {
		if f.objects == nil {
			return nil, fmt.Errorf("download %s: object storage não configurado", target)
		}
		return f.objects.GetObject(ctx, bucket, key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", target, err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchFailedError{URL: target, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return io.ReadAll(resp.Body)
}

// IsRetryable diz se o erro é de transporte (reset, timeout, corpo truncado).
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var failed *FetchFailedError
	if errors.As(err, &failed) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) || errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func parseS3(target string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(target, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
