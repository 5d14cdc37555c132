// Package monitoring envia ao Sentry as falhas que não chegam ao cliente HTTP,
// como entregas em segundo plano.
package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

const flushTimeout = 2 * time.Second

// Init configura o hub global. Sem DSN não há envio e o flush é no-op.
func Init(dsn, env string) (flush func(), err error) {
	if dsn == "" {
		return func() {}, nil
	}
	err = sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao iniciar sentry: %w", err)
	}
	return func() { sentry.Flush(flushTimeout) }, nil
}

type SentryReporter struct {
	hub *sentry.Hub
}

// NewSentryReporter usa o hub global quando hub é nil.
func NewSentryReporter(hub *sentry.Hub) *SentryReporter {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &SentryReporter{hub: hub}
}

// Report é chamado de várias goroutines; cada chamada usa um clone do hub
// para que as tags não vazem entre eventos.
func (r *SentryReporter) Report(ctx context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}
	hub := r.hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		scope.SetContext("delivery", sentry.Context{"cancelled": ctx.Err() != nil})
	})
	hub.CaptureException(err)
}
