// Package lock serializa o upsert de leads por contato entre réplicas da API.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultTTL      = 10 * time.Second
	DefaultWait     = 5 * time.Second
	DefaultInterval = 50 * time.Millisecond
)

var ErrLockTimeout = errors.New("tempo esgotado aguardando lock do contato")

// Só apaga a chave se ela ainda pertence a quem travou.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client   redis.UniversalClient
	prefix   string
	TTL      time.Duration
	Wait     time.Duration
	Interval time.Duration
	log      *zap.Logger
}

func NewRedisLocker(client redis.UniversalClient, log *zap.Logger) *RedisLocker {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisLocker{
		client:   client,
		prefix:   "gpmd:lock:",
		TTL:      DefaultTTL,
		Wait:     DefaultWait,
		Interval: DefaultInterval,
		log:      log,
	}
}

// NewRedisClient monta o cliente a partir de REDIS_URL e testa a conexão.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url inválida: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("erro ao conectar no redis: %w", err)
	}
	return client, nil
}

// Lock trava todas as chaves ou nenhuma. As chaves são ordenadas para que
// duas requisições com o mesmo par email/telefone não se bloqueiem em ordem cruzada.
func (l *RedisLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	token := uuid.NewString()
	var held []string
	release := func() {
		// ctx da requisição pode já ter sido cancelado
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		for _, key := range held {
			if err := releaseScript.Run(rctx, l.client, []string{key}, token).Err(); err != nil {
				l.log.Warn("erro ao liberar lock", zap.String("key", key), zap.Error(err))
			}
		}
	}

	for _, key := range sorted {
		if err := l.acquire(ctx, l.prefix+key, token); err != nil {
			release()
			return nil, err
		}
		held = append(held, l.prefix+key)
	}
	return release, nil
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(l.Wait)
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return fmt.Errorf("erro ao travar %s: %w", key, err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.Interval):
		}
	}
}
