// Package leaselock provides expiring locks stored in the app_locks table.
// A held lease is renewed in the background; when renewal fails the lease
// context is cancelled with ErrLost.
package leaselock

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/JayKakadiya/ui-plugin-samples/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrBusy     = errors.New("lease lock busy")
	ErrLost     = errors.New("lease lock lost")
	ErrEmptyKey = errors.New("lease lock key is empty")
)

const (
	DefaultTTL          = 5 * time.Minute
	DefaultWaitInterval = 250 * time.Millisecond

	renewAttempts = 3
	renewTimeout  = 15 * time.Second
	renewBackoff  = 200 * time.Millisecond
)

type dbConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Client struct {
	db dbConn
}

type Options struct {
	TTL        time.Duration
	RenewEvery time.Duration

	// Wait polls until the lock frees up instead of returning ErrBusy.
	Wait         bool
	WaitInterval time.Duration
	WaitJitter   time.Duration

	TokenPrefix string
}

func (o Options) normalized() Options {
	if o.TTL < time.Millisecond {
		o.TTL = DefaultTTL
	}
	if o.RenewEvery <= 0 || o.RenewEvery >= o.TTL {
		o.RenewEvery = max(o.TTL/2, time.Second)
	}
	if o.WaitInterval <= 0 {
		o.WaitInterval = DefaultWaitInterval
	}
	if o.WaitJitter < 0 {
		o.WaitJitter = 0
	}
	return o
}

type Lease struct {
	Key   string
	Token string

	// Context is cancelled when the lease is released or lost.
	Context context.Context

	client *Client
	ttlMs  int64
	cancel context.CancelCauseFunc

	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(pool *pgxpool.Pool) *Client {
	return &Client{db: pool}
}

// WithLease runs fn while holding key. The lease is released when fn returns.
func (c *Client) WithLease(ctx context.Context, key string, opts Options, fn func(ctx context.Context) error) error {
	lease, err := c.Acquire(ctx, key, opts)
	if err != nil {
		return err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), renewTimeout)
		defer cancel()
		if err := lease.Release(releaseCtx); err != nil {
			logger.Warn("[Lock] Failed to release lease", "key", key, "err", err)
		}
	}()

	if err := fn(lease.Context); err != nil {
		if cause := context.Cause(lease.Context); errors.Is(cause, ErrLost) {
			return errors.Join(err, cause)
		}
		return err
	}
	return nil
}

func (c *Client) Acquire(ctx context.Context, key string, opts Options) (*Lease, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	opts = opts.normalized()
	ttlMs := opts.TTL.Milliseconds()

	tok, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	token := opts.TokenPrefix + tok

	for {
		ok, err := c.tryAcquire(ctx, key, token, ttlMs)
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if !opts.Wait {
			return nil, ErrBusy
		}
		logger.Debug("[Lock] Waiting for lease", "key", key)
		if err := sleepWithJitter(ctx, opts.WaitInterval, opts.WaitJitter); err != nil {
			return nil, err
		}
	}

	leaseCtx, cancel := context.WithCancelCause(ctx)
	l := &Lease{
		Key:     key,
		Token:   token,
		Context: leaseCtx,
		client:  c,
		ttlMs:   ttlMs,
		cancel:  cancel,
		stopCh:  make(chan struct{}),
	}

	go l.renewLoop(opts.RenewEvery)

	return l, nil
}

func (c *Client) tryAcquire(ctx context.Context, key, token string, ttlMs int64) (bool, error) {
	var returnedKey string
	err := c.db.QueryRow(ctx, tryAcquireSQL, key, token, ttlMs).Scan(&returnedKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return returnedKey != "", nil
}

func (l *Lease) Release(ctx context.Context) error {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		l.cancel(context.Canceled)
	})

	_, err := l.client.db.Exec(ctx, releaseSQL, l.Key, l.Token)
	return err
}

func (l *Lease) renewLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-l.Context.Done():
			return
		case <-t.C:
			if err := l.renewOnce(); err != nil {
				logger.Warn("[Lock] Lease lost", "key", l.Key, "err", err)
				l.cancel(err)
				return
			}
		}
	}
}

func (l *Lease) renewOnce() error {
	var lastErr error
	for attempt := range renewAttempts {
		if attempt > 0 {
			if err := sleepWithJitter(l.Context, renewBackoff, 0); err != nil {
				return err
			}
		}
		renewCtx, cancel := context.WithTimeout(l.Context, renewTimeout)
		var returnedKey string
		err := l.client.db.QueryRow(renewCtx, renewSQL, l.Key, l.Token, l.ttlMs).Scan(&returnedKey)
		cancel()
		if err == nil {
			return nil
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrLost
		}
		lastErr = err
	}
	return errors.Join(ErrLost, lastErr)
}

func sleepWithJitter(ctx context.Context, base, jitter time.Duration) error {
	d := base
	if jitter > 0 {
		d += time.Duration(rand.Int64N(int64(jitter) + 1))
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const tryAcquireSQL = `
INSERT INTO app_locks (lock_key, locked_by, expires_at)
VALUES ($1, $2, now() + ($3::bigint * interval '1 millisecond'))
ON CONFLICT (lock_key) DO UPDATE
SET locked_by  = EXCLUDED.locked_by,
    expires_at = EXCLUDED.expires_at
WHERE app_locks.expires_at < now()
   OR app_locks.locked_by = EXCLUDED.locked_by
RETURNING lock_key;
`

const renewSQL = `
UPDATE app_locks
SET expires_at = now() + ($3::bigint * interval '1 millisecond')
WHERE lock_key = $1 AND locked_by = $2
RETURNING lock_key;
`

const releaseSQL = `
DELETE FROM app_locks
WHERE lock_key = $1 AND locked_by = $2;
`
