// Package services checks that the local services a Django project needs
// (PostgreSQL and Redis) are reachable before a task touches them.
package services

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	ferrors "git.home.luguber.info/inful/fbox/internal/errors"
	"git.home.luguber.info/inful/fbox/internal/logfields"
	"git.home.luguber.info/inful/fbox/internal/retry"
)

// DefaultTimeout bounds a single probe.
const DefaultTimeout = 3 * time.Second

// Probe checks one service.
type Probe interface {
	Name() string
	Check(ctx context.Context) error
}

// PostgresProbe connects to DSN and pings the server.
type PostgresProbe struct {
	DSN     string
	Timeout time.Duration
}

func (p PostgresProbe) Name() string { return "postgres" }

func (p PostgresProbe) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, timeoutOr(p.Timeout))
	defer cancel()

	conn, err := pgx.Connect(ctx, p.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close(context.Background()) }()

	return conn.Ping(ctx)
}

// RedisProbe sends a RESP PING to Addr and expects +PONG.
type RedisProbe struct {
	Addr    string
	Timeout time.Duration
}

func (p RedisProbe) Name() string { return "redis" }

func (p RedisProbe) Check(ctx context.Context) error {
	timeout := timeoutOr(p.Timeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}
	if _, err := conn.Write([]byte("PING\r\n")); err != nil {
		return err
	}
	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	reply = strings.TrimRight(reply, "\r\n")
	if reply != "+PONG" {
		return fmt.Errorf("unexpected reply %q", reply)
	}
	return nil
}

func timeoutOr(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}

// Check runs the probes in order and stops at the first service that is
// still unreachable after the retries of policy.
func Check(ctx context.Context, policy retry.Policy, probes ...Probe) error {
	for _, p := range probes {
		start := time.Now()
		if err := policy.Do(ctx, p.Check); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("Service check failed",
				logfields.Service(p.Name()),
				logfields.Error(err))
			return ferrors.ServiceUnavailable(p.Name(), err)
		}
		slog.Debug("Service reachable",
			logfields.Service(p.Name()),
			logfields.DurationMS(time.Since(start).Milliseconds()))
	}
	return nil
}

// FromConfig returns the probes for the given addresses.
func FromConfig(postgresDSN, redisAddr string) []Probe {
	return []Probe{
		PostgresProbe{DSN: postgresDSN},
		RedisProbe{Addr: redisAddr},
	}
}
