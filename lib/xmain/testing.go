package xmain

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"oss.terrastruct.com/cmdlog"
	"oss.terrastruct.com/xos"
)

// TestState runs a RunFunc in-process against captured stdio.
type TestState struct {
	Run  RunFunc
	Env  *xos.Env
	Args []string
	PWD  string

	Stdin  io.Reader
	Stdout *Buffer
	Stderr *Buffer

	cancel context.CancelFunc
	done   chan error
}

func (ts *TestState) Start(tb testing.TB, ctx context.Context) {
	tb.Helper()

	if ts.Env == nil {
		ts.Env = xos.NewEnv(nil)
	}
	if ts.Stdin == nil {
		ts.Stdin = bytes.NewReader(nil)
	}
	if ts.Stdout == nil {
		ts.Stdout = &Buffer{}
	}
	if ts.Stderr == nil {
		ts.Stderr = &Buffer{}
	}

	name := ""
	args := ts.Args
	if len(args) > 0 {
		name = args[0]
		args = args[1:]
	}

	ms := &State{
		Name:   name,
		Stdin:  ts.Stdin,
		Stdout: ts.Stdout,
		Stderr: ts.Stderr,
		Env:    ts.Env,
		PWD:    ts.PWD,
	}
	ms.Log = cmdlog.NewTB(ts.Env, tb)
	ms.Opts = NewOpts(ms.Env, ms.Log, args)

	ctx, ts.cancel = context.WithCancel(ctx)
	ts.done = make(chan error, 1)
	go func() {
		defer close(ts.done)
		ts.done <- ms.Main(ctx, make(chan os.Signal), ts.Run)
	}()
}

func (ts *TestState) Wait(ctx context.Context) error {
	select {
	case err := <-ts.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (ts *TestState) Cleanup(tb testing.TB) {
	tb.Helper()

	ts.cancel()
	err := <-ts.done
	if err != nil && !errors.Is(err, context.Canceled) {
		tb.Logf("run exited with: %v", err)
	}
}

// Buffer is a concurrency safe bytes.Buffer whose Close is a no-op.
type Buffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *Buffer) Close() error {
	return nil
}

func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.b.Bytes()...)
}
