// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package workerpool_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/atomix"

	"github.com/ashgrove-systems/hazardq"
	"github.com/ashgrove-systems/hazardq/workerpool"
)

// TestSubmitWaitShutdown mirrors original_source/test.cpp's "submit N
// tasks, wait for completion, shut down cleanly" scenario.
func TestSubmitWaitShutdown(t *testing.T) {
	ctx := context.Background()
	pool := workerpool.New(ctx, 4, hazardq.Default())

	const n = 200
	var completed atomix.Int32
	for i := 0; i < n; i++ {
		if err := pool.Submit(func() { completed.Add(1) }); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	pool.Wait()

	if got := completed.Load(); got != n {
		t.Fatalf("completed = %d, want %d", got, n)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
}

func TestSubmitAfterShutdownReturnsErrClosed(t *testing.T) {
	ctx := context.Background()
	pool := workerpool.New(ctx, 2, hazardq.Default())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	if err := pool.Submit(func() {}); err != hazardq.ErrClosed {
		t.Fatalf("Submit after Shutdown = %v, want ErrClosed", err)
	}
}

func TestDrainOnShutdownRunsQueuedTasks(t *testing.T) {
	ctx := context.Background()
	pool := workerpool.New(ctx, 1, hazardq.Default(), workerpool.DrainOnShutdown(true))

	const n = 50
	var completed atomix.Int32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		if err := pool.Submit(func() {
			defer wg.Done()
			completed.Add(1)
		}); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("Shutdown with DrainOnShutdown failed: %v", err)
	}

	wg.Wait()
	if got := completed.Load(); got != n {
		t.Fatalf("completed = %d, want %d (DrainOnShutdown should run every queued task)", got, n)
	}
}

func TestSubmitCtxClosesDoneAfterRun(t *testing.T) {
	ctx := context.Background()
	pool := workerpool.New(ctx, 2, hazardq.Default())
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		pool.Shutdown(shutdownCtx)
	}()

	ran := make(chan struct{}, 1)
	done, err := pool.SubmitCtx(context.Background(), func() {
		ran <- struct{}{}
	})
	if err != nil {
		t.Fatalf("SubmitCtx failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for SubmitCtx's done channel")
	}

	select {
	case <-ran:
	default:
		t.Fatal("task body never ran before done closed")
	}
}

func TestPoolWorkersExitOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := workerpool.New(ctx, 3, hazardq.Default())

	var completed atomix.Int32
	for i := 0; i < 10; i++ {
		pool.Submit(func() { completed.Add(1) })
	}
	pool.Wait()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := pool.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("Shutdown after external cancel should still join cleanly: %v", err)
	}
}
