package queue

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestJobsRunAndReportErrors(t *testing.T) {
	rqm := NewRequestQueueManager(4, 2, nil)
	defer rqm.Shutdown()

	var ran int32
	want := errors.New("boom")

	errc := make(chan error, 1)
	rqm.EnqueueJob(Job{Fn: func() error {
		atomic.AddInt32(&ran, 1)
		return want
	}, Errc: errc})

	if err := <-errc; !errors.Is(err, want) {
		t.Fatalf("expected job error, got %v", err)
	}
	if atomic.LoadInt32(&ran) != 1 {
		t.Fatal("job did not run")
	}
}

func TestPanickingJobDoesNotKillWorker(t *testing.T) {
	rqm := NewRequestQueueManager(1, 1, nil)
	defer rqm.Shutdown()

	errc := make(chan error, 1)
	rqm.EnqueueJob(Job{Fn: func() error { panic("bad handler") }, Errc: errc})

	var panicErr *PanicError
	if err := <-errc; !errors.As(err, &panicErr) {
		t.Fatalf("expected PanicError, got %v", err)
	}

	rqm.EnqueueJob(Job{Fn: func() error { return nil }, Errc: errc})
	if err := <-errc; err != nil {
		t.Fatalf("worker should keep serving, got %v", err)
	}
}
