package executor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/orlanda/accounts/db"
)

type handlerFunc func(ctx context.Context, job db.Job) error

func (f handlerFunc) Handle(ctx context.Context, job db.Job) error {
	return f(ctx, job)
}

func TestExecuteDispatchesByJobType(t *testing.T) {
	var handled string
	exec := NewExecutor(map[string]JobHandler{
		"job_a": handlerFunc(func(ctx context.Context, job db.Job) error {
			handled = "job_a"
			return nil
		}),
		"job_b": handlerFunc(func(ctx context.Context, job db.Job) error {
			handled = "job_b"
			return nil
		}),
	})

	if err := exec.Execute(context.Background(), db.Job{JobType: "job_b"}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if handled != "job_b" {
		t.Errorf("handled %q, want job_b", handled)
	}
}

func TestExecutePropagatesHandlerError(t *testing.T) {
	boom := errors.New("boom")
	exec := NewExecutor(map[string]JobHandler{
		"job_a": handlerFunc(func(ctx context.Context, job db.Job) error {
			return boom
		}),
	})

	if err := exec.Execute(context.Background(), db.Job{JobType: "job_a"}); !errors.Is(err, boom) {
		t.Errorf("expected handler error, got %v", err)
	}
}

func TestExecuteUnknownJobType(t *testing.T) {
	exec := NewExecutor(nil)

	err := exec.Execute(context.Background(), db.Job{JobType: "job_unknown"})
	if err == nil {
		t.Fatal("expected error for unregistered job type")
	}
	if !strings.Contains(err.Error(), "job_unknown") {
		t.Errorf("error should name the job type: %v", err)
	}
}

func TestRegisterReplacesHandler(t *testing.T) {
	exec := NewExecutor(nil)
	called := false
	exec.Register("job_a", handlerFunc(func(ctx context.Context, job db.Job) error {
		called = true
		return nil
	}))

	if err := exec.Execute(context.Background(), db.Job{JobType: "job_a"}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !called {
		t.Error("registered handler not invoked")
	}
}
