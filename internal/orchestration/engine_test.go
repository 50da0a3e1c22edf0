package orchestration

import (
	"context"
	"errors"
	"testing"

	apperrors "workbay/pkg/errors"
	"workbay/pkg/logger"
)

type stubFlow struct {
	name  string
	steps []*Step
}

func (f *stubFlow) Name() string   { return f.name }
func (f *stubFlow) Steps() []*Step { return f.steps }

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func TestEngineRun_ExecutesStepsInOrder(t *testing.T) {
	var order []string
	flow := &stubFlow{
		name: "demo",
		steps: []*Step{
			NewStep("first", func(ctx context.Context, fc *FlowContext) error {
				order = append(order, "first")
				return nil
			}),
			NewStep("second", func(ctx context.Context, fc *FlowContext) error {
				order = append(order, "second")
				return nil
			}),
		},
	}
	engine := NewEngine(testLogger(), flow)

	if err := engine.Run(context.Background(), "demo", NewFlowContext(nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("step order = %v", order)
	}
}

func TestEngineRun_StopsAtFirstFailure(t *testing.T) {
	stepErr := apperrors.Conflict("resource busy")
	thirdRan := false
	flow := &stubFlow{
		name: "demo",
		steps: []*Step{
			NewStep("first", func(ctx context.Context, fc *FlowContext) error { return nil }),
			NewStep("second", func(ctx context.Context, fc *FlowContext) error { return stepErr }),
			NewStep("third", func(ctx context.Context, fc *FlowContext) error {
				thirdRan = true
				return nil
			}),
		},
	}
	engine := NewEngine(testLogger(), flow)

	err := engine.Run(context.Background(), "demo", NewFlowContext(nil))
	if thirdRan {
		t.Error("steps after a failure must not run")
	}
	// The step error comes back unwrapped so callers keep its classification.
	if !errors.Is(err, stepErr) {
		t.Errorf("error = %v, want the step error itself", err)
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("error code = %s, want conflict", appErr.Code)
	}
}

func TestEngineRun_UnknownFlow(t *testing.T) {
	engine := NewEngine(testLogger())
	if err := engine.Run(context.Background(), "nope", NewFlowContext(nil)); err == nil {
		t.Fatal("expected an error for an unregistered flow")
	}
}

func TestFlowContext_ExtractString(t *testing.T) {
	fc := NewFlowContext(map[string]any{
		"tenant_id": "tenant-1",
		"count":     3,
	})

	if got := fc.ExtractString("tenant_id"); got != "tenant-1" {
		t.Errorf("ExtractString(tenant_id) = %q", got)
	}
	if got := fc.ExtractString("count"); got != "" {
		t.Errorf("non-string input must extract as empty, got %q", got)
	}
	if got := fc.ExtractString("missing"); got != "" {
		t.Errorf("missing key must extract as empty, got %q", got)
	}
}
