// Package orchestration runs multi-step scheduling pipelines. Steps execute
// in order and the pipeline stops at the first failure; each step is written
// to be idempotent so a failed pipeline can be retried end to end.
package orchestration

import (
	"context"
	"fmt"

	"workbay/pkg/logger"
)

type Step struct {
	Name    string
	Execute func(ctx context.Context, fc *FlowContext) error
}

func NewStep(name string, execute func(ctx context.Context, fc *FlowContext) error) *Step {
	return &Step{
		Name:    name,
		Execute: execute,
	}
}

type Flow interface {
	Name() string
	Steps() []*Step
}

type Engine struct {
	flows map[string]Flow
	log   *logger.Logger
}

func NewEngine(log *logger.Logger, flows ...Flow) *Engine {
	m := map[string]Flow{}
	for _, f := range flows {
		m[f.Name()] = f
	}
	return &Engine{flows: m, log: log}
}

// Run executes the named flow step by step, stopping at the first error.
// The failing step's error is returned unwrapped so its classification
// survives to the caller.
func (e *Engine) Run(ctx context.Context, flowName string, fc *FlowContext) error {
	f, exists := e.flows[flowName]
	if !exists {
		return fmt.Errorf("unsupported flow: %v", flowName)
	}

	for _, step := range f.Steps() {
		if err := step.Execute(ctx, fc); err != nil {
			e.log.Error("Flow step failed",
				"flow", flowName,
				"step", step.Name,
				"error", err,
			)
			return err
		}
		e.log.Debug("Flow step completed", "flow", flowName, "step", step.Name)
	}
	return nil
}
