package orchestration

import "fmt"

// FlowContext carries state between steps: Input is what the caller
// supplied, Process is scratch space steps share, Output is what the flow
// returns.
type FlowContext struct {
	Input   map[string]any
	Process map[string]any
	Output  map[string]any
}

func NewFlowContext(input map[string]any) *FlowContext {
	return &FlowContext{
		Input:   input,
		Process: make(map[string]any),
		Output:  make(map[string]any),
	}
}

func (fc *FlowContext) ExtractString(key string) string {
	if v, ok := fc.Input[key].(string); ok {
		return v
	}
	return ""
}

func MissingParamErr(paramName string) error {
	return fmt.Errorf("required param [%v] is missing", paramName)
}
