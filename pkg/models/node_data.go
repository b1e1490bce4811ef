package models

// Well-known data keys shared by every node kind.
const (
	DataKeyLabel       = "label"
	DataKeyDescription = "description"
	DataKeyConfigType  = "configType"
)

// Well-known data keys understood for specific kinds.
const (
	DataKeySchedule    = "schedule"    // Trigger
	DataKeyExpression  = "expression"  // Condition
	DataKeyDuration    = "duration"    // Delay
	DataKeyApprover    = "approver"    // Approval
	DataKeyWorkflowID  = "workflowId"  // SubWorkflow
	DataKeyRetryPolicy = "retryPolicy" // ErrorHandler
)

var defaultConfigTypes = map[NodeKind]string{
	NodeKindTrigger:      "webhook",
	NodeKindAction:       "api",
	NodeKindCondition:    "condition",
	NodeKindDelay:        "timer",
	NodeKindApproval:     "manual",
	NodeKindSubWorkflow:  "workflow",
	NodeKindErrorHandler: "retry",
}

// NodeData is the open-ended payload of a node. New node kinds add keys,
// never schema.
type NodeData map[string]any

// DefaultData returns the initial payload for a freshly added node of the given kind.
func DefaultData(kind NodeKind) NodeData {
	return NodeData{
		DataKeyLabel:       string(kind),
		DataKeyDescription: "",
		DataKeyConfigType:  defaultConfigTypes[kind],
	}
}

// WithDefaults returns a copy of d where every key missing from d is filled
// from the defaults of kind. A nil value counts as missing.
func (d NodeData) WithDefaults(kind NodeKind) NodeData {
	out := d.Clone()
	if out == nil {
		out = NodeData{}
	}

	for key, value := range out {
		if value == nil {
			delete(out, key)
		}
	}

	for key, value := range DefaultData(kind) {
		if _, ok := out[key]; !ok {
			out[key] = value
		}
	}

	return out
}

// Merge returns a copy of d with the keys of patch applied on top.
// A nil value in patch removes the key.
func (d NodeData) Merge(patch NodeData) NodeData {
	out := d.Clone()
	if out == nil {
		out = NodeData{}
	}

	for key, value := range patch {
		if value == nil {
			delete(out, key)

			continue
		}

		out[key] = cloneValue(value)
	}

	return out
}

// Clone returns a deep copy of d.
func (d NodeData) Clone() NodeData {
	if d == nil {
		return nil
	}

	return NodeData(cloneMap(d))
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}

	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = cloneValue(value)
	}

	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneMap(v)
	case NodeData:
		return NodeData(cloneMap(v))
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}

		return out
	case []string:
		out := make([]string, len(v))
		copy(out, v)

		return out
	default:
		return v
	}
}
