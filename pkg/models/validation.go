package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/robfig/cron/v3"
)

// ErrInvalidNodeData indicates a well-known data key holds a value of the wrong shape.
var ErrInvalidNodeData = errors.New("invalid node data")

var retryPolicies = []string{"none", "retry", "escalate"}

// DataIssue describes one well-known key that failed its type check.
type DataIssue struct {
	NodeID  string `json:"node_id,omitempty"`
	Key     string `json:"key"`
	Message string `json:"message"`
}

func (i DataIssue) String() string {
	if i.NodeID != "" {
		return fmt.Sprintf("node %s: %s: %s", i.NodeID, i.Key, i.Message)
	}

	return fmt.Sprintf("%s: %s", i.Key, i.Message)
}

// DataValidationError collects every issue found in one validation pass.
type DataValidationError struct {
	Issues []DataIssue
}

func (e *DataValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}

	return fmt.Sprintf("%v: %s", ErrInvalidNodeData, strings.Join(parts, "; "))
}

func (e *DataValidationError) Unwrap() error {
	return ErrInvalidNodeData
}

// ValidateNodeData type-checks the well-known keys of data for the given kind.
// Keys are optional; only present keys are checked. Unknown keys are ignored.
func ValidateNodeData(kind NodeKind, data NodeData) []DataIssue {
	var issues []DataIssue

	for _, key := range []string{DataKeyLabel, DataKeyDescription, DataKeyConfigType} {
		if issue, ok := checkString(data, key); !ok {
			issues = append(issues, issue)
		}
	}

	switch kind {
	case NodeKindTrigger:
		if spec, present, issue := stringValue(data, DataKeySchedule); issue != nil {
			issues = append(issues, *issue)
		} else if present {
			if _, err := cron.ParseStandard(spec); err != nil {
				issues = append(issues, DataIssue{Key: DataKeySchedule, Message: "invalid cron expression: " + err.Error()})
			}
		}
	case NodeKindCondition:
		if expression, present, issue := stringValue(data, DataKeyExpression); issue != nil {
			issues = append(issues, *issue)
		} else if present {
			if _, err := expr.Compile(expression, expr.AllowUndefinedVariables()); err != nil {
				issues = append(issues, DataIssue{Key: DataKeyExpression, Message: "invalid expression: " + err.Error()})
			}
		}
	case NodeKindDelay:
		if raw, present, issue := stringValue(data, DataKeyDuration); issue != nil {
			issues = append(issues, *issue)
		} else if present {
			duration, err := time.ParseDuration(raw)
			if err != nil {
				issues = append(issues, DataIssue{Key: DataKeyDuration, Message: "invalid duration: " + err.Error()})
			} else if duration <= 0 {
				issues = append(issues, DataIssue{Key: DataKeyDuration, Message: "duration must be positive"})
			}
		}
	case NodeKindApproval:
		if issue, ok := checkString(data, DataKeyApprover); !ok {
			issues = append(issues, issue)
		}
	case NodeKindSubWorkflow:
		if id, present, issue := stringValue(data, DataKeyWorkflowID); issue != nil {
			issues = append(issues, *issue)
		} else if present && strings.TrimSpace(id) == "" {
			issues = append(issues, DataIssue{Key: DataKeyWorkflowID, Message: "must not be empty"})
		}
	case NodeKindErrorHandler:
		if policy, present, issue := stringValue(data, DataKeyRetryPolicy); issue != nil {
			issues = append(issues, *issue)
		} else if present && !contains(retryPolicies, policy) {
			issues = append(issues, DataIssue{
				Key:     DataKeyRetryPolicy,
				Message: fmt.Sprintf("must be one of %s", strings.Join(retryPolicies, ", ")),
			})
		}
	}

	return issues
}

// ValidateDefinitionData runs ValidateNodeData over every node of the definition.
// It returns a *DataValidationError when at least one issue is found.
func ValidateDefinitionData(definition *WorkflowDefinition) error {
	var issues []DataIssue

	for _, node := range definition.Nodes {
		for _, issue := range ValidateNodeData(node.Kind, node.Data) {
			issue.NodeID = node.ID
			issues = append(issues, issue)
		}
	}

	if len(issues) > 0 {
		return &DataValidationError{Issues: issues}
	}

	return nil
}

func stringValue(data NodeData, key string) (string, bool, *DataIssue) {
	raw, ok := data[key]
	if !ok {
		return "", false, nil
	}

	value, ok := raw.(string)
	if !ok {
		return "", true, &DataIssue{Key: key, Message: fmt.Sprintf("must be a string, got %T", raw)}
	}

	return value, true, nil
}

func checkString(data NodeData, key string) (DataIssue, bool) {
	_, _, issue := stringValue(data, key)
	if issue != nil {
		return *issue, false
	}

	return DataIssue{}, true
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}

	return false
}
