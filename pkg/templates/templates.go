// Package templates holds the named starter graphs a new workflow can be
// created from.
package templates

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/flowboard/flowboard/pkg/graph"
	"github.com/flowboard/flowboard/pkg/models"
)

// ErrUnknownTemplate is returned by Lookup for a name no template is registered under.
var ErrUnknownTemplate = errors.New("unknown template")

const (
	Blank              = "blank"
	EmployeeOnboarding = "employee-onboarding"
	AccessRequest      = "access-request"
)

const (
	colorNeutral = "#94A3B8"
	colorYes     = "#3B82F6"
	colorNo      = "#10B981"
	colorFailure = "#EF4444"
)

// Template seeds an empty graph with nodes and edges.
type Template struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`

	build func(b *builder)
}

// Apply adds the template's nodes and edges to g through the graph API, so
// per-kind defaults apply to every seeded node.
func (t Template) Apply(g *graph.Graph) error {
	if t.build == nil {
		return nil
	}

	b := &builder{graph: g, ids: make(map[string]string)}
	t.build(b)

	if b.err != nil {
		return fmt.Errorf("template %s: %w", t.Name, b.err)
	}

	return nil
}

var registry = map[string]Template{
	Blank: {
		Name:        Blank,
		Title:       "Blank",
		Description: "An empty canvas",
	},
	EmployeeOnboarding: {
		Name:        EmployeeOnboarding,
		Title:       "Employee Onboarding",
		Description: "Automated workflow for new employee setup",
		build:       employeeOnboarding,
	},
	AccessRequest: {
		Name:        AccessRequest,
		Title:       "Access Request",
		Description: "Manager approval before provisioning system access",
		build:       accessRequest,
	},
}

// Lookup returns the template registered under name.
func Lookup(name string) (Template, error) {
	tmpl, ok := registry[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}

	return tmpl, nil
}

// All returns every registered template ordered by name.
func All() []Template {
	out := make([]Template, 0, len(registry))
	for _, name := range slices.Sorted(maps.Keys(registry)) {
		out = append(out, registry[name])
	}

	return out
}

func employeeOnboarding(b *builder) {
	b.node("trigger", models.NodeKindTrigger, 250, 30, models.NodeData{
		models.DataKeyLabel:       "New Employee Added",
		models.DataKeyDescription: "Triggered when HR adds new employee",
		models.DataKeyConfigType:  "webhook",
	})
	b.node("accounts", models.NodeKindAction, 250, 140, models.NodeData{
		models.DataKeyLabel:       "Create Accounts",
		models.DataKeyDescription: "Create email, Slack, and system accounts",
		models.DataKeyConfigType:  "api",
	})
	b.node("equipment", models.NodeKindAction, 250, 250, models.NodeData{
		models.DataKeyLabel:       "Assign Equipment",
		models.DataKeyDescription: "Assign laptop and office equipment",
		models.DataKeyConfigType:  "database",
	})
	b.node("department", models.NodeKindCondition, 250, 360, models.NodeData{
		models.DataKeyLabel:       "Department Check",
		models.DataKeyDescription: "Check if employee is in IT department",
		models.DataKeyConfigType:  "condition",
		models.DataKeyExpression:  `department == "IT"`,
	})
	b.node("training", models.NodeKindAction, 120, 470, models.NodeData{
		models.DataKeyLabel:       "Schedule Training",
		models.DataKeyDescription: "Schedule IT-specific training",
		models.DataKeyConfigType:  "calendar",
	})
	b.node("welcome", models.NodeKindAction, 380, 470, models.NodeData{
		models.DataKeyLabel:       "Send Welcome Email",
		models.DataKeyDescription: "Send general welcome email",
		models.DataKeyConfigType:  "email",
	})

	b.edge("trigger", "accounts", "", colorNeutral, transition("Account Creation", "Transition to create user accounts"))
	b.edge("accounts", "equipment", "", colorNeutral, transition("Equipment Assignment", "Transition to assign equipment"))
	b.edge("equipment", "department", "", colorNeutral, transition("Department Check", "Transition to check department"))
	b.edge("department", "training", "Yes", colorYes,
		transition("IT Training Path", "Transition for IT department employees",
			models.TransitionCondition{ID: "cond1", Field: "department", Operator: "=", Value: "IT"}))
	b.edge("department", "welcome", "No", colorNo,
		transition("General Welcome", "Transition for non-IT department employees",
			models.TransitionCondition{ID: "cond2", Field: "department", Operator: "!=", Value: "IT"}))
}

func accessRequest(b *builder) {
	b.node("request", models.NodeKindTrigger, 250, 30, models.NodeData{
		models.DataKeyLabel:       "Access Requested",
		models.DataKeyDescription: "Employee submits an access request",
	})
	b.node("approval", models.NodeKindApproval, 250, 140, models.NodeData{
		models.DataKeyLabel:    "Manager Approval",
		models.DataKeyApprover: "manager",
	})
	b.node("reminder", models.NodeKindDelay, 500, 140, models.NodeData{
		models.DataKeyLabel:    "Wait for Reminder",
		models.DataKeyDuration: "24h",
	})
	b.node("decision", models.NodeKindCondition, 250, 250, models.NodeData{
		models.DataKeyLabel:      "Approved?",
		models.DataKeyExpression: `status == "approved"`,
	})
	b.node("provision", models.NodeKindSubWorkflow, 120, 360, models.NodeData{
		models.DataKeyLabel: "Provision Access",
	})
	b.node("notify", models.NodeKindAction, 380, 360, models.NodeData{
		models.DataKeyLabel:      "Notify Requester",
		models.DataKeyConfigType: "email",
	})
	b.node("escalate", models.NodeKindErrorHandler, 120, 470, models.NodeData{
		models.DataKeyLabel:       "Escalate Failure",
		models.DataKeyRetryPolicy: "escalate",
	})

	b.edge("request", "approval", "", colorNeutral, transition("Request Approval", ""))
	b.edge("approval", "reminder", "Timeout", colorNeutral, transition("Remind Approver", ""))
	b.edge("reminder", "approval", "", colorNeutral, transition("Ask Again", ""))
	b.edge("approval", "decision", "", colorNeutral, transition("Decision", ""))
	b.edge("decision", "provision", "Yes", colorYes,
		transition("Grant Access", "",
			models.TransitionCondition{ID: "cond1", Field: "status", Operator: "=", Value: "approved"}))
	b.edge("decision", "notify", "No", colorNo,
		transition("Reject", "",
			models.TransitionCondition{ID: "cond2", Field: "status", Operator: "!=", Value: "approved"}))

	failed := transition("On Failure", "Provisioning failed")
	failed.Status = models.TransitionStatusFailed
	b.edge("provision", "escalate", "Failed", colorFailure, failed)
}

func transition(label, description string, conditions ...models.TransitionCondition) *models.Transition {
	return &models.Transition{
		Label:          label,
		Description:    description,
		Conditions:     conditions,
		ConditionLogic: "AND",
		Priority:       1,
		Status:         models.TransitionStatusActive,
	}
}

// builder remembers the first error and turns later calls into no-ops.
type builder struct {
	graph *graph.Graph
	ids   map[string]string
	err   error
}

func (b *builder) node(key string, kind models.NodeKind, x, y float64, data models.NodeData) {
	if b.err != nil {
		return
	}

	node, err := b.graph.AddNode(kind, models.Position{X: x, Y: y}, data)
	if err != nil {
		b.err = err

		return
	}

	b.ids[key] = node.ID
}

func (b *builder) edge(from, to, label, color string, tr *models.Transition) {
	if b.err != nil {
		return
	}

	_, b.err = b.graph.Connect(b.ids[from], b.ids[to], graph.EdgeMetadata{
		Label:      label,
		Style:      map[string]any{"stroke": color, "strokeWidth": float64(2)},
		Transition: tr,
	})
}
