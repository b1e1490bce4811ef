//go:build integration

package web_test

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence/postgresql"
	"github.com/flowboard/flowboard/pkg/services"
	"github.com/flowboard/flowboard/pkg/templates"
	"github.com/flowboard/flowboard/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func setupIntegrationApp(t *testing.T) *fiber.App {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("flowboard_web"),
		postgres.WithUsername("flowboard"),
		postgres.WithPassword("flowboard"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)

	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	databaseURL, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	persistence, err := postgresql.NewPersistence(ctx, slog.Default(), databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() { _ = persistence.Close(context.Background()) })

	handlers := web.NewAPIHandlers(
		services.NewWorkflow(persistence),
		services.NewEditor(persistence),
		validator.New(validator.WithRequiredStructEnabled()),
	)

	app := fiber.New()
	handlers.Register(app)

	return app
}

func TestWorkflowEditing_Integration(t *testing.T) {
	app := setupIntegrationApp(t)

	created := createWorkflow(t, app, templates.EmployeeOnboarding)
	base := "/workflows/" + created.ID

	status, body := doRequest(t, app, http.MethodPost, base+"/nodes", map[string]any{
		"kind":     "Delay",
		"position": map[string]any{"x": 600, "y": 470},
		"data":     map[string]any{"duration": "48h"},
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	delay := decode[models.Node](t, body)

	status, body = doRequest(t, app, http.MethodPost, base+"/edges", web.ConnectRequest{
		Source: created.Nodes[len(created.Nodes)-1].ID,
		Target: delay.ID,
		Label:  "wait",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = doRequest(t, app, http.MethodPost, base+"/save", nil)
	require.Equal(t, http.StatusOK, status, string(body))

	status, _ = doRequest(t, app, http.MethodPost, base+"/discard", nil)
	require.Equal(t, http.StatusNoContent, status)

	status, body = doRequest(t, app, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, status)

	stored := decode[*models.WorkflowDefinition](t, body)
	assert.Len(t, stored.Nodes, len(created.Nodes)+1)
	assert.Len(t, stored.Edges, len(created.Edges)+1)
	assert.Equal(t, "48h", stored.NodeByID(delay.ID).Data[models.DataKeyDuration])
	assert.Equal(t, created.CreatedAt.Unix(), stored.CreatedAt.Unix())

	status, _ = doRequest(t, app, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = doRequest(t, app, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
