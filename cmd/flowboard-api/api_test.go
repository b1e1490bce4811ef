package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/flowboard/flowboard/pkg/channels/gochannel"
	"github.com/flowboard/flowboard/pkg/eventbus"
	"github.com/flowboard/flowboard/pkg/events"
	"github.com/flowboard/flowboard/pkg/persistence/file"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T, bus eventbus.EventBus) *fiber.App {
	t.Helper()

	api := NewAPI(slog.Default(), file.NewPersistence(t.TempDir()), bus, nil)

	return api.App()
}

func get(t *testing.T, app *fiber.App, path string) (int, string) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestAPI_RootEndpoint(t *testing.T) {
	t.Parallel()

	status, body := get(t, setupTestApp(t, nil), "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Flowboard API", body)
}

func TestAPI_Probes(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t, nil)

	for _, path := range []string{"/livez", "/readyz"} {
		status, body := get(t, app, path)
		assert.Equal(t, http.StatusOK, status, path)
		assert.Equal(t, "OK", body, path)
	}
}

func TestAPI_ReadinessFailsWithoutStorage(t *testing.T) {
	t.Parallel()

	api := NewAPI(slog.Default(), file.NewPersistence(t.TempDir()+"/missing"), nil, nil)

	status, _ := get(t, api.App(), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestAPI_GetWorkflows_Empty(t *testing.T) {
	t.Parallel()

	status, body := get(t, setupTestApp(t, nil), "/workflows")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"workflows": [], "total_count": 0}`, body)
}

func TestAPI_PublishesLifecycleEvents(t *testing.T) {
	t.Parallel()

	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	t.Cleanup(func() { _ = bus.Close() })

	created := make(chan *events.WorkflowCreated, 1)

	require.NoError(t, bus.Handle(events.WorkflowCreatedEvent, func(_ context.Context, event any) error {
		created <- event.(*events.WorkflowCreated)

		return nil
	}))
	require.NoError(t, bus.Subscribe(t.Context()))

	app := setupTestApp(t, bus)

	req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewBufferString(`{"name": "Onboarding", "template": "employee-onboarding"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	select {
	case event := <-created:
		assert.Equal(t, "employee-onboarding", event.Template)
		assert.Equal(t, 6, event.NodeCount)
	case <-time.After(5 * time.Second):
		t.Fatal("workflow.created was not delivered")
	}
}

func TestAuditAttrs(t *testing.T) {
	t.Parallel()

	attrs := auditAttrs(&events.WorkflowDeleted{BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, "wf-1")})
	assert.Equal(t, []any{"event_type", events.WorkflowDeletedEvent, "workflow_id", "wf-1"}, attrs)

	assert.Equal(t, []any{"event", "string"}, auditAttrs("unexpected"))
}

func TestSubscribeAuditLog(t *testing.T) {
	t.Parallel()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	t.Cleanup(func() { _ = bus.Close() })

	var out syncBuffer

	logger := slog.New(slog.NewTextHandler(&out, nil))

	require.NoError(t, subscribeAuditLog(t.Context(), bus, logger))

	event := events.WorkflowSaved{
		BaseEvent: events.NewBaseEvent(events.WorkflowSavedEvent, "wf-1"),
		Name:      "Onboarding",
		NodeCount: 2,
	}
	require.NoError(t, bus.Publish(t.Context(), "wf-1", event))

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "workflow_id=wf-1")
	}, 5*time.Second, 10*time.Millisecond)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}
