package app_test

import (
	"testing"

	"github.com/Dommgrand/notesapp/internal/app"

	"github.com/stretchr/testify/assert"
)

func TestRegistryReturnsSameWorkflowPerUser(t *testing.T) {
	registry := app.NewRegistry(new(mockNoteRepository), new(mockBlobStore))

	first := registry.Get("user-1")
	second := registry.Get("user-1")
	other := registry.Get("user-2")

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
}

func TestRegistryDropResetsState(t *testing.T) {
	registry := app.NewRegistry(new(mockNoteRepository), new(mockBlobStore))

	flow := registry.Get("user-1")
	flow.EditDraft("draft", "body")

	registry.Drop("user-1")

	fresh := registry.Get("user-1")
	assert.NotSame(t, flow, fresh)
	assert.Empty(t, fresh.Snapshot().Draft.Title)
}

func TestRegistryDropUnknownUser(t *testing.T) {
	registry := app.NewRegistry(new(mockNoteRepository), new(mockBlobStore))

	assert.NotPanics(t, func() {
		registry.Drop("nobody")
	})
}
