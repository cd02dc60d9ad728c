package services_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drift-desk/driftdesk/internal/models"
	"github.com/drift-desk/driftdesk/internal/services"
)

func TestFormatStatus(t *testing.T) {
	assert.Equal(t, "Open", services.FormatStatus("open"))
	assert.Equal(t, "In Progress", services.FormatStatus("in_progress"))
	assert.Equal(t, "Resolved", services.FormatStatus("resolved"))
}

func TestLogDriftCreationSnapshot(t *testing.T) {
	gdb := setupDB(t)
	alice := seedUser(t, gdb, "alice")
	drift := seedDrift(t, gdb, alice.ID, nil)

	require.NoError(t, services.LogDriftCreation(gdb, drift))

	var event models.Event
	require.NoError(t, gdb.First(&event).Error)
	assert.Equal(t, models.EventCreated, event.EventType)
	assert.Equal(t, "Created drift: Seeded drift", event.Description)
	assert.Empty(t, event.OldValue)

	var snapshot map[string]interface{}
	require.NoError(t, json.Unmarshal(event.NewValue, &snapshot))
	assert.Equal(t, "Seeded drift", snapshot["title"])
	assert.Equal(t, models.PriorityMedium, snapshot["priority"])
}

func TestLogDriftUpdateStatusChange(t *testing.T) {
	gdb := setupDB(t)
	alice := seedUser(t, gdb, "alice")
	drift := seedDrift(t, gdb, alice.ID, nil)

	err := services.LogDriftUpdate(gdb, drift.ID, alice.ID,
		map[string]interface{}{"status": models.StatusInProgress},
		map[string]interface{}{"status": models.StatusResolved},
	)
	require.NoError(t, err)

	var event models.Event
	require.NoError(t, gdb.First(&event).Error)
	assert.Equal(t, models.EventStatusChanged, event.EventType)
	assert.Equal(t, "Status changed from In Progress to Resolved", event.Description)
}

func TestLogCommentAddedTruncatesDescription(t *testing.T) {
	gdb := setupDB(t)
	alice := seedUser(t, gdb, "alice")
	drift := seedDrift(t, gdb, alice.ID, nil)

	content := strings.Repeat("a", 150)
	require.NoError(t, services.LogCommentAdded(gdb, drift.ID, alice.ID, content))

	var event models.Event
	require.NoError(t, gdb.First(&event).Error)
	assert.Equal(t, "Added comment: "+strings.Repeat("a", 100)+"...", event.Description)

	// The structured value keeps the full content.
	var value map[string]string
	require.NoError(t, json.Unmarshal(event.NewValue, &value))
	assert.Equal(t, content, value["comment_content"])
}

func TestLogCommentAddedShortContentNotTruncated(t *testing.T) {
	gdb := setupDB(t)
	alice := seedUser(t, gdb, "alice")
	drift := seedDrift(t, gdb, alice.ID, nil)

	require.NoError(t, services.LogCommentAdded(gdb, drift.ID, alice.ID, "short"))

	var event models.Event
	require.NoError(t, gdb.First(&event).Error)
	assert.Equal(t, "Added comment: short", event.Description)
}

func TestDriftEventsNewestFirst(t *testing.T) {
	gdb := setupDB(t)
	alice := seedUser(t, gdb, "alice")
	drift := seedDrift(t, gdb, alice.ID, nil)

	for _, description := range []string{"first", "second", "third"} {
		_, err := services.CreateEvent(gdb, drift.ID, alice.ID, models.EventUpdated, description, nil, nil)
		require.NoError(t, err)
	}

	events, total, err := services.DriftEvents(gdb, drift.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, events, 2)
	assert.Equal(t, "third", events[0].Description)
	assert.Equal(t, "second", events[1].Description)
}

func TestUserEventsFiltersByActor(t *testing.T) {
	gdb := setupDB(t)
	alice := seedUser(t, gdb, "alice")
	bob := seedUser(t, gdb, "bob")
	drift := seedDrift(t, gdb, alice.ID, nil)

	_, err := services.CreateEvent(gdb, drift.ID, alice.ID, models.EventUpdated, "by alice", nil, nil)
	require.NoError(t, err)
	_, err = services.CreateEvent(gdb, drift.ID, bob.ID, models.EventUpdated, "by bob", nil, nil)
	require.NoError(t, err)

	events, total, err := services.UserEvents(gdb, bob.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, events, 1)
	assert.Equal(t, "by bob", events[0].Description)
}
