package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drift-desk/driftdesk/db"
	"github.com/drift-desk/driftdesk/internal/models"
)

func TestCreateDriftDefaults(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "alice", models.RoleUser, true)

	w := doRequest(t, r, http.MethodPost, "/api/drifts", map[string]interface{}{
		"title": "Build fails",
	}, basicAuth("alice"))

	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, models.StatusOpen, body["status"])
	assert.Equal(t, models.PriorityMedium, body["priority"])
	assert.Equal(t, "alice", body["created_by"].(map[string]interface{})["username"])
	assert.Nil(t, body["assigned_to"])

	// Creation is audited.
	var eventCount int64
	require.NoError(t, db.DB.Model(&models.Event{}).Where("event_type = ?", models.EventCreated).Count(&eventCount).Error)
	assert.Equal(t, int64(1), eventCount)
}

func TestCreateDriftUnknownAssigneeWritesNothing(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "alice", models.RoleUser, true)

	w := doRequest(t, r, http.MethodPost, "/api/drifts", map[string]interface{}{
		"title":          "Ghost assignment",
		"assigned_to_id": 9999,
	}, basicAuth("alice"))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var driftCount, eventCount int64
	require.NoError(t, db.DB.Model(&models.Drift{}).Count(&driftCount).Error)
	require.NoError(t, db.DB.Model(&models.Event{}).Count(&eventCount).Error)
	assert.Zero(t, driftCount)
	assert.Zero(t, eventCount)
}

func TestCreateDriftNotifiesAssignee(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "alice", models.RoleUser, true)
	bob := createTestUser(t, "bob", models.RoleUser, true)

	w := doRequest(t, r, http.MethodPost, "/api/drifts", map[string]interface{}{
		"title":          "Handed off",
		"assigned_to_id": bob.ID,
	}, basicAuth("alice"))

	require.Equal(t, http.StatusCreated, w.Code)

	var notifications []models.Notification
	require.NoError(t, db.DB.Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, bob.ID, notifications[0].UserID)
	assert.Equal(t, "Assigned to drift", notifications[0].Title)
	assert.False(t, notifications[0].IsRead)
}

func TestListDriftsFilterByPriority(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "alice", models.RoleUser, true)

	for _, req := range []map[string]interface{}{
		{"title": "Build fails", "priority": models.PriorityHigh},
		{"title": "Minor typo", "priority": models.PriorityLow},
	} {
		w := doRequest(t, r, http.MethodPost, "/api/drifts", req, basicAuth("alice"))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doRequest(t, r, http.MethodGet, "/api/drifts?priority=high", nil, basicAuth("alice"))
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["total"])

	drifts := body["drifts"].([]interface{})
	require.Len(t, drifts, 1)

	item := drifts[0].(map[string]interface{})
	assert.Equal(t, "Build fails", item["title"])
	assert.Equal(t, float64(0), item["comment_count"])
	assert.Equal(t, float64(1), item["event_count"])
}

func TestListDriftsPagination(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "alice", models.RoleUser, true)

	for i := 0; i < 5; i++ {
		w := doRequest(t, r, http.MethodPost, "/api/drifts", map[string]interface{}{
			"title": fmt.Sprintf("Drift %d", i),
		}, basicAuth("alice"))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doRequest(t, r, http.MethodGet, "/api/drifts?limit=2&offset=4&sort_by=id&sort_order=asc", nil, basicAuth("alice"))
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(5), body["total"])

	drifts := body["drifts"].([]interface{})
	require.Len(t, drifts, 1)
	assert.Equal(t, "Drift 4", drifts[0].(map[string]interface{})["title"])
}

func TestListDriftsSearch(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "alice", models.RoleUser, true)

	for _, title := range []string{"Login page crashes", "Export times out"} {
		w := doRequest(t, r, http.MethodPost, "/api/drifts", map[string]interface{}{"title": title}, basicAuth("alice"))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doRequest(t, r, http.MethodGet, "/api/drifts?search=LOGIN", nil, basicAuth("alice"))
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["total"])
}

func TestListDriftsRejectsUnknownSortKey(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "alice", models.RoleUser, true)

	w := doRequest(t, r, http.MethodGet, "/api/drifts?sort_by=password_hash", nil, basicAuth("alice"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDriftNotFound(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "alice", models.RoleUser, true)

	w := doRequest(t, r, http.MethodGet, "/api/drifts/9999", nil, basicAuth("alice"))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateDriftPartialFields(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "alice", models.RoleUser, true)

	w := doRequest(t, r, http.MethodPost, "/api/drifts", map[string]interface{}{
		"title":       "Original title",
		"description": "Original description",
	}, basicAuth("alice"))
	require.Equal(t, http.StatusCreated, w.Code)
	driftID := decodeBody(t, w)["id"].(float64)

	w = doRequest(t, r, http.MethodPatch, fmt.Sprintf("/api/drifts/%.0f", driftID), map[string]interface{}{
		"title": "New title",
	}, basicAuth("alice"))
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "New title", body["title"])
	assert.Equal(t, "Original description", body["description"])

	// One creation event plus exactly one field-update event.
	var events []models.Event
	require.NoError(t, db.DB.Order("id ASC").Find(&events).Error)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventUpdated, events[1].EventType)
	assert.Contains(t, events[1].Description, "Updated title")
}

func TestUpdateDriftResolveNotifiesCreatorAndAssignee(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "alice", models.RoleUser, true)
	bob := createTestUser(t, "bob", models.RoleUser, true)

	w := doRequest(t, r, http.MethodPost, "/api/drifts", map[string]interface{}{
		"title":          "Crash on save",
		"assigned_to_id": bob.ID,
	}, basicAuth("alice"))
	require.Equal(t, http.StatusCreated, w.Code)
	driftID := decodeBody(t, w)["id"].(float64)

	// Clear the assignment notification to isolate the transition.
	require.NoError(t, db.DB.Where("1 = 1").Delete(&models.Notification{}).Error)

	w = doRequest(t, r, http.MethodPatch, fmt.Sprintf("/api/drifts/%.0f", driftID), map[string]interface{}{
		"status": models.StatusResolved,
	}, basicAuth("alice"))
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, models.StatusResolved, body["status"])
	assert.NotNil(t, body["resolved_at"])

	var notifications []models.Notification
	require.NoError(t, db.DB.Order("id ASC").Find(&notifications).Error)
	require.Len(t, notifications, 2)

	recipients := []uint{notifications[0].UserID, notifications[1].UserID}
	assert.Contains(t, recipients, bob.ID)

	var event models.Event
	require.NoError(t, db.DB.Where("event_type = ?", models.EventStatusChanged).First(&event).Error)
	assert.Equal(t, "Status changed from Open to Resolved", event.Description)
}

func TestUpdateDriftCloseWithCreatorAsAssignee(t *testing.T) {
	r := setupTest(t)
	alice := createTestUser(t, "alice", models.RoleUser, true)

	w := doRequest(t, r, http.MethodPost, "/api/drifts", map[string]interface{}{
		"title":          "Self-assigned",
		"assigned_to_id": alice.ID,
	}, basicAuth("alice"))
	require.Equal(t, http.StatusCreated, w.Code)
	driftID := decodeBody(t, w)["id"].(float64)

	require.NoError(t, db.DB.Where("1 = 1").Delete(&models.Notification{}).Error)

	w = doRequest(t, r, http.MethodPatch, fmt.Sprintf("/api/drifts/%.0f", driftID), map[string]interface{}{
		"status": models.StatusClosed,
	}, basicAuth("alice"))
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.DB.Model(&models.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateDriftBadAssigneeLeavesDriftUntouched(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "alice", models.RoleUser, true)

	w := doRequest(t, r, http.MethodPost, "/api/drifts", map[string]interface{}{
		"title": "Stable title",
	}, basicAuth("alice"))
	require.Equal(t, http.StatusCreated, w.Code)
	driftID := decodeBody(t, w)["id"].(float64)

	w = doRequest(t, r, http.MethodPatch, fmt.Sprintf("/api/drifts/%.0f", driftID), map[string]interface{}{
		"title":          "Should not apply",
		"assigned_to_id": 9999,
	}, basicAuth("alice"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var drift models.Drift
	require.NoError(t, db.DB.First(&drift, uint(driftID)).Error)
	assert.Equal(t, "Stable title", drift.Title)
	assert.Nil(t, drift.AssignedToID)
}

func TestUpdateDriftUnassign(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "alice", models.RoleUser, true)
	bob := createTestUser(t, "bob", models.RoleUser, true)

	w := doRequest(t, r, http.MethodPost, "/api/drifts", map[string]interface{}{
		"title":          "Handed off",
		"assigned_to_id": bob.ID,
	}, basicAuth("alice"))
	require.Equal(t, http.StatusCreated, w.Code)
	driftID := decodeBody(t, w)["id"].(float64)

	w = doRequest(t, r, http.MethodPatch, fmt.Sprintf("/api/drifts/%.0f", driftID), map[string]interface{}{
		"assigned_to_id": 0,
	}, basicAuth("alice"))
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Nil(t, body["assigned_to_id"])

	var event models.Event
	require.NoError(t, db.DB.Where("event_type = ?", models.EventUnassigned).First(&event).Error)
	assert.Equal(t, "Drift unassigned", event.Description)
}
