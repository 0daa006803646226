package complaint_test

import (
	"context"
	"errors"
	"testing"

	"civicvoice/backend/internal/complaint"
	"civicvoice/backend/internal/config"
	"civicvoice/backend/internal/metrics"
	"civicvoice/backend/internal/models"
	"civicvoice/backend/internal/storage"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLocation = models.Location{Village: " Test Village", District: "Test  District", State: "TEST STATE "}

func TestCountCluster_UsesDerivedKey(t *testing.T) {
	// Arrange
	store := new(MockStore)
	svc := complaint.NewService(store, nil, nil)
	store.On("CountComplaintsByCluster", mock.Anything, "Water|test village|test district|test state").Return(int64(4), nil)

	// Act
	n := svc.CountCluster(context.Background(), "Water", testLocation)

	// Assert
	assert.Equal(t, 4, n)
	store.AssertExpectations(t)
}

func TestCountCluster_FailOpen(t *testing.T) {
	// Arrange
	store := new(MockStore)
	m := metrics.New(config.MetricsConfig{Namespace: "test"})
	svc := complaint.NewService(store, nil, m)
	store.On("CountComplaintsByCluster", mock.Anything, mock.Anything).Return(int64(0), errors.New("connection refused"))

	// Act
	n := svc.CountCluster(context.Background(), "Water", models.Location{})

	// Assert
	assert.Zero(t, n)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClusterCountFailures))
}

func TestCreateComplaint_StampsCluster(t *testing.T) {
	// Arrange
	store := new(MockStore)
	events := new(MockEvents)
	svc := complaint.NewService(store, events, nil)

	store.On("CountComplaintsByCluster", mock.Anything, "Water|test village|test district|test state").Return(int64(2), nil)
	store.On("CreateComplaint", mock.Anything, mock.AnythingOfType("*models.Complaint")).Return(nil)
	events.On("PublishEvent", mock.Anything, mock.MatchedBy(func(ev models.ComplaintEvent) bool {
		return ev.Type == models.EventComplaintCreated && ev.ClusterCount == 3
	})).Return(nil)

	// Act
	c, err := svc.CreateComplaint(context.Background(), complaint.CreateInput{
		Text:     "Handpump broken",
		Category: "Water",
		Location: testLocation,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Water|test village|test district|test state", c.ClusterID)
	assert.Equal(t, 3, c.ClusterCount)
	assert.Equal(t, models.StatusPending, c.Status)
	assert.Equal(t, models.StringList{}, c.Keywords)
	assert.Equal(t, 0, c.EscalationLevel)
	assert.Equal(t, testLocation, c.Location, "location is stored as given")
	store.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestCreateComplaint_DefaultsCategoryAndSurvivesCountFailure(t *testing.T) {
	// Arrange
	store := new(MockStore)
	svc := complaint.NewService(store, nil, nil)
	store.On("CountComplaintsByCluster", mock.Anything, "Other|unknown|unknown|unknown").Return(int64(0), errors.New("timeout"))
	store.On("CreateComplaint", mock.Anything, mock.AnythingOfType("*models.Complaint")).Return(nil)

	// Act
	c, err := svc.CreateComplaint(context.Background(), complaint.CreateInput{Text: "Road washed away"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Other", c.Category)
	assert.Equal(t, "Other|unknown|unknown|unknown", c.ClusterID)
	assert.Equal(t, 1, c.ClusterCount)
}

func TestCreateComplaint_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    complaint.CreateInput
		field string
	}{
		{name: "missing text", in: complaint.CreateInput{Category: "Water"}, field: "text"},
		{name: "lowercase category", in: complaint.CreateInput{Text: "x", Category: "water"}, field: "category"},
		{name: "unknown status", in: complaint.CreateInput{Text: "x", Status: "closed"}, field: "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStore)
			svc := complaint.NewService(store, nil, nil)

			_, err := svc.CreateComplaint(context.Background(), tt.in)

			var vErr *complaint.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			store.AssertNotCalled(t, "CountComplaintsByCluster", mock.Anything, mock.Anything)
			store.AssertNotCalled(t, "CreateComplaint", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateComplaint_InsertFailure(t *testing.T) {
	// Arrange
	store := new(MockStore)
	events := new(MockEvents)
	svc := complaint.NewService(store, events, nil)
	dbErr := errors.New("duplicate key")
	store.On("CountComplaintsByCluster", mock.Anything, mock.Anything).Return(int64(0), nil)
	store.On("CreateComplaint", mock.Anything, mock.Anything).Return(dbErr)

	// Act
	c, err := svc.CreateComplaint(context.Background(), complaint.CreateInput{Text: "x", Category: "Health"})

	// Assert
	assert.Nil(t, c)
	var repoErr *complaint.RepositoryError
	require.ErrorAs(t, err, &repoErr)
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "duplicate key")
	events.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything)
}

func TestCreateComplaint_PublishFailureIgnored(t *testing.T) {
	store := new(MockStore)
	events := new(MockEvents)
	svc := complaint.NewService(store, events, nil)
	store.On("CountComplaintsByCluster", mock.Anything, mock.Anything).Return(int64(0), nil)
	store.On("CreateComplaint", mock.Anything, mock.Anything).Return(nil)
	events.On("PublishEvent", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	c, err := svc.CreateComplaint(context.Background(), complaint.CreateInput{Text: "x", Category: "Health"})

	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestUpdateStatus_OnlyStatusColumn(t *testing.T) {
	// Arrange
	store := new(MockStore)
	events := new(MockEvents)
	svc := complaint.NewService(store, events, nil)
	updated := &models.Complaint{ID: "c1", Status: models.StatusResolved}
	store.On("UpdateComplaint", mock.Anything, "c1", map[string]any{"status": models.StatusResolved}).Return(updated, nil)
	events.On("PublishEvent", mock.Anything, mock.MatchedBy(func(ev models.ComplaintEvent) bool {
		return ev.Type == models.EventStatusChanged && ev.Status == models.StatusResolved
	})).Return(nil)

	// Act
	c, err := svc.UpdateStatus(context.Background(), "c1", models.StatusResolved, "pipe fixed")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, updated, c)
	store.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	store := new(MockStore)
	svc := complaint.NewService(store, nil, nil)
	store.On("UpdateComplaint", mock.Anything, "missing", mock.Anything).Return(nil, nil)

	c, err := svc.UpdateStatus(context.Background(), "missing", models.StatusInProgress, "")

	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestUpdateStatus_Invalid(t *testing.T) {
	store := new(MockStore)
	svc := complaint.NewService(store, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "c1", "done", "")
	var vErr *complaint.ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.UpdateStatus(context.Background(), "c1", "", "")
	assert.ErrorAs(t, err, &vErr)

	store.AssertNotCalled(t, "UpdateComplaint", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateComplaint_MapsPresentFields(t *testing.T) {
	// Arrange
	store := new(MockStore)
	svc := complaint.NewService(store, nil, nil)
	dept := "PWD"
	kw := []string{"road"}
	store.On("UpdateComplaint", mock.Anything, "c1", map[string]any{
		"department": "PWD",
		"keywords":   models.StringList{"road"},
	}).Return(&models.Complaint{ID: "c1"}, nil)

	// Act
	_, err := svc.UpdateComplaint(context.Background(), "c1", complaint.UpdateInput{Department: &dept, Keywords: &kw})

	// Assert
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestUpdateComplaint_RejectsClusterKeyFields(t *testing.T) {
	store := new(MockStore)
	svc := complaint.NewService(store, nil, nil)
	category := "Health"
	loc := models.Location{Village: "Rampur", District: "Agra", State: "UP"}
	text := "still dry"

	tests := []struct {
		name  string
		in    complaint.UpdateInput
		field string
	}{
		{name: "category", in: complaint.UpdateInput{Category: &category}, field: "category"},
		{name: "location", in: complaint.UpdateInput{Location: &loc}, field: "location"},
		{name: "alongside other fields", in: complaint.UpdateInput{Text: &text, Category: &category}, field: "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := svc.UpdateComplaint(context.Background(), "c1", tt.in)

			var vErr *complaint.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Nil(t, c)
		})
	}
	store.AssertNotCalled(t, "UpdateComplaint", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateComplaint_EmptyInputStillTouches(t *testing.T) {
	store := new(MockStore)
	svc := complaint.NewService(store, nil, nil)
	store.On("UpdateComplaint", mock.Anything, "c1", map[string]any{}).Return(&models.Complaint{ID: "c1"}, nil)

	c, err := svc.UpdateComplaint(context.Background(), "c1", complaint.UpdateInput{})

	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
}

func TestUpdateComplaint_StorageError(t *testing.T) {
	store := new(MockStore)
	svc := complaint.NewService(store, nil, nil)
	store.On("UpdateComplaint", mock.Anything, "c1", mock.Anything).Return(nil, errors.New("deadlock"))

	_, err := svc.UpdateComplaint(context.Background(), "c1", complaint.UpdateInput{})

	var repoErr *complaint.RepositoryError
	assert.ErrorAs(t, err, &repoErr)
	assert.Equal(t, "update", repoErr.Op)
}

func TestListComplaints_RejectsUnknownStatus(t *testing.T) {
	store := new(MockStore)
	svc := complaint.NewService(store, nil, nil)

	_, err := svc.ListComplaints(context.Background(), storage.ComplaintFilter{Status: "open"})

	var vErr *complaint.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestDeleteComplaint(t *testing.T) {
	store := new(MockStore)
	svc := complaint.NewService(store, nil, nil)
	store.On("DeleteComplaint", mock.Anything, "c1").Return(true, nil)
	store.On("DeleteComplaint", mock.Anything, "c2").Return(false, nil)

	ok, err := svc.DeleteComplaint(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.DeleteComplaint(context.Background(), "c2")
	require.NoError(t, err)
	assert.False(t, ok)
}
