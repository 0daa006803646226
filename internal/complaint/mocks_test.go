package complaint_test

import (
	"context"

	"civicvoice/backend/internal/models"
	"civicvoice/backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockStore) CountComplaintsByCluster(ctx context.Context, clusterID string) (int64, error) {
	args := m.Called(ctx, clusterID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Complaint)
	return c, args.Error(1)
}

func (m *MockStore) ListComplaints(ctx context.Context, f storage.ComplaintFilter) ([]models.Complaint, error) {
	args := m.Called(ctx, f)
	out, _ := args.Get(0).([]models.Complaint)
	return out, args.Error(1)
}

func (m *MockStore) ListComplaintsByStatus(ctx context.Context, statuses ...string) ([]models.Complaint, error) {
	args := m.Called(ctx, statuses)
	out, _ := args.Get(0).([]models.Complaint)
	return out, args.Error(1)
}

func (m *MockStore) ListClusterMembers(ctx context.Context, clusterID string) ([]models.Complaint, error) {
	args := m.Called(ctx, clusterID)
	out, _ := args.Get(0).([]models.Complaint)
	return out, args.Error(1)
}

func (m *MockStore) UpdateComplaint(ctx context.Context, id string, fields map[string]any) (*models.Complaint, error) {
	args := m.Called(ctx, id, fields)
	c, _ := args.Get(0).(*models.Complaint)
	return c, args.Error(1)
}

func (m *MockStore) AppendEmailLog(ctx context.Context, id string, entry models.EmailLogEntry) (*models.Complaint, error) {
	args := m.Called(ctx, id, entry)
	c, _ := args.Get(0).(*models.Complaint)
	return c, args.Error(1)
}

func (m *MockStore) DeleteComplaint(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockEvents struct {
	mock.Mock
}

func (m *MockEvents) PublishEvent(ctx context.Context, ev models.ComplaintEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}
