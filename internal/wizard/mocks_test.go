package wizard

import (
	"context"

	"github.com/anmicius0/lims-batch-composer/internal/client"
	"github.com/stretchr/testify/mock"
)

// MockLIMSClient is a mock implementation of client.LIMSClient
type MockLIMSClient struct {
	mock.Mock
}

func (m *MockLIMSClient) GetEligibleSamples(ctx context.Context, query client.EligibleSamplesQuery) (*client.EligibleSamplesPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.EligibleSamplesPage), args.Error(1)
}

func (m *MockLIMSClient) ValidateBatchCompatibility(ctx context.Context, containerIDs []string) (*client.CompatibilityResult, error) {
	args := m.Called(ctx, containerIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.CompatibilityResult), args.Error(1)
}

func (m *MockLIMSClient) GetContainers(ctx context.Context, projectIDs []string) ([]client.Container, error) {
	args := m.Called(ctx, projectIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.Container), args.Error(1)
}

func (m *MockLIMSClient) GetProjects(ctx context.Context) ([]client.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.Project), args.Error(1)
}

func (m *MockLIMSClient) GetAnalyses(ctx context.Context) ([]client.Analysis, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.Analysis), args.Error(1)
}

func (m *MockLIMSClient) GetListEntries(ctx context.Context, listName string) ([]client.ListEntry, error) {
	args := m.Called(ctx, listName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.ListEntry), args.Error(1)
}

func (m *MockLIMSClient) GetContainerTypes(ctx context.Context) ([]client.ContainerType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.ContainerType), args.Error(1)
}

func (m *MockLIMSClient) CreateBatch(ctx context.Context, payload *client.BatchPayload) (*client.CreatedBatch, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.CreatedBatch), args.Error(1)
}
