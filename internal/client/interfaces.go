package client

import "context"

// LIMSClient defines the operations the batch wizard performs against the LIMS backend.
// Use NewLIMSClient to obtain an implementation that satisfies this interface.
type LIMSClient interface {
	GetEligibleSamples(ctx context.Context, query EligibleSamplesQuery) (*EligibleSamplesPage, error)
	ValidateBatchCompatibility(ctx context.Context, containerIDs []string) (*CompatibilityResult, error)
	GetContainers(ctx context.Context, projectIDs []string) ([]Container, error)
	GetProjects(ctx context.Context) ([]Project, error)
	GetAnalyses(ctx context.Context) ([]Analysis, error)
	GetListEntries(ctx context.Context, listName string) ([]ListEntry, error)
	GetContainerTypes(ctx context.Context) ([]ContainerType, error)
	CreateBatch(ctx context.Context, payload *BatchPayload) (*CreatedBatch, error)
}
