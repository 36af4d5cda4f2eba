package service

import (
	"context"
	"sync"

	"github.com/anmicius0/lims-batch-composer/internal/client"
	"github.com/anmicius0/lims-batch-composer/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Reference data sections. Each loads and fails independently.
const (
	SectionProjects       = "projects"
	SectionAnalyses       = "analyses"
	SectionContainers     = "containers"
	SectionContainerTypes = "container_types"
	SectionBatchStatus    = client.ListBatchStatus
	SectionBatchTypes     = client.ListBatchTypes
	SectionQCTypes        = client.ListQCTypes
	SectionMatrixTypes    = client.ListMatrixTypes
)

// ReferenceData is the lookup data a wizard session works against.
type ReferenceData struct {
	Projects       []client.Project
	Analyses       []client.Analysis
	Containers     []client.Container
	ContainerTypes []client.ContainerType
	BatchStatuses  []client.ListEntry
	BatchTypes     []client.ListEntry
	QCTypes        []client.ListEntry
	MatrixTypes    []client.ListEntry
	// Errors maps a section to the error that prevented it from loading.
	Errors map[string]error
}

// NewReferenceData returns reference data with every section empty.
func NewReferenceData() *ReferenceData {
	return &ReferenceData{
		Projects:       []client.Project{},
		Analyses:       []client.Analysis{},
		Containers:     []client.Container{},
		ContainerTypes: []client.ContainerType{},
		BatchStatuses:  []client.ListEntry{},
		BatchTypes:     []client.ListEntry{},
		QCTypes:        []client.ListEntry{},
		MatrixTypes:    []client.ListEntry{},
		Errors:         map[string]error{},
	}
}

// ReferenceLoader fetches reference data in parallel.
type ReferenceLoader struct {
	lims client.LIMSClient
}

// NewReferenceLoader creates a loader backed by lims.
func NewReferenceLoader(lims client.LIMSClient) *ReferenceLoader {
	return &ReferenceLoader{lims: lims}
}

// Load fetches every section concurrently. A failing section is recorded in
// Errors and left empty; it never stops the others.
func (l *ReferenceLoader) Load(ctx context.Context, projectScope []string) *ReferenceData {
	data := NewReferenceData()
	var mu sync.Mutex
	record := func(section string, err error) {
		mu.Lock()
		defer mu.Unlock()
		data.Errors[section] = err
		utils.WithComponent("reference_loader").Warn("Failed to load reference data",
			zap.String("section", section),
			zap.Error(err))
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		projects, err := l.lims.GetProjects(egCtx)
		if err != nil {
			record(SectionProjects, err)
			return nil
		}
		if projects != nil {
			data.Projects = projects
		}
		return nil
	})
	eg.Go(func() error {
		analyses, err := l.lims.GetAnalyses(egCtx)
		if err != nil {
			record(SectionAnalyses, err)
			return nil
		}
		if analyses != nil {
			data.Analyses = analyses
		}
		return nil
	})
	eg.Go(func() error {
		containers, err := l.lims.GetContainers(egCtx, projectScope)
		if err != nil {
			record(SectionContainers, err)
			return nil
		}
		if containers != nil {
			data.Containers = containers
		}
		return nil
	})
	eg.Go(func() error {
		types, err := l.lims.GetContainerTypes(egCtx)
		if err != nil {
			record(SectionContainerTypes, err)
			return nil
		}
		if types != nil {
			data.ContainerTypes = types
		}
		return nil
	})
	// list sections are named after the configurable list they load
	lists := []struct {
		section string
		target  *[]client.ListEntry
	}{
		{SectionBatchStatus, &data.BatchStatuses},
		{SectionBatchTypes, &data.BatchTypes},
		{SectionQCTypes, &data.QCTypes},
		{SectionMatrixTypes, &data.MatrixTypes},
	}
	for _, list := range lists {
		eg.Go(func() error {
			entries, err := l.lims.GetListEntries(egCtx, list.section)
			if err != nil {
				record(list.section, err)
				return nil
			}
			if entries != nil {
				*list.target = entries
			}
			return nil
		})
	}

	// Workers never return errors; failures are per section.
	_ = eg.Wait()
	return data
}
