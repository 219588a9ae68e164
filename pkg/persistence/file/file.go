// Package file provides a JSON-file persistence implementation, used by tests
// and local development.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tramio/tramio/pkg/persistence"
)

// Persistence implements persistence.Persistence on top of a directory tree of
// JSON files. A single lock guards all collections; contention is irrelevant
// at the scale this backend is meant for.
type Persistence struct {
	root string
	mu   sync.RWMutex

	workflowRepo     *WorkflowRepository
	processRepo      *ProcessRepository
	processDataRepo  *ProcessDataRepository
	historyRepo      *HistoryRepository
	directoryRepo    *DirectoryRepository
	organizationRepo *OrganizationRepository
	scheduleRepo     *ScheduleRepository
}

// NewPersistence creates a file persistence layer rooted at the given
// directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	p := &Persistence{root: cleanRoot}
	p.workflowRepo = &WorkflowRepository{p: p}
	p.processRepo = &ProcessRepository{p: p}
	p.processDataRepo = &ProcessDataRepository{p: p}
	p.historyRepo = &HistoryRepository{p: p}
	p.directoryRepo = &DirectoryRepository{p: p}
	p.organizationRepo = &OrganizationRepository{p: p}
	p.scheduleRepo = &ScheduleRepository{p: p}

	return p
}

func (p *Persistence) Workflows() persistence.WorkflowRepository         { return p.workflowRepo }
func (p *Persistence) Processes() persistence.ProcessRepository          { return p.processRepo }
func (p *Persistence) ProcessData() persistence.ProcessDataRepository    { return p.processDataRepo }
func (p *Persistence) History() persistence.HistoryRepository            { return p.historyRepo }
func (p *Persistence) Directory() persistence.DirectoryRepository        { return p.directoryRepo }
func (p *Persistence) Organizations() persistence.OrganizationRepository { return p.organizationRepo }
func (p *Persistence) Schedules() persistence.ScheduleRepository         { return p.scheduleRepo }

// Close performs any necessary cleanup. For file persistence there is nothing
// to clean up.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// readJSON loads one JSON document. The boolean is false when the file does
// not exist.
func (p *Persistence) readJSON(relPath string, out any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(p.root, relPath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read %s: %w", relPath, err)
	}

	err = json.Unmarshal(data, out)
	if err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", relPath, err)
	}

	return true, nil
}

// writeJSON stores one JSON document, creating parent directories as needed.
func (p *Persistence) writeJSON(relPath string, in any) error {
	fullPath := filepath.Join(p.root, relPath)

	err := os.MkdirAll(filepath.Dir(fullPath), 0o755)
	if err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", relPath, err)
	}

	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", relPath, err)
	}

	err = os.WriteFile(fullPath, data, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", relPath, err)
	}

	return nil
}

// listIDs returns the document IDs (file names without extension) stored under
// a collection directory.
func (p *Persistence) listIDs(collection string) ([]string, error) {
	root := os.DirFS(filepath.Join(p.root, collection))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}

	ids := make([]string, 0, len(jsonFiles))
	for _, file := range jsonFiles {
		ids = append(ids, strings.TrimSuffix(file, ".json"))
	}

	return ids, nil
}
