package file

import (
	"context"

	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
)

// directoryDocument is the on-disk shape of the organization structure.
type directoryDocument struct {
	Departments       []*models.Department       `json:"departments"`
	Positions         []*models.Position         `json:"positions"`
	EmployeePositions []*models.EmployeePosition `json:"employee_positions"`
}

// DirectoryRepository reads the organization structure from one JSON document.
// Tramio never writes it; it is maintained by the organization management
// service. SeedDirectory exists so tests can populate it.
type DirectoryRepository struct {
	p *Persistence
}

const directoryPath = "directory.json"

// SeedDirectory writes the directory document. Intended for tests and local
// fixtures.
func (r *DirectoryRepository) SeedDirectory(departments []*models.Department, positions []*models.Position, employeePositions []*models.EmployeePosition) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	return r.p.writeJSON(directoryPath, directoryDocument{
		Departments:       departments,
		Positions:         positions,
		EmployeePositions: employeePositions,
	})
}

func (r *DirectoryRepository) load() (directoryDocument, error) {
	var doc directoryDocument

	_, err := r.p.readJSON(directoryPath, &doc)

	return doc, err
}

func (r *DirectoryRepository) UsersByPosition(ctx context.Context, positionID string) ([]string, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}

	users := make([]string, 0)

	for _, ep := range doc.EmployeePositions {
		if ep.PositionID == positionID {
			users = append(users, ep.UserID)
		}
	}

	return users, nil
}

func (r *DirectoryRepository) UsersByDepartment(ctx context.Context, departmentID string) ([]string, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}

	departmentPositions := make(map[string]bool)

	for _, position := range doc.Positions {
		if position.DepartmentID == departmentID {
			departmentPositions[position.ID] = true
		}
	}

	users := make([]string, 0)
	seen := make(map[string]bool)

	for _, ep := range doc.EmployeePositions {
		if departmentPositions[ep.PositionID] && !seen[ep.UserID] {
			seen[ep.UserID] = true

			users = append(users, ep.UserID)
		}
	}

	return users, nil
}

func (r *DirectoryRepository) PositionsByUser(ctx context.Context, userID string) ([]*models.Position, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}

	held := make(map[string]bool)

	for _, ep := range doc.EmployeePositions {
		if ep.UserID == userID {
			held[ep.PositionID] = true
		}
	}

	positions := make([]*models.Position, 0)

	for _, position := range doc.Positions {
		if held[position.ID] {
			positions = append(positions, position)
		}
	}

	return positions, nil
}

func (r *DirectoryRepository) DepartmentByID(ctx context.Context, id string) (*models.Department, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}

	for _, department := range doc.Departments {
		if department.ID == id {
			return department, nil
		}
	}

	return nil, persistence.ErrDepartmentNotFound
}
