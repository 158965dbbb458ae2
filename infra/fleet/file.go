// Package fleet provides a file-backed fleet source for single-process
// deployments and command-line runs. Production deployments replace it with
// an adapter over the fleet data service.
package fleet

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	corefleet "github.com/fleetops-io/servicesched/core/fleet"
	"github.com/fleetops-io/servicesched/core/model"
)

// fileData is the on-disk layout of a fleet file.
type fileData struct {
	Vehicles    []model.Vehicle           `json:"vehicles"`
	Preferences []model.MemberPreferences `json:"preferences"`
}

// FileSource implements fleet.Source from a JSON file.
type FileSource struct {
	path string

	mu    sync.Mutex
	cache *fileData
}

var _ corefleet.Source = (*FileSource)(nil)

// NewFileSource returns a source reading from path. The file is loaded
// lazily and cached; call Reload to pick up changes.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Reload drops the cached file contents.
func (s *FileSource) Reload() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

func (s *FileSource) load() (*fileData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache != nil {
		return s.cache, nil
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read fleet file: %w", err)
	}
	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse fleet file %s: %w", s.path, err)
	}
	for _, v := range data.Vehicles {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("vehicle %s: %w", v.ID, err)
		}
	}
	s.cache = &data
	return s.cache, nil
}

// Vehicles returns all vehicles in the file.
func (s *FileSource) Vehicles(_ context.Context) ([]model.Vehicle, error) {
	data, err := s.load()
	if err != nil {
		return nil, err
	}
	return data.Vehicles, nil
}

// Preferences returns the member's settings, or defaults when the member
// has none on file.
func (s *FileSource) Preferences(_ context.Context, memberID string) (model.MemberPreferences, error) {
	data, err := s.load()
	if err != nil {
		return model.MemberPreferences{}, err
	}
	for _, p := range data.Preferences {
		if p.MemberID == memberID {
			return p, nil
		}
	}
	return model.DefaultPreferences(memberID), nil
}
