package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Repository is the externally owned profile store. The matching core only
// ever reads profiles; the conversational surface saves them.
type Repository interface {
	Get(id string) (*Profile, error)
	Save(p *Profile) error
}

// FileRepository keeps one JSON document per profile in a directory.
type FileRepository struct {
	dir string
}

// NewFileRepository returns a repository rooted at the given directory.
func NewFileRepository(dir string) (*FileRepository, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("profile directory is required")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating profile directory %q: %w", dir, err)
	}

	return &FileRepository{dir: dir}, nil
}

// Get loads the profile with the given id.
func (r *FileRepository) Get(id string) (*Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("profile id is required")
	}

	file, err := os.Open(r.path(id))
	if err != nil {
		return nil, fmt.Errorf("opening profile %q: %w", id, err)
	}
	defer file.Close()

	var p Profile
	if err := json.NewDecoder(file).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding profile %q: %w", id, err)
	}

	if p.UserID == "" {
		p.UserID = id
	}
	if p.CommunicationStyle == nil {
		p.CommunicationStyle = map[string]string{}
	}
	if p.Preferences == nil {
		p.Preferences = map[string]string{}
	}

	return &p, nil
}

// Save writes the profile back to its JSON document.
func (r *FileRepository) Save(p *Profile) error {
	if p == nil || strings.TrimSpace(p.UserID) == "" {
		return fmt.Errorf("profile with user id is required")
	}

	file, err := os.OpenFile(r.path(p.UserID), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("opening profile file for %q: %w", p.UserID, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encoding profile %q: %w", p.UserID, err)
	}

	return nil
}

func (r *FileRepository) path(id string) string {
	return filepath.Join(r.dir, id+".json")
}
