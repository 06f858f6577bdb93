package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileLeadStore spools leads to a local JSON-lines file. It is the fallback
// sink when no database is configured.
type FileLeadStore struct {
	mu   sync.Mutex
	path string
}

func NewFileLeadStore(path string) *FileLeadStore {
	return &FileLeadStore{path: path}
}

func (f *FileLeadStore) SaveLead(lead Lead) error {
	if lead.Email == "" {
		return fmt.Errorf("email is required")
	}
	b, err := json.Marshal(lead)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.Write(append(b, '\n')); err != nil {
		return err
	}
	return nil
}

// RecentLeads returns up to limit leads, newest first.
func (f *FileLeadStore) RecentLeads(limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = 50
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var leads []Lead
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var l Lead
		if err := json.Unmarshal(line, &l); err != nil {
			// skip corrupt lines rather than failing the whole listing
			continue
		}
		leads = append(leads, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// file order is oldest first
	for i, j := 0, len(leads)-1; i < j; i, j = i+1, j-1 {
		leads[i], leads[j] = leads[j], leads[i]
	}
	if len(leads) > limit {
		leads = leads[:limit]
	}
	return leads, nil
}
