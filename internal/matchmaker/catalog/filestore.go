package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gartstein/matchmaker/internal/matchmaker/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var shardExtensions = []string{".json", ".yaml", ".yml"}

// FileStore keeps one shard file per industry in a directory. JSON and YAML
// shards are both read; new shards are written as JSON.
type FileStore struct {
	dir    string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string, logger *zap.Logger) *FileStore {
	return &FileStore{
		dir:    dir,
		logger: logger.Named("file_store"),
	}
}

// LoadShards reads every shard file in directory order.
func (s *FileStore) LoadShards(ctx context.Context) ([]Shard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read shard directory %q: %w", s.dir, err)
	}

	var shards []Shard
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || !isShardExt(ext) {
			continue
		}
		name := strings.ToLower(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		companies, err := readShard(filepath.Join(s.dir, entry.Name()))
		shards = append(shards, Shard{Name: name, Companies: companies, Err: err})
	}
	return shards, nil
}

// AppendCompany adds company to the shard file, creating it when absent.
func (s *FileStore) AppendCompany(_ context.Context, shard string, company *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.shardPath(shard)
	var companies []models.Company
	if _, err := os.Stat(path); err == nil {
		companies, err = readShard(path)
		if err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}
	companies = append(companies, *company)

	if err := writeShard(path, companies); err != nil {
		return err
	}
	s.logger.Debug("Appended company to shard",
		zap.String("shard", shard),
		zap.String("path", path),
		zap.String("company_id", company.ID),
	)
	return nil
}

// shardPath returns the existing file for shard, or the JSON path to create.
func (s *FileStore) shardPath(shard string) string {
	for _, ext := range shardExtensions {
		path := filepath.Join(s.dir, shard+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return filepath.Join(s.dir, shard+".json")
}

func isShardExt(ext string) bool {
	for _, e := range shardExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// readShard decodes a shard. yaml.v3 accepts JSON documents as well.
func readShard(path string) ([]models.Company, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var companies []models.Company
	if err := yaml.Unmarshal(data, &companies); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	for i := range companies {
		companies[i].Normalize()
	}
	return companies, nil
}

func writeShard(path string, companies []models.Company) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(companies, "", "  ")
	} else {
		data, err = yaml.Marshal(companies)
	}
	if err != nil {
		return fmt.Errorf("failed to encode shard: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".shard-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
