package jobs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

// InputMode records what kind of source id a job was built from.
type InputMode string

const (
	ModeShipment    InputMode = "SHIPMENT"
	ModeCarrierMove InputMode = "CARRIER_MOVE"
)

// FilePrinterID is the sentinel target for file-only (dry-run) jobs.
const FilePrinterID = "FILE"

// JobCheckpoint is the durable progress record of one job instance.
// The task list is written once and never mutated; nextTaskIndex only
// ever increases over the lifetime of a job.
type JobCheckpoint struct {
	ID              string      `json:"id"`
	Mode            InputMode   `json:"inputMode"`
	SourceID        string      `json:"sourceId"`
	OutputDir       string      `json:"outputDir"`
	TargetPrinterID string      `json:"targetPrinterId"`
	TargetEndpoint  string      `json:"targetEndpoint"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
	Completed       bool        `json:"completed"`
	NextTaskIndex   int         `json:"nextTaskIndex"`
	Tasks           []PrintTask `json:"tasks"`
	LastError       string      `json:"lastError,omitempty"`
}

// CheckpointStore persists checkpoints as one JSON file per job.
// Replacement is write-temp-then-rename, so a concurrent reader always
// observes a consistent document.
type CheckpointStore struct {
	dir    string
	logger *zap.Logger
}

// NewCheckpointStore creates the store rooted at dir.
func NewCheckpointStore(dir string, logger *zap.Logger) *CheckpointStore {
	return &CheckpointStore{dir: dir, logger: logger}
}

// Dir returns the checkpoint directory.
func (s *CheckpointStore) Dir() string {
	return s.dir
}

func (s *CheckpointStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes the checkpoint atomically. A save failure is fatal to the
// job: without a durable record, resume cannot be guaranteed.
func (s *CheckpointStore) Save(cp *JobCheckpoint) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return shared.NewInternalError("cannot create checkpoint directory "+s.dir, err)
	}
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return shared.NewInternalError("cannot encode checkpoint "+cp.ID, err)
	}

	final := s.path(cp.ID)
	tmp, err := os.CreateTemp(s.dir, cp.ID+".*.tmp")
	if err != nil {
		return shared.NewInternalError("cannot create checkpoint temp file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return shared.NewInternalError("cannot write checkpoint "+cp.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return shared.NewInternalError("cannot close checkpoint temp file", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return shared.NewInternalError("cannot replace checkpoint "+cp.ID, err)
	}
	return nil
}

// Load reads one checkpoint by id.
func (s *CheckpointStore) Load(id string) (*JobCheckpoint, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, shared.NewValidationError("no checkpoint with id " + id)
		}
		return nil, shared.NewInternalError("cannot read checkpoint "+id, err)
	}
	var cp JobCheckpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, shared.NewInternalError("checkpoint "+id+" is malformed", err)
	}
	return &cp, nil
}

// ListIncomplete returns the unfinished checkpoints sorted by updatedAt
// descending (zero times last). It never fails: unreadable or malformed
// files are skipped with a warning.
func (s *CheckpointStore) ListIncomplete() []*JobCheckpoint {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cannot list checkpoint directory", zap.String("dir", s.dir), zap.Error(err))
		}
		return nil
	}

	var incomplete []*JobCheckpoint
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			s.logger.Warn("skipping unreadable checkpoint", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		var cp JobCheckpoint
		if err := json.Unmarshal(data, &cp); err != nil {
			s.logger.Warn("skipping malformed checkpoint", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		if !cp.Completed {
			incomplete = append(incomplete, &cp)
		}
	}

	sort.SliceStable(incomplete, func(i, j int) bool {
		a, b := incomplete[i].UpdatedAt, incomplete[j].UpdatedAt
		switch {
		case a.IsZero() && !b.IsZero():
			return false
		case !a.IsZero() && b.IsZero():
			return true
		}
		return a.After(b)
	})
	return incomplete
}
