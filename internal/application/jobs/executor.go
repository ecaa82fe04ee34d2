package jobs

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	transport "github.com/tbg-logistics/wms-labeler/internal/adapters/printing"
	"github.com/tbg-logistics/wms-labeler/internal/domain/printing"
	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

// Clock abstracts time for the executor so tests can pin timestamps.
type Clock func() time.Time

// Executor runs task lists strictly in order, writing each payload to
// disk, optionally transmitting it, and checkpointing after every task
// boundary. Sequential execution preserves the physical label order at
// the printer.
type Executor struct {
	store     *CheckpointStore
	transport *transport.Transport
	logger    *zap.Logger
	now       Clock
}

// NewExecutor wires an executor.
func NewExecutor(store *CheckpointStore, t *transport.Transport, logger *zap.Logger) *Executor {
	return &Executor{store: store, transport: t, logger: logger, now: time.Now}
}

// WithClock substitutes the clock (tests).
func (e *Executor) WithClock(now Clock) *Executor {
	e.now = now
	return e
}

// ExecuteRequest describes one job run. A nil Printer means file-only
// mode; the checkpoint then records the FILE sentinel.
type ExecuteRequest struct {
	ID        string // generated when empty
	Mode      InputMode
	SourceID  string
	OutputDir string
	Tasks     []PrintTask
	Printer   *printing.PrinterConfig
}

// Execute creates the checkpoint and runs all tasks from the start.
// The returned checkpoint reflects the final state even on failure.
func (e *Executor) Execute(ctx context.Context, req ExecuteRequest) (*JobCheckpoint, error) {
	if len(req.Tasks) == 0 {
		return nil, shared.NewValidationError("job has no tasks")
	}
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	printerID := FilePrinterID
	endpoint := ""
	if req.Printer != nil {
		printerID = req.Printer.ID
		endpoint = req.Printer.Endpoint()
	}

	now := e.now()
	cp := &JobCheckpoint{
		ID:              id,
		Mode:            req.Mode,
		SourceID:        req.SourceID,
		OutputDir:       req.OutputDir,
		TargetPrinterID: printerID,
		TargetEndpoint:  endpoint,
		CreatedAt:       now,
		UpdatedAt:       now,
		NextTaskIndex:   0,
		Tasks:           req.Tasks,
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, shared.NewInternalError("cannot create output directory "+req.OutputDir, err)
	}
	if err := e.store.Save(cp); err != nil {
		return nil, err
	}

	return cp, e.run(ctx, cp, req.Printer, 0)
}

// Resume continues an incomplete job from max(nextTaskIndex-1, 0): the
// most recently completed task is reprinted before continuing, giving
// at-least-once delivery per label. A completed checkpoint cannot be
// resumed.
func (e *Executor) Resume(ctx context.Context, id string) (*JobCheckpoint, error) {
	cp, err := e.store.Load(id)
	if err != nil {
		return nil, err
	}
	if cp.Completed {
		return nil, shared.NewValidationError("job " + id + " is already completed")
	}

	printer, err := checkpointPrinter(cp)
	if err != nil {
		return nil, err
	}

	start := cp.NextTaskIndex - 1
	if start < 0 {
		start = 0
	}
	e.logger.Info("resuming job",
		zap.String("job", cp.ID),
		zap.String("source", cp.SourceID),
		zap.Int("startIndex", start),
		zap.Int("tasks", len(cp.Tasks)))

	if err := os.MkdirAll(cp.OutputDir, 0o755); err != nil {
		return nil, shared.NewInternalError("cannot create output directory "+cp.OutputDir, err)
	}
	return cp, e.run(ctx, cp, printer, start)
}

// checkpointPrinter rebuilds the transmit target from the persisted
// endpoint so a resume does not depend on the current inventory file.
func checkpointPrinter(cp *JobCheckpoint) (*printing.PrinterConfig, error) {
	if cp.TargetPrinterID == FilePrinterID {
		return nil, nil
	}
	host, portStr, err := net.SplitHostPort(cp.TargetEndpoint)
	if err != nil {
		return nil, shared.NewConfigError("checkpoint "+cp.ID+" has invalid endpoint "+cp.TargetEndpoint, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, shared.NewConfigError("checkpoint "+cp.ID+" has invalid endpoint port "+portStr, err)
	}
	return &printing.PrinterConfig{
		ID:      cp.TargetPrinterID,
		Name:    cp.TargetPrinterID,
		Host:    host,
		Port:    port,
		Enabled: true,
	}, nil
}

// run executes tasks[start..] in order. After each successful task the
// checkpoint advances atomically; on failure the checkpoint records the
// error and the job aborts, leaving prior labels printed.
func (e *Executor) run(ctx context.Context, cp *JobCheckpoint, printer *printing.PrinterConfig, start int) error {
	for i := start; i < len(cp.Tasks); i++ {
		task := cp.Tasks[i]
		if err := e.runTask(ctx, cp, printer, task); err != nil {
			cp.Completed = false
			cp.UpdatedAt = e.now()
			cp.LastError = err.Error()
			if saveErr := e.store.Save(cp); saveErr != nil {
				e.logger.Error("cannot record failure in checkpoint",
					zap.String("job", cp.ID), zap.Error(saveErr))
				return saveErr
			}
			return err
		}

		cp.NextTaskIndex = i + 1
		cp.UpdatedAt = e.now()
		cp.LastError = ""
		if err := e.store.Save(cp); err != nil {
			return err
		}
		e.logger.Info("task completed",
			zap.String("job", cp.ID),
			zap.String("kind", string(task.Kind)),
			zap.String("payload", task.PayloadID),
			zap.Int("index", i),
			zap.Int("of", len(cp.Tasks)))
	}

	cp.Completed = true
	cp.NextTaskIndex = len(cp.Tasks)
	cp.UpdatedAt = e.now()
	cp.LastError = ""
	if err := e.store.Save(cp); err != nil {
		return err
	}
	e.logger.Info("job completed", zap.String("job", cp.ID), zap.Int("tasks", len(cp.Tasks)))
	return nil
}

// runTask writes the payload file and, unless in file-only mode,
// transmits it to the printer.
func (e *Executor) runTask(ctx context.Context, cp *JobCheckpoint, printer *printing.PrinterConfig, task PrintTask) error {
	path := filepath.Join(cp.OutputDir, task.FileName)
	if err := os.WriteFile(path, task.Payload, 0o644); err != nil {
		return shared.NewInternalError("cannot write label file "+path, err)
	}
	if printer == nil {
		return nil
	}
	return e.transport.Send(ctx, printer, task.Payload)
}
