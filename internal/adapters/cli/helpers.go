package cli

import (
	"errors"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/tbg-logistics/wms-labeler/internal/adapters/persistence"
	transport "github.com/tbg-logistics/wms-labeler/internal/adapters/printing"
	"github.com/tbg-logistics/wms-labeler/internal/adapters/refdata"
	"github.com/tbg-logistics/wms-labeler/internal/application/jobs"
	"github.com/tbg-logistics/wms-labeler/internal/domain/label"
	"github.com/tbg-logistics/wms-labeler/internal/domain/printing"
	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
	"github.com/tbg-logistics/wms-labeler/internal/infrastructure/config"
	"github.com/tbg-logistics/wms-labeler/internal/infrastructure/database"
	"github.com/tbg-logistics/wms-labeler/internal/infrastructure/logging"
)

// app bundles the wired collaborators a subcommand needs. The database
// handle is opened lazily because config and jobs-list flows never touch
// the store.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

// newApp loads configuration and builds the logger.
func newApp() (*app, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger}, nil
}

// close releases the database pool and flushes the logger.
func (a *app) close() {
	if a.db != nil {
		_ = database.Close(a.db)
	}
	_ = a.logger.Sync()
}

// openDB opens the store connection once per process.
func (a *app) openDB() (*gorm.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := database.NewConnection(a.cfg)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

// buildPreparer wires the query layer, the reference matrices and the
// label template into a job preparer.
func (a *app) buildPreparer() (*jobs.Preparer, error) {
	db, err := a.openDB()
	if err != nil {
		return nil, err
	}
	repo := persistence.NewShipmentRepository(db, a.logger)

	skus, err := refdata.LoadSkuMatrix(a.cfg.RefData.SkuMatrixFile, a.logger)
	if err != nil {
		return nil, err
	}
	locs, err := refdata.LoadLocationMatrix(a.cfg.RefData.LocationMatrixFile, a.logger)
	if err != nil {
		return nil, err
	}
	tmpl, err := label.LoadTemplate(a.cfg.Printing.TemplateFile)
	if err != nil {
		return nil, err
	}
	siteCfg, err := a.cfg.ActiveSiteConfig()
	if err != nil {
		return nil, err
	}

	site := jobs.Site{
		Code:                 siteCfg.Code,
		Name:                 siteCfg.Name,
		ShipFromName:         siteCfg.ShipFromName,
		ShipFromAddress:      siteCfg.ShipFromAddress,
		ShipFromCityStateZip: siteCfg.ShipFromCityStateZip,
	}
	return jobs.NewPreparer(repo, skus, locs, tmpl, site, a.logger), nil
}

// loadRegistry parses the printer inventory and routing tables.
// PRINTER_DEFAULT_ID overrides the routing file's default target.
func (a *app) loadRegistry() (*printing.Registry, error) {
	return printing.LoadRegistry(
		a.cfg.Printing.InventoryFile,
		a.cfg.Printing.RoutingFile,
		a.cfg.Printing.DefaultPrinterID)
}

// selectPrinter resolves the transmit target for a job: the --printer
// flag wins, then PRINTER_FORCE_ID, then the routing rules over the
// selection context.
func (a *app) selectPrinter(registry *printing.Registry, flagPrinterID string, context map[string]string) (*printing.PrinterConfig, error) {
	forced := flagPrinterID
	if forced == "" {
		forced = a.cfg.Printing.ForcePrinterID
	}
	if forced != "" {
		p := registry.FindPrinter(forced)
		if p == nil {
			return nil, shared.NewConfigError("forced printer "+forced+" is unknown or disabled", nil)
		}
		return p, nil
	}
	return registry.SelectPrinter(context)
}

// newExecutor builds the executor over the checkpoint store and the
// wire transport. PRINTER_SEND_RATE_PER_SEC paces sends so a resumed
// job cannot flood a printer's input buffer.
func (a *app) newExecutor() *jobs.Executor {
	store := jobs.NewCheckpointStore(a.cfg.Output.CheckpointDir, a.logger)
	var opts []transport.Option
	if r := a.cfg.Printing.SendRatePerSec; r > 0 {
		opts = append(opts, transport.WithSendLimiter(rate.NewLimiter(rate.Limit(r), 1)))
	}
	t := transport.NewTransport(a.logger, opts...)
	return jobs.NewExecutor(store, t, a.logger)
}

func asPipelineError(err error, target **shared.Error) bool {
	return errors.As(err, target)
}
