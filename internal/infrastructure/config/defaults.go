package config

import "path/filepath"

// SetDefaults fills every field the environment left unset.
func SetDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "PROD"
	}

	if cfg.Oracle.Port == 0 {
		cfg.Oracle.Port = 1521
	}
	if cfg.Oracle.Service == "" {
		cfg.Oracle.Service = "WMSP"
	}

	if cfg.Pool.MaxSize == 0 {
		cfg.Pool.MaxSize = 5
	}
	if cfg.Pool.ConnTimeoutMs == 0 {
		cfg.Pool.ConnTimeoutMs = 3000
	}
	if cfg.Pool.ValidationTimeoutMs == 0 {
		cfg.Pool.ValidationTimeoutMs = 2000
	}

	if cfg.Printing.InventoryFile == "" {
		cfg.Printing.InventoryFile = filepath.Join("config", "printers.yaml")
	}
	if cfg.Printing.RoutingFile == "" {
		cfg.Printing.RoutingFile = filepath.Join("config", "printer-routing.yaml")
	}
	if cfg.Printing.TemplateFile == "" {
		cfg.Printing.TemplateFile = filepath.Join("config", "walmart-ca-pallet.zpl")
	}

	if cfg.RefData.SkuMatrixFile == "" {
		cfg.RefData.SkuMatrixFile = filepath.Join("config", "sku-matrix.csv")
	}
	if cfg.RefData.LocationMatrixFile == "" {
		cfg.RefData.LocationMatrixFile = filepath.Join("config", "location-matrix.csv")
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "out"
	}
	if cfg.Output.CheckpointDir == "" {
		cfg.Output.CheckpointDir = filepath.Join("out", "gui-jobs")
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}
