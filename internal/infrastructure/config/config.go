// Package config loads the labeler configuration with the precedence
// process environment > external env file > built-in defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

// Config is the effective configuration after merging all sources.
type Config struct {
	ActiveSite  string `mapstructure:"active_site" validate:"required"`
	Environment string `mapstructure:"environment"`

	Oracle   OracleConfig   `mapstructure:"oracle"`
	Pool     PoolConfig     `mapstructure:"pool"`
	Printing PrintingConfig `mapstructure:"printing"`
	RefData  RefDataConfig  `mapstructure:"refdata"`
	Output   OutputConfig   `mapstructure:"output"`
	Logging  LoggingConfig  `mapstructure:"logging"`

	// Sites holds every SITE_<CODE>_* block found in the environment,
	// keyed by site code.
	Sites map[string]*SiteConfig `mapstructure:"-"`
}

// OracleConfig carries the store credentials and endpoint parts.
type OracleConfig struct {
	Username string `mapstructure:"username" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	Port     int    `mapstructure:"port" validate:"min=1,max=65535"`
	Service  string `mapstructure:"service"`
	// DSN, when set, wins over the constructed endpoint.
	DSN string `mapstructure:"dsn"`
}

// PoolConfig sizes the shared connection pool.
type PoolConfig struct {
	MaxSize             int `mapstructure:"max_size" validate:"min=1"`
	ConnTimeoutMs       int `mapstructure:"conn_timeout_ms" validate:"min=1"`
	ValidationTimeoutMs int `mapstructure:"validation_timeout_ms" validate:"min=1"`
}

// PrintingConfig locates the printer tables and the label template.
type PrintingConfig struct {
	InventoryFile    string `mapstructure:"inventory_file"`
	RoutingFile      string `mapstructure:"routing_file"`
	DefaultPrinterID string `mapstructure:"default_printer_id"`
	ForcePrinterID   string `mapstructure:"force_printer_id"`
	TemplateFile     string `mapstructure:"template_file"`
	// SendRatePerSec caps labels per second on the wire; 0 is unpaced.
	SendRatePerSec float64 `mapstructure:"send_rate_per_sec" validate:"min=0"`
}

// RefDataConfig locates the operator-maintained CSV matrices.
type RefDataConfig struct {
	SkuMatrixFile      string `mapstructure:"sku_matrix_file"`
	LocationMatrixFile string `mapstructure:"location_matrix_file"`
}

// OutputConfig sets the label and checkpoint directories.
type OutputConfig struct {
	Dir           string `mapstructure:"dir"`
	CheckpointDir string `mapstructure:"checkpoint_dir"`
}

// LoggingConfig shapes the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	Output string `mapstructure:"output" validate:"oneof=stdout stderr"`
}

// envKeys maps viper keys to the flat environment variable names the
// deployment uses.
var envKeys = map[string][]string{
	"active_site":                 {"ACTIVE_SITE"},
	"environment":                 {"WMS_ENV", "ACTIVE_ENV"},
	"oracle.username":             {"ORACLE_USERNAME"},
	"oracle.password":             {"ORACLE_PASSWORD"},
	"oracle.port":                 {"ORACLE_PORT"},
	"oracle.service":              {"ORACLE_SERVICE"},
	"oracle.dsn":                  {"ORACLE_DSN", "ORACLE_JDBC_URL"},
	"pool.max_size":               {"DB_POOL_MAX_SIZE"},
	"pool.conn_timeout_ms":        {"DB_POOL_CONN_TIMEOUT_MS"},
	"pool.validation_timeout_ms":  {"DB_POOL_VALIDATION_TIMEOUT_MS"},
	"printing.inventory_file":     {"PRINTER_INVENTORY_FILE"},
	"printing.routing_file":       {"PRINTER_ROUTING_FILE"},
	"printing.default_printer_id": {"PRINTER_DEFAULT_ID"},
	"printing.force_printer_id":   {"PRINTER_FORCE_ID"},
	"printing.send_rate_per_sec":  {"PRINTER_SEND_RATE_PER_SEC"},
	"printing.template_file":      {"LABEL_TEMPLATE_FILE"},
	"refdata.sku_matrix_file":     {"SKU_MATRIX_FILE"},
	"refdata.location_matrix_file": {"LOCATION_MATRIX_FILE"},
	"output.dir":                  {"OUTPUT_DIR"},
	"output.checkpoint_dir":       {"CHECKPOINT_DIR"},
	"logging.level":               {"LOG_LEVEL"},
	"logging.format":              {"LOG_FORMAT"},
	"logging.output":              {"LOG_OUTPUT"},
}

// LoadConfig merges the environment, the discovered env file and the
// defaults, then validates the result. Process environment always wins:
// godotenv never overrides variables that are already set.
func LoadConfig(explicitFile string) (*Config, error) {
	loadEnvFile(explicitFile)

	v := viper.New()
	for key, names := range envKeys {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, shared.NewConfigError("cannot bind environment key "+key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, shared.NewConfigError("cannot parse configuration", err)
	}
	SetDefaults(&cfg)
	cfg.Sites = scanSites(os.Environ())

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFile applies the explicit file when given, else the discovery
// order: WMS_CONFIG_FILE, ./wms-tags.env, ./.env, ./config/wms-tags.env
// and the executable-directory equivalents. First readable file wins.
func loadEnvFile(explicitFile string) {
	if explicitFile != "" {
		_ = godotenv.Load(explicitFile)
		return
	}
	if fromEnv := os.Getenv("WMS_CONFIG_FILE"); fromEnv != "" {
		_ = godotenv.Load(fromEnv)
		return
	}

	candidates := []string{"wms-tags.env", ".env", filepath.Join("config", "wms-tags.env")}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(dir, "wms-tags.env"),
			filepath.Join(dir, ".env"),
			filepath.Join(dir, "config", "wms-tags.env"))
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			_ = godotenv.Load(candidate)
			return
		}
	}
}

// Redacted returns the effective configuration as display pairs with
// secrets masked, for the `config` subcommand.
func (c *Config) Redacted() [][2]string {
	pairs := [][2]string{
		{"ACTIVE_SITE", c.ActiveSite},
		{"WMS_ENV", c.Environment},
		{"ORACLE_USERNAME", c.Oracle.Username},
		{"ORACLE_PASSWORD", maskSecret(c.Oracle.Password)},
		{"ORACLE_PORT", itoa(c.Oracle.Port)},
		{"ORACLE_SERVICE", c.Oracle.Service},
		{"ORACLE_DSN", maskDSN(c.Oracle.DSN)},
		{"DB_POOL_MAX_SIZE", itoa(c.Pool.MaxSize)},
		{"DB_POOL_CONN_TIMEOUT_MS", itoa(c.Pool.ConnTimeoutMs)},
		{"DB_POOL_VALIDATION_TIMEOUT_MS", itoa(c.Pool.ValidationTimeoutMs)},
		{"PRINTER_INVENTORY_FILE", c.Printing.InventoryFile},
		{"PRINTER_ROUTING_FILE", c.Printing.RoutingFile},
		{"PRINTER_DEFAULT_ID", c.Printing.DefaultPrinterID},
		{"PRINTER_FORCE_ID", c.Printing.ForcePrinterID},
		{"PRINTER_SEND_RATE_PER_SEC", ftoa(c.Printing.SendRatePerSec)},
		{"LABEL_TEMPLATE_FILE", c.Printing.TemplateFile},
		{"SKU_MATRIX_FILE", c.RefData.SkuMatrixFile},
		{"LOCATION_MATRIX_FILE", c.RefData.LocationMatrixFile},
		{"OUTPUT_DIR", c.Output.Dir},
		{"CHECKPOINT_DIR", c.Output.CheckpointDir},
		{"LOG_LEVEL", c.Logging.Level},
	}
	for _, site := range sortedSites(c.Sites) {
		prefix := "SITE_" + site.Code + "_"
		pairs = append(pairs,
			[2]string{prefix + "NAME", site.Name},
			[2]string{prefix + "HOST", site.Host},
			[2]string{prefix + "SHIP_FROM_NAME", site.ShipFromName},
			[2]string{prefix + "SHIP_FROM_ADDRESS", site.ShipFromAddress},
			[2]string{prefix + "SHIP_FROM_CITY_STATE_ZIP", site.ShipFromCityStateZip},
		)
	}
	return pairs
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

// maskDSN hides the credential portion of an explicit DSN.
func maskDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "********" + dsn[at:]
}
