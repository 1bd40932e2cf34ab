package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"xlmongo/domain/pivot"
	"xlmongo/internal/errors"
)

// Config represents the complete application configuration. It is built once
// at startup and passed to the services that need it.
type Config struct {
	Mongo    MongoConfig
	Import   TargetConfig
	Export   ExportConfig
	Pivot    pivot.Spec
	Coercion CoercionConfig
	Logging  LoggingConfig
	Server   ServerConfig
}

// MongoConfig holds document store connection settings
type MongoConfig struct {
	URI string
}

// TargetConfig names a database collection
type TargetConfig struct {
	Database   string
	Collection string
}

// ExportConfig holds the export source and output workbook path
type ExportConfig struct {
	TargetConfig
	Output string
}

// CoercionConfig holds type detection settings
type CoercionConfig struct {
	TypeThreshold float64
	MissingText   string
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string
	Format string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
	MaxUploadMB     int
}

// DefaultPivotSpec is the cross-tabulation used when nothing else is configured
func DefaultPivotSpec() pivot.Spec {
	return pivot.Spec{
		Index:       []string{"Comprobante Metodo Pago", "Comprobante Moneda"},
		Values:      []string{"Comprobante Subtotal Descuento Mxn"},
		Aggregators: []pivot.Aggregator{pivot.AggCount, pivot.AggSum},
	}
}

// Load reads configuration from environment variables and validates it.
// The pivot spec starts from DefaultPivotSpec, is replaced by the YAML file
// named by PIVOT_SPEC_FILE, and each PIVOT_* list variable overrides its part.
func Load() (*Config, error) {
	config := &Config{
		Mongo: MongoConfig{
			URI: getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017/"),
		},
		Import: TargetConfig{
			Database:   getEnvOrDefault("IMPORT_DATABASE", "Construccion"),
			Collection: getEnvOrDefault("IMPORT_COLLECTION", "diccionario_de_datos"),
		},
		Export: ExportConfig{
			TargetConfig: TargetConfig{
				Database:   getEnvOrDefault("EXPORT_DATABASE", "exel3"),
				Collection: getEnvOrDefault("EXPORT_COLLECTION", "tablas_exel"),
			},
			Output: getEnvOrDefault("EXPORT_OUTPUT", "exportado_validado_con_tabla_configurable.xlsx"),
		},
		Coercion: CoercionConfig{
			TypeThreshold: getEnvFloatOrDefault("TYPE_THRESHOLD", 0.7),
			MissingText:   getEnvOrDefault("MISSING_TEXT", "sin datos"),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "console"),
		},
		Server: ServerConfig{
			Port:            getEnvOrDefault("PORT", "8080"),
			ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
			MaxUploadMB:     getEnvIntOrDefault("MAX_UPLOAD_MB", 32),
		},
	}

	spec := DefaultPivotSpec()
	if path := os.Getenv("PIVOT_SPEC_FILE"); path != "" {
		fileSpec, err := LoadPivotSpec(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load pivot spec file")
		}
		spec = fileSpec
	}
	spec = applyPivotOverrides(spec)

	normalized, err := spec.Normalize()
	if err != nil {
		return nil, errors.InvalidPivotSpec(err)
	}
	config.Pivot = normalized

	// Validate required fields
	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// LoadPivotSpec reads a pivot spec from a YAML file:
//
//	index: [Comprobante Metodo Pago]
//	values: [Comprobante Subtotal Descuento Mxn]
//	aggregators: [count, sum]
//	columns: [Comprobante Moneda]
func LoadPivotSpec(path string) (pivot.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pivot.Spec{}, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to read %s: %w", path, err))
	}

	var spec pivot.Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return pivot.Spec{}, errors.InvalidPivotSpec(fmt.Errorf("failed to parse %s: %w", path, err))
	}
	return spec, nil
}

func applyPivotOverrides(spec pivot.Spec) pivot.Spec {
	if v := os.Getenv("PIVOT_INDEX"); v != "" {
		spec.Index = SplitList(v)
	}
	if v := os.Getenv("PIVOT_VALUES"); v != "" {
		spec.Values = SplitList(v)
	}
	if v := os.Getenv("PIVOT_AGGREGATORS"); v != "" {
		names := SplitList(v)
		spec.Aggregators = make([]pivot.Aggregator, len(names))
		for i, n := range names {
			spec.Aggregators[i] = pivot.Aggregator(n)
		}
	}
	if v := os.Getenv("PIVOT_COLUMNS"); v != "" {
		spec.Columns = SplitList(v)
	}
	return spec
}

// SplitList splits a comma separated list, trimming entries and dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func validateConfig(config *Config) error {
	if config.Mongo.URI == "" {
		return errors.ConfigInvalid("MONGO_URI is required")
	}
	if config.Coercion.TypeThreshold <= 0 || config.Coercion.TypeThreshold > 1 {
		return errors.ConfigInvalid(fmt.Sprintf("TYPE_THRESHOLD must be in (0, 1], got %v", config.Coercion.TypeThreshold))
	}
	if config.Export.Output == "" {
		return errors.ConfigInvalid("EXPORT_OUTPUT is required")
	}
	if err := config.Pivot.Validate(); err != nil {
		return errors.InvalidPivotSpec(err)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
