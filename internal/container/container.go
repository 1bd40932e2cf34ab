package container

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"xlmongo/adapters/api"
	"xlmongo/adapters/crosstab"
	"xlmongo/adapters/datareadiness"
	"xlmongo/adapters/datareadiness/coercer"
	"xlmongo/adapters/excel"
	"xlmongo/adapters/mongo"
	"xlmongo/app"
	"xlmongo/internal/config"
	"xlmongo/internal/errors"
	"xlmongo/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	Mongo  *mongo.Client
	Stores ports.StoreFactory

	// Adapters
	Reader   *excel.DataReader
	Writer   *excel.ExportWriter
	Profiler *datareadiness.ProfilerAdapter
	Pivots   *crosstab.Builder

	// Services
	Importer *app.ImportService
	Exporter *app.ExportService
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}
	c.initAdapters()
	return c, nil
}

// initAdapters builds the spreadsheet, profiling and pivot adapters, none of
// which need the document store
func (c *Container) initAdapters() {
	coercionConfig := coercer.DefaultCoercionConfig()
	coercionConfig.MajorityThreshold = c.Config.Coercion.TypeThreshold
	coercionConfig.MissingText = c.Config.Coercion.MissingText

	c.Reader = excel.NewDataReader(c.Logger.Named("reader"))
	c.Writer = excel.NewExportWriter(excel.DefaultWriterConfig(), c.Logger.Named("writer"))
	c.Profiler = datareadiness.NewProfilerAdapter(coercer.NewTypeCoercer(coercionConfig), c.Logger.Named("profiler"))
	c.Pivots = crosstab.NewBuilder(c.Config.Coercion.MissingText)
}

// Connect opens the MongoDB client named by the config and initializes the
// services on top of it
func (c *Container) Connect(ctx context.Context) error {
	client, err := mongo.Connect(ctx, c.Config.Mongo.URI, c.Logger.Named("mongo"))
	if err != nil {
		return errors.DatabaseError("document store unavailable", err)
	}
	c.Mongo = client
	return c.InitWithStore(client)
}

// InitWithStore initializes the services on top of an existing store
func (c *Container) InitWithStore(stores ports.StoreFactory) error {
	if stores == nil {
		return fmt.Errorf("document store cannot be nil")
	}
	c.Stores = stores

	c.Importer = app.NewImportService(stores, c.Reader, c.Logger.Named("import"))
	c.Exporter = app.NewExportService(stores, c.Profiler, c.Pivots, c.Writer, c.Logger.Named("export"))
	return nil
}

// Server builds the HTTP API over the initialized services
func (c *Container) Server() (*api.Server, error) {
	if c.Importer == nil || c.Exporter == nil {
		return nil, fmt.Errorf("services not initialized")
	}

	return api.NewServer(c.Importer, c.Exporter, api.Options{
		ImportDatabase:   c.Config.Import.Database,
		ImportCollection: c.Config.Import.Collection,
		ExportDatabase:   c.Config.Export.Database,
		ExportCollection: c.Config.Export.Collection,
		Pivot:            c.Config.Pivot,
		MaxUploadMB:      c.Config.Server.MaxUploadMB,
	}, c.Logger.Named("http")), nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	defer c.Logger.Sync()

	// Close database connection
	if c.Mongo != nil {
		return c.Mongo.Disconnect(ctx)
	}
	return nil
}
