package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/niksmo/egis-bridge/config"
	"github.com/niksmo/egis-bridge/internal/adapter"
	"github.com/niksmo/egis-bridge/internal/adapter/egis"
	"github.com/niksmo/egis-bridge/internal/adapter/httphandler"
	"github.com/niksmo/egis-bridge/internal/adapter/kafka"
	"github.com/niksmo/egis-bridge/internal/adapter/storage"
	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/niksmo/egis-bridge/internal/core/port"
	"github.com/niksmo/egis-bridge/internal/core/service"
	"github.com/niksmo/egis-bridge/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sr"
)

type App struct {
	ctx        context.Context
	cfg        config.Config
	stores     storage.Stores
	catalog    *egis.Client
	events     port.ImportEventsProducer
	service    service.Service
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initStorage()
	app.initCatalog()
	app.initEvents()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	stores, err := storage.Open(
		app.ctx, app.cfg.Storage.Backend, app.cfg.Storage.DSN,
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.stores = stores
}

func (app *App) initCatalog() {
	c := app.cfg.Catalog
	app.catalog = egis.NewClient(egis.Config{
		URL:               c.URL,
		Component:         c.Component,
		User:              c.User,
		Password:          c.Password,
		ERPName:           c.ERPName,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
	})
}

// initEvents connects the imported items producer. Without seed brokers
// imports are not announced.
func (app *App) initEvents() {
	const op = "App.initEvents"

	b := app.cfg.Broker
	if !b.Enabled() {
		slog.Info("broker is not configured, import events are disabled", "op", op)
		return
	}

	srClient, err := sr.NewClient(sr.URLs(b.SchemaRegistryURLs...))
	if err != nil {
		app.fallDown(op, err)
	}

	serde, err := schema.NewSerdeImportedItemV1(
		app.ctx,
		schema.SubjectOpt(b.ImportedItemsTopic+"-value"),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	var extra []kgo.Opt
	if b.TLS.Enabled() {
		tlsCfg := adapter.MakeTLSConfig(b.TLS.CA, b.TLS.Cert, b.TLS.Key)
		extra = append(extra, kgo.DialTLSConfig(tlsCfg))
	}

	producer, err := kafka.NewImportedItemsProducer(
		kafka.ProducerClientOpt(app.ctx, b.SeedBrokers, b.ImportedItemsTopic, extra...),
		kafka.ProducerEncoderOpt(serde),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.events = producer
}

func (app *App) initCoreService() {
	m := app.cfg.Mapping
	app.service = service.New(
		app.catalog,
		app.stores.Catalog,
		app.stores.Orders,
		app.events,
		domain.MappingSettings{
			SellingPriceList:    m.SellingPriceList,
			RetailPriceList:     m.RetailPriceList,
			ItemGroup:           m.ItemGroup,
			GroupByProductGroup: m.GroupByProductGroup,
		},
	)
}

func (app *App) initInboundAdapters() {
	addr := app.cfg.HTTPServerAddr
	s := app.service

	mux := http.NewServeMux()
	httphandler.RegisterSearch(mux, s)
	httphandler.RegisterImport(mux, s, s)
	httphandler.RegisterRefresh(mux, s)
	httphandler.RegisterMapping(mux, s)
	httphandler.RegisterHealth(mux)
	httphandler.RegisterMetrics(mux)

	handler := httphandler.Instrument(httphandler.AllowJSON(mux))
	app.httpServer = httphandler.NewHTTPServer(addr, handler)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)

	slog.Info("application is running", "addr", app.cfg.HTTPServerAddr)
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.service.Close()
	app.stores.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
