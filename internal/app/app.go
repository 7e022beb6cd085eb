package app

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/five82/shopfront/internal/basepath"
	"github.com/five82/shopfront/internal/catalog"
	"github.com/five82/shopfront/internal/config"
	"github.com/five82/shopfront/internal/dom"
	"github.com/five82/shopfront/internal/eventbus"
	"github.com/five82/shopfront/internal/history"
	"github.com/five82/shopfront/internal/logging"
	"github.com/five82/shopfront/internal/loop"
	"github.com/five82/shopfront/internal/mockapi"
	"github.com/five82/shopfront/internal/pages"
	"github.com/five82/shopfront/internal/routectx"
	"github.com/five82/shopfront/internal/router"
	"github.com/five82/shopfront/internal/state"
	"github.com/five82/shopfront/internal/storage"
	"github.com/five82/shopfront/internal/toast"
	"github.com/five82/shopfront/internal/ui"
	"github.com/five82/shopfront/internal/viewport"
)

// Options configure the storefront application.
type Options struct {
	ConfigPath string
	// LogLevel overrides the configured level.
	LogLevel string
}

// Run boots the terminal storefront until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Output: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	kv, err := storage.Open(cfg.StorageDriver, cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer kv.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.EmbeddedAPI {
		apiURL, err := startEmbeddedAPI(ctx, logger.Named("mockapi"))
		if err != nil {
			return err
		}
		cfg.APIURL = apiURL
	}

	client, err := catalog.NewClient(cfg.APIURL)
	if err != nil {
		return fmt.Errorf("init catalog client: %w", err)
	}
	probe := func(ctx context.Context) error {
		_, err := client.FetchCategories(ctx)
		return err
	}
	if err := waitForAPI(ctx, probe, defaultProbeInterval, logger); err != nil {
		logger.Warn("catalog api not reachable, starting anyway",
			zap.String("url", client.BaseURL()), zap.Error(err))
	}

	sf, err := Assemble(ctx, cfg, client, kv, logger)
	if err != nil {
		return err
	}
	defer sf.Close()
	if err := sf.Start(); err != nil {
		return err
	}

	logger.Info("storefront started",
		zap.String("api", client.BaseURL()),
		zap.String("base", cfg.BasePath),
		zap.String("storage", cfg.StorageDriver))

	return ui.Run(ui.Options{
		Context:   ctx,
		Document:  sf.Document,
		History:   sf.History,
		Navigator: sf.Router,
		Base:      sf.Base,
		Loop:      sf.Loop,
		Tracker:   sf.Tracker,
		Toasts:    sf.Toasts,
		Storage:   kv,
		ThemeName: cfg.Theme,
		LogPath:   cfg.LogFile,
		Logger:    logger.Named("ui"),
	})
}

// Storefront is the assembled client: the document and history the host
// drives, and the stores and pages behind them.
type Storefront struct {
	Document *dom.Document
	History  *history.Memory
	Base     basepath.Resolver
	Router   *router.Router
	Loop     *loop.Chan
	Tracker  *viewport.Tracker
	Toasts   *toast.Center
	Bus      *eventbus.Bus
	Cart     *state.Cart
	List     *state.ProductList
	Detail   *state.Detail
	Pages    *pages.App
}

// Assemble wires the client against api and kv. Nothing renders until Start.
func Assemble(ctx context.Context, cfg config.Config, api catalog.Querier, kv storage.KV, logger *zap.Logger) (*Storefront, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := basepath.New(cfg.BasePath)
	sf := &Storefront{
		Document: dom.New(logger.Named("dom")),
		History:  history.NewMemory(base.FullPath("/")),
		Base:     base,
		Loop:     loop.NewChan(),
		Tracker:  &viewport.Tracker{},
		Toasts:   toast.NewCenter(nil),
		Bus:      eventbus.New(logger.Named("bus")),
	}
	sf.Router = router.New(router.Options{
		Document: sf.Document,
		History:  sf.History,
		Base:     base,
		Bus:      sf.Bus,
		Logger:   logger.Named("router"),
	})

	sf.Cart = state.NewCart(state.CartOptions{
		Storage:  kv,
		Bus:      sf.Bus,
		Notifier: sf.Toasts,
		Logger:   logger.Named("cart"),
	})
	sf.Cart.Load()
	sf.List = state.NewProductList(state.ProductListOptions{
		API:    api,
		Loop:   sf.Loop,
		Limit:  cfg.PageLimit,
		Bus:    sf.Bus,
		Logger: logger.Named("products"),
	})
	sf.Detail = state.NewDetail(state.DetailOptions{
		API:    api,
		Loop:   sf.Loop,
		Cart:   sf.Cart,
		Logger: logger.Named("detail"),
	})

	app, err := pages.New(pages.Options{
		Context:  ctx,
		Document: sf.Document,
		Router:   sf.Router,
		History:  sf.History,
		Bus:      sf.Bus,
		Cart:     sf.Cart,
		List:     sf.List,
		Detail:   sf.Detail,
		Platform: sf.Tracker,
		Logger:   logger.Named("pages"),
	})
	if err != nil {
		return nil, fmt.Errorf("init pages: %w", err)
	}
	if err := app.Mount(); err != nil {
		return nil, fmt.Errorf("mount pages: %w", err)
	}
	sf.Pages = app

	sf.Bus.On(eventbus.RouteChanged, func(payload any) {
		if rc, ok := payload.(routectx.Context); ok {
			logger.Debug("route changed", zap.String("path", rc.Path), zap.String("pattern", rc.Pattern))
		}
	})
	return sf, nil
}

// Start resolves the initial location.
func (s *Storefront) Start() error {
	if err := s.Router.Start(); err != nil {
		return fmt.Errorf("start router: %w", err)
	}
	return nil
}

// Close stops the router and drops the page subscriptions.
func (s *Storefront) Close() {
	s.Router.Stop()
	s.Pages.Unmount()
	s.Bus.Clear()
}

// startEmbeddedAPI serves the mock catalog on an ephemeral loopback port for
// the lifetime of ctx and returns its base URL.
func startEmbeddedAPI(ctx context.Context, logger *zap.Logger) (string, error) {
	srv, err := mockapi.New(mockapi.Options{Logger: logger})
	if err != nil {
		return "", fmt.Errorf("init mock api: %w", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("listen mock api: %w", err)
	}
	go func() {
		if err := srv.Serve(ctx, ln); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("mock api stopped", zap.Error(err))
		}
	}()
	logger.Info("embedded mock api listening", zap.String("addr", ln.Addr().String()))
	return "http://" + ln.Addr().String(), nil
}
