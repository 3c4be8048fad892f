// Package wailsapp provides the Wails-based GUI for Statisfy and owns the
// application bootstrap: single-instance arbitration, URI scheme
// registration, and the deep-link event bridge.
package wailsapp

import (
	"context"
	"embed"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/statisfy/statisfy/internal/cli"
	"github.com/statisfy/statisfy/internal/config"
	"github.com/statisfy/statisfy/internal/constants"
	"github.com/statisfy/statisfy/internal/deeplink"
	"github.com/statisfy/statisfy/internal/events"
	"github.com/statisfy/statisfy/internal/logging"
	"github.com/statisfy/statisfy/internal/notify"
	"github.com/statisfy/statisfy/internal/singleinstance"
)

// Assets holds the embedded frontend files, passed in from main package.
var Assets embed.FS

var (
	// wailsLogger is the package-level logger for GUI mode
	wailsLogger *logging.Logger
)

// App is the main Wails application struct.
// All public methods are exposed to the frontend as callable functions.
type App struct {
	ctx    context.Context
	config *config.Config

	bus       *events.EventBus
	guard     *singleinstance.Guard
	registrar *deeplink.Registrar
	bridge    *deeplink.Bridge
	notifier  *notify.Notifier

	// launchArgs is the argv of this (primary) launch; scheme URLs in it
	// are delivered through the bridge once the frontend is up.
	launchArgs []string
}

// NewApp creates a new Wails application instance.
func NewApp() *App {
	return &App{}
}

// startup is called when the app starts. The context is saved
// so we can call the Wails runtime methods.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	// Scheme registration is recoverable: on failure the app keeps running,
	// it just cannot be activated from the browser.
	if err := a.registrar.Register(); err != nil {
		wailsLogger.Error().Err(err).Str("scheme", a.config.App.Scheme).Msg("URI scheme registration failed, deep links from the OS will not arrive")
		a.bus.PublishLog(events.ErrorLevel, "URI scheme registration failed; links from the browser will not open the app", err)
		a.notifier.RegistrationFailed(a.config.App.Scheme, err)
	}

	if err := a.bridge.Start(runtimeHandle{ctx: ctx}); err != nil {
		wailsLogger.Error().Err(err).Msg("Failed to start deep-link bridge")
	}

	// The primary's own launch may already carry deep links; route them
	// through the same path forwarded invocations take.
	if urls := deeplink.FilterSchemeURLs(a.launchArgs, a.config.App.Scheme); len(urls) > 0 {
		a.bus.PublishActivation(urls, "cold-start")
	}

	wailsLogger.Info().Msg("Wails application started")
}

// domReady is called after the frontend DOM is ready.
func (a *App) domReady(ctx context.Context) {
	wailsLogger.Debug().Msg("Frontend DOM ready")
}

// beforeClose is called when the window close is requested.
// Return true to prevent closing.
func (a *App) beforeClose(ctx context.Context) bool {
	return false
}

// shutdown is called at application termination.
func (a *App) shutdown(ctx context.Context) {
	wailsLogger.Info().Msg("Wails application shutting down")

	if a.bridge != nil {
		a.bridge.Stop()
	}
	if a.guard != nil {
		a.guard.Release()
	}
	if a.bus != nil {
		a.bus.Close()
	}
}

// focusWindow raises the main window. Called when another launch was
// forwarded here so the user sees the existing instance react.
func (a *App) focusWindow() {
	if a.ctx == nil {
		return
	}
	wailsruntime.WindowUnminimise(a.ctx)
	wailsruntime.Show(a.ctx)
}

// DroppedEventCount reports how many bus events were dropped under
// backpressure. Exposed to the frontend diagnostics panel.
func (a *App) DroppedEventCount() int64 {
	if a.bus == nil {
		return 0
	}
	return a.bus.GetDroppedEventCount()
}

// Scheme returns the deep-link scheme the app is registered for.
func (a *App) Scheme() string {
	return a.config.App.Scheme
}

// configFlagValue extracts the --config/-c flag from a GUI launch's argv.
// Cobra only parses flags in CLI mode; GUI mode receives the raw argv.
func configFlagValue(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--config" || arg == "-c":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}

// Run launches the Wails GUI application. For a secondary launch it forwards
// the invocation to the running primary and returns nil so the process exits 0.
func Run(args []string) error {
	// Initialize GUI logger
	wailsLogger = logging.NewLogger("gui")

	cfg, cfgPath, cfgExists, err := config.Load(configFlagValue(args))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfgExists {
		wailsLogger.Info().Str("path", cfgPath).Msg("Loaded configuration")
	}

	// Set log level based on STATISFY_DEBUG environment variable or config
	if os.Getenv("STATISFY_DEBUG") != "" || cfg.App.Debug {
		logging.SetGlobalLevel(zerolog.DebugLevel)
		wailsLogger.Info().Msg("Debug logging enabled")
	} else {
		logging.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Check for display on Linux
	if runtime.GOOS == "linux" {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			return fmt.Errorf("GUI mode requires a display. No display detected.\n" +
				"DISPLAY and WAYLAND_DISPLAY are not set.\n" +
				"Use 'statisfy --help' for CLI commands")
		}
	}

	app := NewApp()
	app.config = cfg
	app.launchArgs = args
	app.bus = events.NewEventBus(constants.EventBusDefaultBuffer)
	app.notifier = notify.NewNotifier(cfg.Notifications.Enabled, wailsLogger)
	app.registrar = deeplink.NewRegistrar(cfg.App.Scheme, wailsLogger)
	app.bridge = deeplink.NewBridge(app.bus, cfg.App.Scheme, wailsLogger)

	// OS scheme activations and forwarded invocations converge on the bus;
	// the bridge serializes them into frontend events. Its subscription is
	// live from construction, so a handoff acked between Acquire and the
	// startup hook waits in the buffer instead of being dropped.
	app.registrar.OnActivate(func(urls []string) {
		app.bus.PublishActivation(urls, "scheme")
	})

	app.guard = singleinstance.New(wailsLogger)
	app.guard.SetInvocation(singleinstance.CurrentInvocation())
	app.guard.OnHandoff(func(inv singleinstance.Invocation) {
		app.bus.PublishHandoff(inv.Args, inv.WorkingDir, inv.PID)
		app.focusWindow()
	})

	role, err := app.guard.Acquire()
	if err != nil {
		return fmt.Errorf("single-instance arbitration failed: %w", err)
	}
	if role == singleinstance.RoleSecondary {
		// Invocation already forwarded to the primary; exit successfully.
		wailsLogger.Info().Msg("Another instance is running, forwarded launch and exiting")
		app.notifier.AlreadyRunning()
		return nil
	}

	windowTitle := cfg.Window.Title
	if windowTitle == "" {
		windowTitle = fmt.Sprintf("Statisfy %s", cli.Version)
	}

	err = wails.Run(&options.App{
		Title:     windowTitle,
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		MinWidth:  640,
		MinHeight: 480,
		AssetServer: &assetserver.Options{
			Assets: Assets,
		},
		BackgroundColour: &options.RGBA{R: 248, G: 250, B: 252, A: 1}, // slate-50
		OnStartup:        app.startup,
		OnDomReady:       app.domReady,
		OnBeforeClose:    app.beforeClose,
		OnShutdown:       app.shutdown,
		Bind: []interface{}{
			app,
		},
		// Platform-specific options
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: false,
				HideTitle:                  false,
				HideTitleBar:               false,
				FullSizeContent:            false,
				UseToolbar:                 false,
			},
			About: &mac.AboutInfo{
				Title:   "Statisfy",
				Message: fmt.Sprintf("Version %s\n\nDesktop client with deep-link support.", cli.Version),
			},
			// macOS delivers scheme activations to the running process
			// instead of spawning a second one.
			OnUrlOpen: func(url string) {
				app.registrar.Deliver([]string{url})
			},
		},
		Windows: &windows.Options{
			WebviewIsTransparent:              false,
			WindowIsTranslucent:               false,
			DisableWindowIcon:                 false,
			DisableFramelessWindowDecorations: false,
			WebviewUserDataPath:               "",
		},
		Linux: &linux.Options{
			WindowIsTranslucent: false,
		},
	})

	if err != nil {
		return fmt.Errorf("wails application error: %w", err)
	}

	return nil
}
