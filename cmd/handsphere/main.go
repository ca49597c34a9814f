package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ayusman/handsphere/internal/app"
	"github.com/ayusman/handsphere/internal/capture"
	"github.com/ayusman/handsphere/internal/config"
	"github.com/ayusman/handsphere/internal/detector"
	"github.com/ayusman/handsphere/internal/gallery"
	"github.com/ayusman/handsphere/internal/hook"
	"github.com/ayusman/handsphere/internal/logging"
	"github.com/ayusman/handsphere/internal/server"
	"github.com/ayusman/handsphere/internal/store"
	"github.com/ayusman/handsphere/internal/tray"
)

func main() {
	configDir := flag.String("config", config.DefaultDir(), "Configuration directory")
	noCamera := flag.Bool("no-camera", false, "Only accept landmarks from a browser tracker")
	flag.Parse()

	if err := run(*configDir, *noCamera); err != nil {
		fmt.Fprintf(os.Stderr, "handsphere: %v\n", err)
		os.Exit(1)
	}
}

func run(configDir string, noCamera bool) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}

	log, logFile, err := logging.Setup(os.Stderr, cfg.LogsDir, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	log.Info().Str("config", configDir).Msg("HandSphere starting")

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	appCfg := app.Config{
		Store:         st,
		Log:           log,
		IdleFPS:       cfg.Tracker.IdleFPS,
		ActiveFPS:     cfg.Tracker.ActiveFPS,
		IdleTimeout:   cfg.Tracker.IdleTimeout,
		WakeThreshold: cfg.Tracker.WakeThreshold,
		RenderFPS:     cfg.Render.FPS,
		Enabled:       cfg.Tracker.Enabled,
	}
	if !noCamera {
		appCfg.Camera, appCfg.Detector = openTracker(cfg, log)
	}

	a := app.New(appCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hooks := hook.NewManager(cfg.Hooks.Dir)
	if err := hooks.Discover(); err != nil {
		log.Warn().Err(err).Str("dir", cfg.Hooks.Dir).Msg("failed to load gesture hooks")
	} else if n := len(hooks.List()); n > 0 {
		log.Info().Int("hooks", n).Str("dir", cfg.Hooks.Dir).Msg("gesture hooks loaded")
	}
	dispatcher := hook.NewDispatcher(hooks, hook.NewExecutor(cfg.Hooks.Timeout), log)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Hooks.Timeout)
		defer cancel()
		dispatcher.Close(ctx)
	}()
	a.OnGesture(func(e app.Event) {
		dispatcher.Dispatch(hook.Request{
			Event:     e.Kind,
			At:        e.At,
			WristX:    e.WristX,
			VelocityY: e.VelocityY,
			ZoomLevel: e.ZoomLevel,
		})
	})

	if err := a.Start(ctx); err != nil {
		return err
	}
	defer a.Stop()

	g := gallery.New(gallery.Config{
		MaxImages: cfg.Gallery.MaxImages,
		ImageSize: cfg.Gallery.ImageSize,
		Radius:    cfg.Sphere.Radius,
	})
	g.OnChange(func(n int) {
		log.Info().Int("images", n).Msg("gallery replaced")
	})

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir(configDir)
	}
	if staticDir != "" {
		log.Info().Str("dir", staticDir).Msg("serving static files")
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		App:       a,
		Gallery:   g,
		Store:     st,
		Radius:    cfg.Sphere.Radius,
		Log:       log,
	})

	if !cfg.Tray.Enabled {
		return srv.Run(ctx, cfg.Server.Addr)
	}

	// The tray owns the main thread until it quits.
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Run(ctx, cfg.Server.Addr)
		stop()
	}()

	t := tray.New(a.IsEnabled())
	t.OnToggle(a.SetEnabled)
	t.OnOpen(func() { openBrowser(viewerURL(cfg.Server.Addr), log) })
	t.OnQuit(stop)
	a.OnEnabledChange(t.SetEnabled)
	a.OnGesture(func(e app.Event) { t.SetLastGesture(e.Kind) })

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()

	stop()
	return <-serveErr
}

// openTracker opens the webcam and the MediaPipe detector. Either failing
// leaves the app in browser-tracker mode.
func openTracker(cfg config.Config, log zerolog.Logger) (capture.Camera, detector.Detector) {
	detCfg := detector.DefaultConfig()
	detCfg.MinConfidence = cfg.Detector.MinConfidence
	detCfg.MinTrackingConf = cfg.Detector.MinTrackingConf
	detCfg.ScriptDirs = []string{filepath.Join(cfg.Dir, "scripts")}

	det, err := detector.NewMediaPipeDetector(detCfg, log)
	if err != nil {
		if errors.Is(err, detector.ErrScriptNotFound) {
			log.Warn().Msg("MediaPipe helper not found, camera tracking disabled")
		} else {
			log.Warn().Err(err).Msg("failed to create detector")
		}
		return nil, nil
	}

	cam := capture.NewCamera(capture.Config{
		DeviceID: cfg.Camera.DeviceID,
		Width:    cfg.Camera.Width,
		Height:   cfg.Camera.Height,
		Mirror:   cfg.Camera.Mirror,
	})
	if err := cam.Open(); err != nil {
		log.Warn().Err(err).Int("device", cfg.Camera.DeviceID).Msg("camera unavailable, camera tracking disabled")
		det.Close()
		return nil, nil
	}

	return cam, det
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <configDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(configDir string) string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(configDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func viewerURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string, log zerolog.Logger) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("failed to open browser")
		return
	}
	log.Info().Str("url", url).Msg("opened viewer")
}
