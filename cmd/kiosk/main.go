// Kiosk runs the iris capture station: it owns the camera for the
// lifetime of the process, drives the capture workflow against the
// remote biometric service, and serves the local dashboard.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/irisauth/kiosk/internal/config"
	"github.com/irisauth/kiosk/internal/log"
	"github.com/irisauth/kiosk/pkg/capture"
	"github.com/irisauth/kiosk/pkg/media"
	"github.com/irisauth/kiosk/pkg/transport"
	"github.com/irisauth/kiosk/pkg/ui"
	"github.com/irisauth/kiosk/pkg/workflow"
)

// previewQuality is lower than capture quality; preview frames are
// throwaway and bandwidth matters more than fidelity.
const previewQuality = 70

const previewInterval = 100 * time.Millisecond

// uiNotifier forwards workflow progress to the dashboard once it exists.
type uiNotifier struct {
	srv *ui.Server
}

func (n *uiNotifier) PhaseChanged(flow transport.FlowKind, phase workflow.Phase) {
	if n.srv != nil {
		n.srv.PushStatus()
	}
}

func (n *uiNotifier) Resolved(result transport.Result) {
	if n.srv != nil {
		n.srv.PushStatus()
	}
}

func main() {
	configPath := flag.String("config", "kiosk.yaml", "Path to the kiosk config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("load config", "err", err)
		os.Exit(1)
	}
	log.Init(cfg.Log.Level)

	constraints := media.Constraints{
		DeviceID:   cfg.Camera.DeviceID,
		Width:      cfg.Camera.Width,
		Height:     cfg.Camera.Height,
		FacingMode: cfg.Camera.FacingMode,
	}

	session := media.NewSession(media.OpenWebcam)
	client := transport.NewClient(cfg.Server.BaseURL)
	capturer := capture.New(cfg.Camera.JPEGQuality)

	notifier := &uiNotifier{}
	wf := workflow.New(session, capturer, client,
		workflow.WithListener(notifier),
		workflow.WithNavigator(cfg.UI.RedirectDelay(), func() {
			if notifier.srv != nil {
				notifier.srv.PushNavigation("/")
			}
		}),
	)

	srv := ui.NewServer(cfg.UI.Port, wf, client, constraints)
	notifier.srv = srv

	// Session start: acquire once up front. On failure the dashboard
	// shows the cause and offers re-acquisition; no automatic retry.
	if err := session.Acquire(constraints); err != nil {
		log.Warn("camera not available at startup", "err", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go runPreview(ctx, session, srv)

	go func() {
		if err := srv.Start(); err != nil {
			log.Error("dashboard server", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	// Teardown releases the camera unconditionally; any in-flight
	// transmission completes or fails on its own.
	session.Release()
	if err := srv.Shutdown(); err != nil {
		log.Warn("dashboard shutdown", "err", err)
	}
	log.Info("kiosk stopped")
}

// runPreview relays low-quality frames to the dashboard while the
// camera is active. Read errors are throttled, not fatal: the session
// may simply be released or mid-reacquisition.
func runPreview(ctx context.Context, session *media.Session, srv *ui.Server) {
	ticker := time.NewTicker(previewInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if session.State() != media.Active {
				continue
			}
			data, _, _, err := session.CaptureJPEG(previewQuality)
			if err != nil {
				log.Debug("preview frame", "err", err)
				continue
			}
			srv.PushPreviewFrame(data)
		}
	}
}
