// Iriscap is a one-shot capture tool: acquire the camera, take a
// single frame, send it through one flow, and print the result.
// Useful for bench-testing a kiosk against the service without the
// dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/irisauth/kiosk/internal/config"
	"github.com/irisauth/kiosk/internal/log"
	"github.com/irisauth/kiosk/pkg/capture"
	"github.com/irisauth/kiosk/pkg/media"
	"github.com/irisauth/kiosk/pkg/transport"
)

func main() {
	configPath := flag.String("config", "kiosk.yaml", "Path to the kiosk config file")
	flowName := flag.String("flow", "verify", "Flow to run: register_enroll, user_enroll, verify")
	outFile := flag.String("out", "", "Also save the transmitted frame to this file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.Log.Level)

	flow := transport.FlowKind(*flowName)
	if !flow.Valid() {
		fmt.Fprintf(os.Stderr, "unknown flow %q\n", *flowName)
		os.Exit(1)
	}

	session := media.NewSession(media.OpenWebcam)
	defer session.Release()

	constraints := media.Constraints{
		DeviceID:   cfg.Camera.DeviceID,
		Width:      cfg.Camera.Width,
		Height:     cfg.Camera.Height,
		FacingMode: cfg.Camera.FacingMode,
	}
	if err := session.Acquire(constraints); err != nil {
		fmt.Fprintf(os.Stderr, "camera: %v\n", err)
		os.Exit(1)
	}

	capturer := capture.New(cfg.Camera.JPEGQuality)

	// One frame only. The saved image, if requested, is exactly the
	// image transmitted.
	frame, err := capturer.CaptureFrame(session)
	if err != nil {
		fmt.Fprintf(os.Stderr, "capture: %v\n", err)
		os.Exit(1)
	}

	if *outFile != "" {
		if err := os.WriteFile(*outFile, frame.EncodedBytes, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "save: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("saved %dx%d frame (%d bytes) to %s\n",
			frame.Width, frame.Height, len(frame.EncodedBytes), *outFile)
	}

	client := transport.NewClient(cfg.Server.BaseURL)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result := client.Send(ctx, flow, frame)

	if result.OK() {
		fmt.Printf("%s: success", flow)
		if result.Message != "" {
			fmt.Printf(" (%s)", result.Message)
		}
		fmt.Println()
		return
	}
	fmt.Printf("%s: failed: %s\n", flow, result.Message)
	os.Exit(1)
}
