package media

import (
	"fmt"

	"gocv.io/x/gocv"
)

// webcam is the OpenCV-backed Device used on kiosk hardware.
type webcam struct {
	cam *gocv.VideoCapture
}

// OpenWebcam opens the local camera described by c. The width/height
// constraints are requested but not guaranteed; the driver may deliver
// its own native resolution.
func OpenWebcam(c Constraints) (Device, error) {
	if c.Width <= 0 || c.Height <= 0 {
		return nil, fmt.Errorf("%w: requested %dx%d", ErrConstraints, c.Width, c.Height)
	}

	cam, err := gocv.OpenVideoCapture(c.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", ErrNoDevice, c.DeviceID, err)
	}
	if !cam.IsOpened() {
		cam.Close()
		return nil, fmt.Errorf("%w: device %d", ErrPermissionDenied, c.DeviceID)
	}

	cam.Set(gocv.VideoCaptureFrameWidth, float64(c.Width))
	cam.Set(gocv.VideoCaptureFrameHeight, float64(c.Height))

	return &webcam{cam: cam}, nil
}

// CaptureJPEG reads one frame and encodes it at the given quality.
func (w *webcam) CaptureJPEG(quality int) ([]byte, int, int, error) {
	img := gocv.NewMat()
	defer img.Close()

	if ok := w.cam.Read(&img); !ok || img.Empty() {
		return nil, 0, 0, fmt.Errorf("media: cannot read frame from device")
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img,
		[]int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("media: encode frame: %w", err)
	}
	defer buf.Close()

	// Copy out: the native buffer is freed on Close.
	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())

	return data, img.Cols(), img.Rows(), nil
}

// Close releases the camera handle.
func (w *webcam) Close() error {
	return w.cam.Close()
}
