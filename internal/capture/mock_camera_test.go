package capture

import (
	"bytes"
	"testing"

	"gocv.io/x/gocv"
)

func TestMockCamera_Playback(t *testing.T) {
	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame1, &frame2}, false)

	if _, err := cam.ReadFrame(); err != ErrCameraNotOpen {
		t.Errorf("ReadFrame() before Open error = %v", err)
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	for i := 0; i < 2; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		f.Close()
	}

	if _, err := cam.ReadFrame(); err != ErrNoFrame {
		t.Errorf("ReadFrame() after the last frame error = %v, want ErrNoFrame", err)
	}

	cam.Reset()
	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() after Reset error = %v", err)
	}
	f.Close()
}

func TestMockCamera_Loop(t *testing.T) {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	cam.Open()
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		f.Close()
	}
	if cam.Reads() != 5 {
		t.Errorf("Reads() = %d, want 5", cam.Reads())
	}
}

func TestMockCamera_BlankFrames(t *testing.T) {
	cam := NewMockCamera(nil, false)
	cam.Open()
	defer cam.Close()

	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	defer f.Close()

	if f.Cols() != 64 || f.Rows() != 36 {
		t.Errorf("blank frame = %dx%d, want 64x36", f.Cols(), f.Rows())
	}

	jpg, err := EncodeJPEG(f, 80)
	if err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	if !bytes.HasPrefix(jpg, []byte{0xFF, 0xD8}) {
		t.Error("EncodeJPEG() did not produce a JPEG")
	}
}
