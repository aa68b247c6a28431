package cam

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeImages(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
}

func TestNew(t *testing.T) {
	camera, err := New("data/ATLAS_CAM")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := camera.Name(); got != "ATLAS_CAM" {
		t.Errorf("Name: got %q, want ATLAS_CAM", got)
	}
}

func TestNewNamed(t *testing.T) {
	camera := NewNamed("AtlasCam", "data/ATLAS_CAM")
	if got := camera.Name(); got != "AtlasCam" {
		t.Errorf("Name: got %q, want AtlasCam", got)
	}
}

func TestImages(t *testing.T) {
	dir := t.TempDir()
	writeImages(t, dir,
		"ATLAS_CAM_20160725_141500.jpg",
		"ATLAS_CAM_20160725_121500.jpg",
		"thumbs.db",
		"ATLAS_CAM_partial.jpg")

	camera := NewNamed("ATLAS_CAM", dir)
	images, err := camera.Images()
	if err != nil {
		t.Fatalf("Images: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("got %d images, want 2", len(images))
	}
	if images[0].Filename != "ATLAS_CAM_20160725_121500.jpg" {
		t.Errorf("images not sorted by capture time: first is %s", images[0].Filename)
	}
}

func TestLatest(t *testing.T) {
	dir := t.TempDir()
	writeImages(t, dir,
		"ATLAS_CAM_20160725_121500.jpg",
		"ATLAS_CAM_20160725_141500.jpg")

	camera := NewNamed("ATLAS_CAM", dir)
	latest, ok, err := camera.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if !ok {
		t.Fatal("Latest: no image")
	}
	if latest.Filename != "ATLAS_CAM_20160725_141500.jpg" {
		t.Errorf("Latest: got %s", latest.Filename)
	}
	want := time.Date(2016, 7, 25, 14, 15, 0, 0, time.UTC)
	if !latest.Datetime.Equal(want) {
		t.Errorf("Datetime: got %v, want %v", latest.Datetime, want)
	}
}

func TestLatest_EmptyDirectory(t *testing.T) {
	camera := NewNamed("ATLAS_CAM", t.TempDir())
	_, ok, err := camera.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if ok {
		t.Error("empty directory should have no latest image")
	}
}

func TestURL(t *testing.T) {
	base, err := url.Parse("http://iridiumcam.lidar.io")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	camera := NewNamed("ATLAS_CAM", "unused")
	got := camera.URL(base, "ATLAS_CAM_20160725_141500.jpg").String()
	want := "http://iridiumcam.lidar.io/ATLAS_CAM/ATLAS_CAM_20160725_141500.jpg"
	if got != want {
		t.Errorf("URL: got %s, want %s", got, want)
	}
}

func TestDatetimeFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		ok       bool
	}{
		{"ATLAS_CAM_20160725_141500.jpg", true},
		{"HEL_BERGY_20160725_141500.jpg", true},
		{"ATLAS_CAM_20160725_141500.png", false},
		{"ATLAS_CAM.jpg", false},
		{"20160725141500.jpg", false},
		{"ATLAS_CAM_99999999_999999.jpg", false},
	}
	for _, tt := range tests {
		datetime, ok := DatetimeFromFilename(tt.filename)
		if ok != tt.ok {
			t.Errorf("%s: got ok=%t, want %t", tt.filename, ok, tt.ok)
			continue
		}
		if ok && datetime.IsZero() {
			t.Errorf("%s: zero datetime", tt.filename)
		}
	}
}
