package cam

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// datetimeLayout is the capture-time portion of an image filename.
const datetimeLayout = "20060102_150405"

// extension is the only image type the cameras produce.
const extension = ".jpg"

// Camera is one remote camera and its image directory.
type Camera struct {
	name string
	dir  string
}

// Image is one capture: the bare filename and the capture time encoded in
// it.
type Image struct {
	Filename string
	Datetime time.Time
}

// New creates a camera for the given image directory. The camera's name
// defaults to the directory name; use NewNamed when they differ.
func New(dir string) (*Camera, error) {
	name := filepath.Base(filepath.Clean(dir))
	if name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("cam: invalid camera directory: %s", dir)
	}
	return &Camera{name: name, dir: dir}, nil
}

// NewNamed creates a camera whose name differs from its directory name.
func NewNamed(name, dir string) *Camera {
	return &Camera{name: name, dir: dir}
}

// Name returns the camera's name.
func (c *Camera) Name() string { return c.name }

// Dir returns the camera's image directory.
func (c *Camera) Dir() string { return c.dir }

// Images returns every image in the camera's directory, sorted ascending by
// capture time. Files whose names do not encode a capture time are skipped,
// not errors: the upload process litters the directories with partials.
func (c *Camera) Images() ([]Image, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("cam: %s: %w", c.name, err)
	}
	var images []Image
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		datetime, ok := DatetimeFromFilename(entry.Name())
		if !ok {
			continue
		}
		images = append(images, Image{Filename: entry.Name(), Datetime: datetime})
	}
	sort.Slice(images, func(i, j int) bool {
		return images[i].Datetime.Before(images[j].Datetime)
	})
	return images, nil
}

// Latest returns the newest image, or false if the directory holds none.
func (c *Camera) Latest() (Image, bool, error) {
	images, err := c.Images()
	if err != nil {
		return Image{}, false, err
	}
	if len(images) == 0 {
		return Image{}, false, nil
	}
	return images[len(images)-1], true, nil
}

// URL joins an image filename onto the camera's path under the public image
// server.
func (c *Camera) URL(base *url.URL, filename string) *url.URL {
	u := *base
	u.Path = path.Join(u.Path, c.name, filename)
	return &u
}

// DatetimeFromFilename parses the capture time out of an image filename,
// which ends in _YYYYMMDD_HHMMSS.jpg after the camera name. The second
// return value is false if the name does not follow the pattern.
func DatetimeFromFilename(filename string) (time.Time, bool) {
	if !strings.HasSuffix(filename, extension) {
		return time.Time{}, false
	}
	stem := strings.TrimSuffix(filename, extension)
	if len(stem) < len(datetimeLayout)+1 {
		return time.Time{}, false
	}
	encoded := stem[len(stem)-len(datetimeLayout):]
	if stem[len(stem)-len(datetimeLayout)-1] != '_' {
		return time.Time{}, false
	}
	t, err := time.Parse(datetimeLayout, encoded)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
