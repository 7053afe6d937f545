// Package capture normalizes the two input capabilities, image files and
// speech, into plain payloads for the analysis selector.
package capture

import (
	"strings"
	"sync"

	"github.com/echoremedy/echoremedy-bot/internal/errors"
)

// File is a file-like object offered to the photo adapter.
type File struct {
	Name      string
	MediaType string
	Size      int64
	// Source locates the content for the previewer (a path, a file id).
	Source string
}

// IsImage reports whether the declared media type is an image type.
func (f File) IsImage() bool {
	return strings.HasPrefix(f.MediaType, "image/")
}

// Previewer produces a displayable reference for an accepted file.
type Previewer interface {
	Preview(f File) (string, error)
}

// PreviewFunc adapts a function to the Previewer interface.
type PreviewFunc func(f File) (string, error)

func (fn PreviewFunc) Preview(f File) (string, error) {
	return fn(f)
}

// SourcePreview uses the file's Source as its preview reference.
var SourcePreview = PreviewFunc(func(f File) (string, error) {
	return f.Source, nil
})

// PhotoAdapter holds the selected image and its preview.
type PhotoAdapter struct {
	previewer Previewer

	mu       sync.Mutex
	dragging bool
	file     *File
	preview  string
}

func NewPhotoAdapter(previewer Previewer) *PhotoAdapter {
	if previewer == nil {
		previewer = SourcePreview
	}
	return &PhotoAdapter{previewer: previewer}
}

// SelectFile accepts f if its media type starts with "image/" and returns the
// preview reference. A rejected file leaves the adapter untouched.
func (a *PhotoAdapter) SelectFile(f File) (string, error) {
	if !f.IsImage() {
		return "", errors.NewInvalidFileTypeError(f.MediaType)
	}

	preview, err := a.previewer.Preview(f)
	if err != nil {
		return "", errors.NewBackendError(err, "prepare image preview").WithContext("file_name", f.Name)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.file = &f
	a.preview = preview
	return preview, nil
}

func (a *PhotoAdapter) DragEnter() {
	a.mu.Lock()
	a.dragging = true
	a.mu.Unlock()
}

func (a *PhotoAdapter) DragLeave() {
	a.mu.Lock()
	a.dragging = false
	a.mu.Unlock()
}

// Drop selects the first of the dropped files; the rest are ignored.
// Dropping nothing is a no-op that returns an empty preview.
func (a *PhotoAdapter) Drop(files []File) (string, error) {
	a.DragLeave()
	if len(files) == 0 {
		return "", nil
	}
	return a.SelectFile(files[0])
}

func (a *PhotoAdapter) Dragging() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dragging
}

// Ready reports whether an image is selected and can be analyzed.
func (a *PhotoAdapter) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.file != nil
}

func (a *PhotoAdapter) Preview() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.preview
}

