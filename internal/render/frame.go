package render

import (
	"fmt"
	"strconv"
)

// DefaultVirtualWidth is the viewport width previews are laid out for.
const DefaultVirtualWidth = 1600

// Frame scales a fixed-width preview to fit a container.
type Frame struct {
	VirtualWidth float64
}

// NewFrame returns a Frame using DefaultVirtualWidth.
func NewFrame() Frame {
	return Frame{VirtualWidth: DefaultVirtualWidth}
}

// Scale returns the uniform factor that fits VirtualWidth into containerWidth.
// A non-positive container width leaves the preview unscaled.
func (f Frame) Scale(containerWidth float64) float64 {
	if containerWidth <= 0 {
		return 1
	}
	return containerWidth / f.virtualWidth()
}

// Style is the inline CSS applied to the preview wrapper.
func (f Frame) Style(containerWidth float64) string {
	return fmt.Sprintf("transform: scale(%s); transform-origin: top left; width: %spx",
		strconv.FormatFloat(f.Scale(containerWidth), 'f', -1, 64),
		strconv.FormatFloat(f.virtualWidth(), 'f', -1, 64),
	)
}

// Wrap places already-sanitized preview HTML inside the scaled frame.
func (f Frame) Wrap(body string, containerWidth float64) string {
	return fmt.Sprintf(`<div class="preview-frame" data-virtual-width="%s" style="%s">%s</div>`,
		strconv.FormatFloat(f.virtualWidth(), 'f', -1, 64),
		f.Style(containerWidth),
		body,
	)
}

func (f Frame) virtualWidth() float64 {
	if f.VirtualWidth <= 0 {
		return DefaultVirtualWidth
	}
	return f.VirtualWidth
}
