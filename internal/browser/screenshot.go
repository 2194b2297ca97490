package browser

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"

	"github.com/playwright-community/playwright-go"
	ximage "golang.org/x/image/draw"
)

// Screenshot captures the owned page, full-page when requested.
func (s *Session) Screenshot(fullPage bool) ([]byte, error) {
	s.mu.Lock()
	page := s.Page
	s.mu.Unlock()

	return page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(fullPage),
		Type:     playwright.ScreenshotTypeJpeg,
		Quality:  playwright.Int(80),
	})
}

// Box is an element's bounding box in page coordinates, used to place
// annotation markers.
type Box struct {
	X, Y, Width, Height float64
}

// ElementBoxes evaluates the bounding box of every entry in the current
// selector map, one locator.Evaluate call per element, so
// AnnotatedScreenshot can draw a marker per element. Elements whose box
// cannot be read are left out of the result.
func (s *Session) ElementBoxes(selectorMap map[int]string) (map[int]Box, error) {
	boxes := make(map[int]Box, len(selectorMap))
	for id, xpath := range selectorMap {
		locator, err := s.Locate(id, selectorMap)
		if err != nil {
			continue
		}
		rectAny, err := locator.Evaluate(`el => { const r = el.getBoundingClientRect(); return {x: r.x, y: r.y, width: r.width, height: r.height}; }`, nil)
		if err != nil {
			continue
		}
		rect, ok := rectAny.(map[string]any)
		if !ok {
			continue
		}
		boxes[id] = Box{
			X:      toFloat(rect["x"]),
			Y:      toFloat(rect["y"]),
			Width:  toFloat(rect["width"]),
			Height: toFloat(rect["height"]),
		}
		_ = xpath
	}
	return boxes, nil
}

func toFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}

// AnnotatedScreenshot implements the Screenshot Annotation Service
// (spec.md §4.9): it decodes shot, draws a colored outline at the
// bounding box of every entry in boxes, and re-encodes as JPEG. The
// outlines carry no element number.
func AnnotatedScreenshot(shot []byte, boxes map[int]Box) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}

	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	ximage.BiLinear.Scale(dst, bounds, src, bounds, ximage.Over, nil)

	marker := color.RGBA{R: 255, G: 51, B: 102, A: 255}
	for _, box := range boxes {
		drawBoxOutline(dst, box, marker)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("encode annotated screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

func drawBoxOutline(dst draw.Image, box Box, c color.Color) {
	x0, y0 := int(box.X), int(box.Y)
	x1, y1 := int(box.X+box.Width), int(box.Y+box.Height)
	bounds := dst.Bounds()

	clamp := func(v, lo, hi int) int {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	x0, x1 = clamp(x0, bounds.Min.X, bounds.Max.X), clamp(x1, bounds.Min.X, bounds.Max.X)
	y0, y1 = clamp(y0, bounds.Min.Y, bounds.Max.Y), clamp(y1, bounds.Min.Y, bounds.Max.Y)

	const thickness = 2
	for x := x0; x < x1; x++ {
		for t := 0; t < thickness; t++ {
			dst.Set(x, y0+t, c)
			dst.Set(x, y1-t, c)
		}
	}
	for y := y0; y < y1; y++ {
		for t := 0; t < thickness; t++ {
			dst.Set(x0+t, y, c)
			dst.Set(x1-t, y, c)
		}
	}
}
