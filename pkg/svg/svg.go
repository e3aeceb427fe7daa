// Package svg builds and reads the minimal SVG wrapper that embeds a PNG
// rendition of an image as a base64 data URI.
package svg

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

const (
	// Namespace is the SVG XML namespace.
	Namespace = "http://www.w3.org/2000/svg"
	// DataURIPrefix precedes the base64 payload in the image href.
	DataURIPrefix = "data:image/png;base64,"
)

// Document is a parsed wrapper.
type Document struct {
	Width  int
	Height int
	// PNG is the decoded payload of the embedded image.
	PNG []byte
}

// Wrap returns an SVG document whose single <image> element shows pngData
// at width×height.
func Wrap(pngData []byte, width, height int) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="%s" width="%d" height="%d">`+"\n", Namespace, width, height)
	b.WriteString(`  <image href="`)
	b.WriteString(DataURIPrefix)
	b.WriteString(base64.StdEncoding.EncodeToString(pngData))
	fmt.Fprintf(&b, `" width="%d" height="%d" />`+"\n", width, height)
	b.WriteString("</svg>\n")
	return b.Bytes()
}

type svgRoot struct {
	XMLName xml.Name `xml:"svg"`
	Width   string   `xml:"width,attr"`
	Height  string   `xml:"height,attr"`
	Images  []struct {
		Href   string `xml:"href,attr"`
		Width  string `xml:"width,attr"`
		Height string `xml:"height,attr"`
	} `xml:"image"`
}

// Parse reads a wrapper produced by Wrap and decodes its payload.
func Parse(data []byte) (*Document, error) {
	var root svgRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing svg: %w", err)
	}
	if root.XMLName.Space != Namespace {
		return nil, fmt.Errorf("unexpected svg namespace %q", root.XMLName.Space)
	}
	if len(root.Images) != 1 {
		return nil, fmt.Errorf("expected exactly one image element, got %d", len(root.Images))
	}

	width, err := strconv.Atoi(root.Width)
	if err != nil {
		return nil, fmt.Errorf("svg width: %w", err)
	}
	height, err := strconv.Atoi(root.Height)
	if err != nil {
		return nil, fmt.Errorf("svg height: %w", err)
	}

	img := root.Images[0]
	if img.Width != root.Width || img.Height != root.Height {
		return nil, fmt.Errorf("image size %sx%s differs from document %sx%s", img.Width, img.Height, root.Width, root.Height)
	}
	if !strings.HasPrefix(img.Href, DataURIPrefix) {
		return nil, fmt.Errorf("image href is not a PNG data URI")
	}
	payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(img.Href, DataURIPrefix))
	if err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}

	return &Document{Width: width, Height: height, PNG: payload}, nil
}
