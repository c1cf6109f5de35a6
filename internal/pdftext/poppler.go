package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// PopplerReader shells out to `pdftotext -bbox` and parses the word boxes.
type PopplerReader struct {
	bin    string
	runner Runner
	logger *slog.Logger
}

func NewPopplerReader(bin string, runner Runner, logger *slog.Logger) *PopplerReader {
	if logger == nil {
		logger = slog.Default()
	}
	if bin == "" {
		bin = "pdftotext"
	}
	if runner == nil {
		runner = execRunner{logger: logger}
	}
	return &PopplerReader{bin: bin, runner: runner, logger: logger}
}

func (p *PopplerReader) Pages(ctx context.Context, path string) ([][]Fragment, error) {
	// pdftotext -bbox -enc UTF-8 <path> -
	out, errb, err := p.runner.Run(ctx, p.bin, "-bbox", "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrUnreadable, p.bin, err, truncate(string(errb), 512))
	}
	return parseBBox(bytes.NewReader(out))
}

// parseBBox reads the XHTML produced by -bbox:
//
//	<page width=".." height=".."><word xMin=".." yMin=".." xMax=".." yMax="..">text</word>...</page>
func parseBBox(r io.Reader) ([][]Fragment, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: bbox output: %v", ErrUnreadable, err)
	}

	var pages [][]Fragment
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "page":
				pages = append(pages, []Fragment{})
			case "word":
				if len(pages) == 0 {
					pages = append(pages, []Fragment{})
				}
				if f, ok := wordFragment(n); ok {
					pages[len(pages)-1] = append(pages[len(pages)-1], f)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return pages, nil
}

func wordFragment(n *html.Node) (Fragment, bool) {
	var xMin, yMin, xMax, yMax float64
	for _, a := range n.Attr {
		v, err := strconv.ParseFloat(a.Val, 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(a.Key) {
		case "xmin":
			xMin = v
		case "ymin":
			yMin = v
		case "xmax":
			xMax = v
		case "ymax":
			yMax = v
		}
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			text.WriteString(c.Data)
		}
	}
	if text.Len() == 0 {
		return Fragment{}, false
	}

	return Fragment{
		Text:     text.String(),
		X:        xMin,
		Y:        yMax, // bottom of the box approximates the baseline
		Width:    xMax - xMin,
		FontSize: yMax - yMin,
	}, true
}
