package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// parseDOCX joins the text of every body paragraph with newlines
func parseDOCX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	f := findZipFile(&zr.Reader, "word/document.xml")
	if f == nil {
		return "", fmt.Errorf("docx has no word/document.xml")
	}
	paras, err := readParagraphs(f, "p", "t")
	if err != nil {
		return "", fmt.Errorf("read document.xml: %w", err)
	}
	return strings.Join(paras, "\n"), nil
}

var slidePath = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// parsePPTX emits the text of every text-bearing shape, slide by slide,
// each followed by a newline
func parsePPTX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open pptx: %w", err)
	}
	defer zr.Close()

	type slide struct {
		n int
		f *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		if m := slidePath.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{n: n, f: f})
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	var sb strings.Builder
	for _, s := range slides {
		shapes, err := readShapes(s.f)
		if err != nil {
			return "", fmt.Errorf("slide %d: %w", s.n, err)
		}
		for _, text := range shapes {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

func findZipFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// readParagraphs streams an OOXML part and returns the concatenated runs of
// each paraTag element. Tabs and breaks inside a paragraph become \t and \n.
func readParagraphs(f *zip.File, paraTag, textTag string) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var (
		paras  []string
		cur    strings.Builder
		inPara bool
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case paraTag:
				inPara = true
				cur.Reset()
			case textTag:
				inText = inPara
			case "tab":
				if inPara {
					cur.WriteString("\t")
				}
			case "br", "cr":
				if inPara {
					cur.WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case paraTag:
				paras = append(paras, cur.String())
				inPara = false
			case textTag:
				inText = false
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return paras, nil
}

// readShapes returns the text of each shape with a text body on a slide.
// Paragraphs within a shape are joined with newlines.
func readShapes(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var (
		shapes  []string
		paras   []string
		cur     strings.Builder
		inShape bool
		hasBody bool
		inPara  bool
		inText  bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sp":
				inShape, hasBody, paras = true, false, nil
			case "txBody":
				hasBody = inShape
			case "p":
				if hasBody {
					inPara = true
					cur.Reset()
				}
			case "t":
				inText = inPara
			case "br":
				if inPara {
					cur.WriteString("\v")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "sp":
				if hasBody {
					shapes = append(shapes, strings.Join(paras, "\n"))
				}
				inShape, hasBody = false, false
			case "p":
				if inPara {
					paras = append(paras, cur.String())
					inPara = false
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return shapes, nil
}
