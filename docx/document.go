// Package docx edits WordprocessingML packages in place: it keeps every part of the
// source archive and rewrites only the document body, its relationships, the
// content type map and the style sheet.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const (
	documentPart     = "word/document.xml"
	documentRelsPart = "word/_rels/document.xml.rels"
	stylesPart       = "word/styles.xml"
	contentTypesPart = "[Content_Types].xml"

	nsWP = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsR  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	relTypeImage = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

var ErrNoBody = errors.New("docx: document has no body")

type part struct {
	name string
	data []byte
}

// Document is an opened .docx package.
type Document struct {
	parts []part

	doc    *etree.Document
	rels   *etree.Document
	types  *etree.Document
	styles *etree.Document
	body   *etree.Element

	nextDocPr int
	nextMedia int
}

// Open parses a .docx archive.
func Open(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("docx: reading package: %w", err)
	}
	d := &Document{nextDocPr: 1000, nextMedia: 1}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("docx: opening part %s: %w", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("docx: reading part %s: %w", f.Name, err)
		}
		d.parts = append(d.parts, part{name: f.Name, data: b})
		if strings.HasPrefix(f.Name, "word/media/") {
			d.nextMedia++
		}
	}

	if d.doc, err = d.parse(documentPart, true); err != nil {
		return nil, err
	}
	if d.types, err = d.parse(contentTypesPart, true); err != nil {
		return nil, err
	}
	if d.rels, err = d.parse(documentRelsPart, false); err != nil {
		return nil, err
	}
	if d.rels == nil {
		d.rels = etree.NewDocument()
		d.rels.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
		root := d.rels.CreateElement("Relationships")
		root.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/relationships")
	}
	if d.styles, err = d.parse(stylesPart, false); err != nil {
		return nil, err
	}

	root := d.doc.Root()
	if root == nil {
		return nil, ErrNoBody
	}
	d.body = root.SelectElement("w:body")
	if d.body == nil {
		return nil, ErrNoBody
	}
	if root.SelectAttr("xmlns:wp") == nil {
		root.CreateAttr("xmlns:wp", nsWP)
	}
	if root.SelectAttr("xmlns:r") == nil {
		root.CreateAttr("xmlns:r", nsR)
	}
	return d, nil
}

func (d *Document) parse(name string, required bool) (*etree.Document, error) {
	for _, p := range d.parts {
		if p.name != name {
			continue
		}
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(p.data); err != nil {
			return nil, fmt.Errorf("docx: parsing %s: %w", name, err)
		}
		return doc, nil
	}
	if required {
		return nil, fmt.Errorf("docx: package has no %s part", name)
	}
	return nil, nil
}

func (d *Document) setPart(name string, data []byte) {
	for i := range d.parts {
		if d.parts[i].name == name {
			d.parts[i].data = data
			return
		}
	}
	d.parts = append(d.parts, part{name: name, data: data})
}

// Bytes serializes the package.
func (d *Document) Bytes() ([]byte, error) {
	serialized := map[string]*etree.Document{
		documentPart:     d.doc,
		documentRelsPart: d.rels,
		contentTypesPart: d.types,
	}
	if d.styles != nil {
		serialized[stylesPart] = d.styles
	}
	for name, doc := range serialized {
		b, err := doc.WriteToBytes()
		if err != nil {
			return nil, fmt.Errorf("docx: serializing %s: %w", name, err)
		}
		d.setPart(name, b)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range d.parts {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: p.name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("docx: writing part %s: %w", p.name, err)
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, fmt.Errorf("docx: writing part %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx: closing package: %w", err)
	}
	return buf.Bytes(), nil
}

// Part returns the raw bytes of a part that is not rewritten by this package.
func (d *Document) Part(name string) ([]byte, bool) {
	for _, p := range d.parts {
		if p.name == name {
			return p.data, true
		}
	}
	return nil, false
}

// Tables returns the top level tables of the body in document order.
func (d *Document) Tables() []*Table {
	var tables []*Table
	for _, el := range d.body.SelectElements("w:tbl") {
		tables = append(tables, &Table{el: el})
	}
	return tables
}

// appendToBody inserts el at the end of the body, ahead of the final section properties.
func (d *Document) appendToBody(el *etree.Element) {
	if parent := el.Parent(); parent != nil {
		parent.RemoveChild(el)
	}
	if sect := d.body.SelectElement("w:sectPr"); sect != nil {
		d.body.InsertChildAt(sect.Index(), el)
		return
	}
	d.body.AddChild(el)
}

// AppendTable moves t to the end of the body when cut is set, otherwise appends a deep
// copy. It returns the table now at the end of the body.
func (d *Document) AppendTable(t *Table, cut bool) *Table {
	el := t.el
	if !cut {
		el = t.el.Copy()
	}
	d.appendToBody(el)
	return &Table{el: el}
}

// RemoveTable detaches t from the document.
func (d *Document) RemoveTable(t *Table) {
	if parent := t.el.Parent(); parent != nil {
		parent.RemoveChild(t.el)
	}
}

// AddParagraph appends a paragraph holding text, optionally styled.
func (d *Document) AddParagraph(text, style string) *etree.Element {
	p := etree.NewElement("w:p")
	if style != "" {
		p.CreateElement("w:pPr").CreateElement("w:pStyle").CreateAttr("w:val", style)
	}
	if text != "" {
		appendRunText(p.CreateElement("w:r"), text)
	}
	d.appendToBody(p)
	return p
}

// AddHeading appends a heading paragraph; level 0 is the document title.
func (d *Document) AddHeading(text string, level int) *etree.Element {
	style := "Title"
	if level > 0 {
		style = "Heading" + strconv.Itoa(level)
	}
	return d.AddParagraph(text, style)
}

// AddPageBreak appends a paragraph holding a single page break.
func (d *Document) AddPageBreak() {
	p := etree.NewElement("w:p")
	p.CreateElement("w:r").CreateElement("w:br").CreateAttr("w:type", "page")
	d.appendToBody(p)
}

// SetStyleColor sets the run color of the style with the given id or display name.
func (d *Document) SetStyleColor(style, hex string) error {
	if d.styles == nil || d.styles.Root() == nil {
		return fmt.Errorf("docx: package has no style sheet")
	}
	for _, s := range d.styles.Root().SelectElements("w:style") {
		id := s.SelectAttrValue("w:styleId", "")
		name := ""
		if n := s.SelectElement("w:name"); n != nil {
			name = n.SelectAttrValue("w:val", "")
		}
		if id != style && name != style {
			continue
		}
		rPr := s.SelectElement("w:rPr")
		if rPr == nil {
			rPr = s.CreateElement("w:rPr")
		}
		color := rPr.SelectElement("w:color")
		if color == nil {
			color = rPr.CreateElement("w:color")
		}
		color.RemoveAttr("w:themeColor")
		color.RemoveAttr("w:val")
		color.CreateAttr("w:val", strings.ToUpper(hex))
		return nil
	}
	return fmt.Errorf("docx: style %q not found", style)
}

// StyleColor reports the run color of a style, for inspection.
func (d *Document) StyleColor(style string) string {
	if d.styles == nil || d.styles.Root() == nil {
		return ""
	}
	for _, s := range d.styles.Root().SelectElements("w:style") {
		name := ""
		if n := s.SelectElement("w:name"); n != nil {
			name = n.SelectAttrValue("w:val", "")
		}
		if s.SelectAttrValue("w:styleId", "") == style || name == style {
			if c := s.FindElement("./w:rPr/w:color"); c != nil {
				return c.SelectAttrValue("w:val", "")
			}
		}
	}
	return ""
}

// ReplaceText substitutes every key with its value inside each text node of the
// document. Tokens split across runs are not matched.
func (d *Document) ReplaceText(replacements map[string]string) int {
	count := 0
	for _, t := range d.body.FindElements(".//w:t") {
		text := t.Text()
		changed := text
		for old, repl := range replacements {
			if strings.Contains(changed, old) {
				count += strings.Count(changed, old)
				changed = strings.ReplaceAll(changed, old, repl)
			}
		}
		if changed != text {
			t.SetText(changed)
		}
	}
	return count
}

// Paragraphs returns the plain text of each top level body paragraph.
func (d *Document) Paragraphs() []string {
	var out []string
	for _, p := range d.body.SelectElements("w:p") {
		out = append(out, paragraphText(p))
	}
	return out
}

// Text returns the text of the whole body, one line per paragraph.
func (d *Document) Text() string {
	var lines []string
	for _, p := range d.body.FindElements(".//w:p") {
		lines = append(lines, paragraphText(p))
	}
	return strings.Join(lines, "\n")
}

// appendRunText writes text into run r. Newlines and carriage returns become breaks
// and tabs become tab elements.
func appendRunText(r *etree.Element, text string) {
	var buf strings.Builder
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		t := r.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(buf.String())
		buf.Reset()
	}
	for _, ch := range text {
		switch ch {
		case '\n', '\r':
			flush()
			r.CreateElement("w:br")
		case '\t':
			flush()
			r.CreateElement("w:tab")
		default:
			buf.WriteRune(ch)
		}
	}
	flush()
}

func paragraphText(p *etree.Element) string {
	var b strings.Builder
	for _, r := range p.FindElements(".//w:r") {
		for _, c := range r.ChildElements() {
			switch c.Tag {
			case "t":
				b.WriteString(c.Text())
			case "br", "cr":
				if c.SelectAttrValue("w:type", "") != "page" {
					b.WriteString("\n")
				}
			case "tab":
				b.WriteString("\t")
			}
		}
	}
	return b.String()
}
