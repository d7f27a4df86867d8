package docx

import (
	"strconv"

	"github.com/beevik/etree"
)

// Table wraps a w:tbl element.
type Table struct {
	el *etree.Element
}

// Row wraps a w:tr element.
type Row struct {
	el *etree.Element
}

// Cell wraps a w:tc element.
type Cell struct {
	el *etree.Element
}

func (t *Table) Element() *etree.Element { return t.el }

func (r *Row) Element() *etree.Element { return r.el }

func (t *Table) Rows() []*Row {
	var rows []*Row
	for _, tr := range t.el.SelectElements("w:tr") {
		rows = append(rows, &Row{el: tr})
	}
	return rows
}

// Row returns row i, or nil when out of range.
func (t *Table) Row(i int) *Row {
	rows := t.el.SelectElements("w:tr")
	if i < 0 || i >= len(rows) {
		return nil
	}
	return &Row{el: rows[i]}
}

// RemoveRow detaches row from the table. Removing a nil row is a no-op.
func (t *Table) RemoveRow(row *Row) {
	if row == nil || row.el.Parent() != t.el {
		return
	}
	t.el.RemoveChild(row.el)
}

// Cell returns the cell covering grid column c of row r. Horizontally merged cells
// (w:gridSpan) answer for every grid column they span.
func (t *Table) Cell(r, c int) *Cell {
	row := t.Row(r)
	if row == nil {
		return nil
	}
	return row.Cell(c)
}

// Cell returns the cell covering grid column c.
func (r *Row) Cell(c int) *Cell {
	col := 0
	for _, tc := range r.el.SelectElements("w:tc") {
		span := 1
		if gs := tc.FindElement("./w:tcPr/w:gridSpan"); gs != nil {
			if n, err := strconv.Atoi(gs.SelectAttrValue("w:val", "1")); err == nil && n > 0 {
				span = n
			}
		}
		if c < col+span {
			return &Cell{el: tc}
		}
		col += span
	}
	return nil
}

func (r *Row) Cells() []*Cell {
	var cells []*Cell
	for _, tc := range r.el.SelectElements("w:tc") {
		cells = append(cells, &Cell{el: tc})
	}
	return cells
}

func (c *Cell) Element() *etree.Element { return c.el }

// Clear drops every paragraph except the first, and every run of the first. The
// paragraph properties survive so the cell keeps its style.
func (c *Cell) Clear() *etree.Element {
	paras := c.el.SelectElements("w:p")
	var p *etree.Element
	if len(paras) == 0 {
		p = c.el.CreateElement("w:p")
	} else {
		p = paras[0]
		for _, extra := range paras[1:] {
			c.el.RemoveChild(extra)
		}
	}
	for _, child := range p.ChildElements() {
		if child.Space == "w" && child.Tag == "pPr" {
			continue
		}
		p.RemoveChild(child)
	}
	return p
}

// SetText replaces the cell content with text, keeping the first paragraph's style
// and the formatting of its first run.
func (c *Cell) SetText(text string) {
	var rPr *etree.Element
	if first := c.el.FindElement("./w:p/w:r/w:rPr"); first != nil {
		rPr = first.Copy()
	}
	p := c.Clear()
	r := p.CreateElement("w:r")
	if rPr != nil {
		r.AddChild(rPr)
	}
	appendRunText(r, text)
}

// AppendRun adds run to the first paragraph of the cell.
func (c *Cell) AppendRun(run *etree.Element) {
	p := c.el.SelectElement("w:p")
	if p == nil {
		p = c.el.CreateElement("w:p")
	}
	p.AddChild(run)
}

// AppendText adds a plain run holding text to the first paragraph of the cell.
func (c *Cell) AppendText(text string) {
	r := etree.NewElement("w:r")
	appendRunText(r, text)
	c.AppendRun(r)
}

// Text returns the cell's text, paragraphs joined by newlines.
func (c *Cell) Text() string {
	var out string
	for i, p := range c.el.SelectElements("w:p") {
		if i > 0 {
			out += "\n"
		}
		out += paragraphText(p)
	}
	return out
}

// HasPicture reports whether the cell holds an inline drawing.
func (c *Cell) HasPicture() bool {
	return c.el.FindElement(".//w:drawing") != nil
}
