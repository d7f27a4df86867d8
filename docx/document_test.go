package docx

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Mission {name}</w:t></w:r></w:p>
<w:tbl>
<w:tr><w:tc><w:p><w:r><w:t>Title</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>Label</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Value</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:tcPr><w:gridSpan w:val="2"/></w:tcPr><w:p><w:r><w:t>Banner</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
<w:sectPr/>
</w:body>
</w:document>`

const testStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style>
<w:style w:type="character" w:styleId="Classification"><w:name w:val="Classification"/><w:rPr><w:color w:val="000000" w:themeColor="text1"/></w:rPr></w:style>
</w:styles>`

const testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`

func buildPackage(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func openTestDocument(t *testing.T) *Document {
	t.Helper()
	d, err := Open(buildPackage(t, map[string]string{
		documentPart:       testDocument,
		stylesPart:         testStyles,
		contentTypesPart:   testContentTypes,
		"docProps/app.xml": "<Properties/>",
	}))
	require.NoError(t, err)
	return d
}

func TestOpenRequiresDocumentPart(t *testing.T) {
	_, err := Open(buildPackage(t, map[string]string{contentTypesPart: testContentTypes}))
	assert.Error(t, err)

	_, err = Open([]byte("not a zip"))
	assert.Error(t, err)
}

func TestTablesAndCells(t *testing.T) {
	d := openTestDocument(t)
	tables := d.Tables()
	require.Len(t, tables, 1)
	tbl := tables[0]
	require.Len(t, tbl.Rows(), 3)

	assert.Equal(t, "Value", tbl.Cell(1, 1).Text())
	assert.Equal(t, "Banner", tbl.Cell(2, 1).Text(), "a spanned cell answers for each column it covers")
	assert.Nil(t, tbl.Row(5))

	tbl.RemoveRow(tbl.Row(1))
	assert.Len(t, tbl.Rows(), 2)
	tbl.RemoveRow(nil)
	assert.Len(t, tbl.Rows(), 2)
}

func TestAppendTableCopiesOrMoves(t *testing.T) {
	d := openTestDocument(t)
	src := d.Tables()[0]

	copied := d.AppendTable(src, false)
	copied.Cell(0, 0).SetText("Copy")
	require.Len(t, d.Tables(), 2)
	assert.Equal(t, "Title", d.Tables()[0].Cell(0, 0).Text())
	assert.Equal(t, "Copy", d.Tables()[1].Cell(0, 0).Text())

	d.AppendTable(src, true)
	tables := d.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, "Copy", tables[0].Cell(0, 0).Text())
	assert.Equal(t, "Title", tables[1].Cell(0, 0).Text())

	d.RemoveTable(tables[0])
	assert.Len(t, d.Tables(), 1)
}

func TestAppendedContentStaysAheadOfSectionProperties(t *testing.T) {
	d := openTestDocument(t)
	d.AddHeading("Findings", 1)
	d.AddPageBreak()

	children := d.body.ChildElements()
	assert.Equal(t, "sectPr", children[len(children)-1].Tag)
	assert.Equal(t, "Findings", d.Paragraphs()[1])
}

func TestReplaceText(t *testing.T) {
	d := openTestDocument(t)
	n := d.ReplaceText(map[string]string{"{name}": "Blue Harbor"})
	assert.Equal(t, 1, n)
	assert.Equal(t, "Mission Blue Harbor", d.Paragraphs()[0])
	assert.Equal(t, 0, d.ReplaceText(map[string]string{"{absent}": "x"}))
}

func TestSetStyleColor(t *testing.T) {
	d := openTestDocument(t)
	require.NoError(t, d.SetStyleColor("Classification", "00aa00"))
	assert.Equal(t, "00AA00", d.StyleColor("Classification"))

	require.NoError(t, d.SetStyleColor("heading 1", "112233"))
	assert.Equal(t, "112233", d.StyleColor("Heading1"))

	assert.Error(t, d.SetStyleColor("Missing", "000000"))
}

func TestCellSetTextKeepsLineBreaks(t *testing.T) {
	d := openTestDocument(t)
	cell := d.Tables()[0].Cell(1, 1)
	cell.SetText("first\nsecond")
	assert.Equal(t, 1, len(cell.Element().FindElements(".//w:br")))
	assert.True(t, strings.HasPrefix(cell.Text(), "first"))
}

func TestAddImageRegistersPartAndRelationship(t *testing.T) {
	d := openTestDocument(t)
	relID, err := d.AddImage([]byte("png-bytes"), "png")
	require.NoError(t, err)
	assert.Equal(t, "rId1", relID)

	cx, cy := ScaleToWidth(200, 100, 6*EMUPerInch)
	run := d.NewPictureRun(relID, "shot.png", cx, cy)
	cell := d.Tables()[0].Cell(1, 1)
	cell.Clear()
	cell.AppendRun(run)
	assert.True(t, cell.HasPicture())
	assert.Equal(t, int64(3*EMUPerInch), cy)

	_, err = d.AddImage([]byte("x"), "webp")
	assert.Error(t, err)

	out, err := d.Bytes()
	require.NoError(t, err)
	reopened, err := Open(out)
	require.NoError(t, err)

	media, ok := reopened.Part("word/media/image1.png")
	require.True(t, ok)
	assert.Equal(t, []byte("png-bytes"), media)
	_, ok = reopened.Part("docProps/app.xml")
	assert.True(t, ok, "untouched parts survive")

	types, ok := reopened.Part(contentTypesPart)
	require.True(t, ok)
	assert.Contains(t, string(types), `Extension="png"`)
	rels, ok := reopened.Part(documentRelsPart)
	require.True(t, ok)
	assert.Contains(t, string(rels), "media/image1.png")
	assert.True(t, reopened.Tables()[0].Cell(1, 1).HasPicture())
}
