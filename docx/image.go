package docx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// EMUPerInch is the number of English Metric Units in one inch.
const EMUPerInch = 914400

var imageContentTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
}

// AddImage stores data as a new media part and returns its relationship id. format
// is the image format name reported by image.DecodeConfig.
func (d *Document) AddImage(data []byte, format string) (string, error) {
	ext := strings.ToLower(format)
	contentType, ok := imageContentTypes[ext]
	if !ok {
		return "", fmt.Errorf("docx: unsupported image format %q", format)
	}

	var name string
	for {
		name = fmt.Sprintf("word/media/image%d.%s", d.nextMedia, ext)
		d.nextMedia++
		if _, exists := d.Part(name); !exists {
			break
		}
	}
	d.parts = append(d.parts, part{name: name, data: data})
	d.ensureDefaultContentType(ext, contentType)

	relID := d.nextRelID()
	rel := d.rels.Root().CreateElement("Relationship")
	rel.CreateAttr("Id", relID)
	rel.CreateAttr("Type", relTypeImage)
	rel.CreateAttr("Target", strings.TrimPrefix(name, "word/"))
	return relID, nil
}

func (d *Document) ensureDefaultContentType(ext, contentType string) {
	root := d.types.Root()
	for _, def := range root.SelectElements("Default") {
		if strings.EqualFold(def.SelectAttrValue("Extension", ""), ext) {
			return
		}
	}
	def := etree.NewElement("Default")
	def.CreateAttr("Extension", ext)
	def.CreateAttr("ContentType", contentType)
	root.InsertChildAt(0, def)
}

func (d *Document) nextRelID() string {
	max := 0
	for _, rel := range d.rels.Root().SelectElements("Relationship") {
		id := rel.SelectAttrValue("Id", "")
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "rId")); err == nil && n > max {
			max = n
		}
	}
	return "rId" + strconv.Itoa(max+1)
}

// ScaleToWidth returns the extent in EMU of a pixel image scaled to widthEMU with its
// aspect ratio preserved.
func ScaleToWidth(pxWidth, pxHeight int, widthEMU int64) (int64, int64) {
	if pxWidth <= 0 || pxHeight <= 0 {
		return widthEMU, widthEMU
	}
	return widthEMU, widthEMU * int64(pxHeight) / int64(pxWidth)
}

// NewPictureRun builds a run holding an inline picture that references relID.
func (d *Document) NewPictureRun(relID, name string, cx, cy int64) *etree.Element {
	id := strconv.Itoa(d.nextDocPr)
	d.nextDocPr++
	sx, sy := strconv.FormatInt(cx, 10), strconv.FormatInt(cy, 10)

	run := etree.NewElement("w:r")
	inline := run.CreateElement("w:drawing").CreateElement("wp:inline")
	for _, a := range []string{"distT", "distB", "distL", "distR"} {
		inline.CreateAttr(a, "0")
	}
	extent := inline.CreateElement("wp:extent")
	extent.CreateAttr("cx", sx)
	extent.CreateAttr("cy", sy)
	docPr := inline.CreateElement("wp:docPr")
	docPr.CreateAttr("id", id)
	docPr.CreateAttr("name", "Picture "+id)

	frameLocks := inline.CreateElement("wp:cNvGraphicFramePr").CreateElement("a:graphicFrameLocks")
	frameLocks.CreateAttr("xmlns:a", "http://schemas.openxmlformats.org/drawingml/2006/main")
	frameLocks.CreateAttr("noChangeAspect", "1")

	graphic := inline.CreateElement("a:graphic")
	graphic.CreateAttr("xmlns:a", "http://schemas.openxmlformats.org/drawingml/2006/main")
	data := graphic.CreateElement("a:graphicData")
	data.CreateAttr("uri", "http://schemas.openxmlformats.org/drawingml/2006/picture")
	pic := data.CreateElement("pic:pic")
	pic.CreateAttr("xmlns:pic", "http://schemas.openxmlformats.org/drawingml/2006/picture")

	nv := pic.CreateElement("pic:nvPicPr")
	cNvPr := nv.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", "0")
	cNvPr.CreateAttr("name", name)
	nv.CreateElement("pic:cNvPicPr")

	fill := pic.CreateElement("pic:blipFill")
	fill.CreateElement("a:blip").CreateAttr("r:embed", relID)
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	spPr := pic.CreateElement("pic:spPr")
	xfrm := spPr.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	ext := xfrm.CreateElement("a:ext")
	ext.CreateAttr("cx", sx)
	ext.CreateAttr("cy", sy)
	geom := spPr.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")

	return run
}
