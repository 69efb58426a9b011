package wordml

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"h2d/document"
)

// mediaNamespace seeds content based media names, identical data is stored
// once.
var mediaNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:h2d:wordml:media"))

var mediaExt = map[string]string{
	"image/png":     "png",
	"image/jpeg":    "jpeg",
	"image/gif":     "gif",
	"image/bmp":     "bmp",
	"image/tiff":    "tiff",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
	"image/x-icon":  "ico",
}

// MediaName returns part name for image data of the given type.
func MediaName(data []byte, contentType string) string {
	ext, ok := mediaExt[contentType]
	if !ok {
		ext = "bin"
		if _, sub, found := strings.Cut(contentType, "/"); found && sub != "" {
			ext = sub
		}
	}
	return "image-" + uuid.NewSHA1(mediaNamespace, data).String() + "." + ext
}

// imageRel returns relationship id of the media part holding img data.
func (r *renderer) imageRel(img *document.Image) (string, string) {
	name := MediaName(img.Data, img.ContentType)
	if id, ok := r.media[name]; ok {
		return id, name
	}
	id := r.relationship(relImage, MediaDir+"/"+name, false)
	r.media[name] = id
	r.pkg.Media = append(r.pkg.Media, Media{Name: name, ContentType: img.ContentType, Data: img.Data})
	return id, name
}

// EMUs per pixel at 96 dpi
const emuPerPixel = 9525

// defaultImageSize is used when display size is unknown.
const defaultImageSize = 96

func emu(px int) string {
	if px <= 0 {
		px = defaultImageSize
	}
	return strconv.Itoa(px * emuPerPixel)
}

func (r *renderer) drawing(wr *etree.Element, img *document.Image) {
	rid, name := r.imageRel(img)
	r.nextDrawing++
	id := strconv.Itoa(r.nextDrawing)
	cx, cy := emu(img.Width), emu(img.Height)

	inline := wr.CreateElement("w:drawing").CreateElement("wp:inline")
	for _, dist := range []string{"distT", "distB", "distL", "distR"} {
		inline.CreateAttr(dist, "0")
	}
	extent := inline.CreateElement("wp:extent")
	extent.CreateAttr("cx", cx)
	extent.CreateAttr("cy", cy)

	docPr := inline.CreateElement("wp:docPr")
	docPr.CreateAttr("id", id)
	docPr.CreateAttr("name", "Picture "+id)
	if img.Alt != "" {
		docPr.CreateAttr("descr", img.Alt)
	}
	inline.CreateElement("wp:cNvGraphicFramePr").
		CreateElement("a:graphicFrameLocks").CreateAttr("noChangeAspect", "1")

	data := inline.CreateElement("a:graphic").CreateElement("a:graphicData")
	data.CreateAttr("uri", nsPic)
	pic := data.CreateElement("pic:pic")

	nv := pic.CreateElement("pic:nvPicPr")
	cNvPr := nv.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", "0")
	cNvPr.CreateAttr("name", name)
	nv.CreateElement("pic:cNvPicPr")

	fill := pic.CreateElement("pic:blipFill")
	fill.CreateElement("a:blip").CreateAttr("r:embed", rid)
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	sp := pic.CreateElement("pic:spPr")
	xfrm := sp.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	ext := xfrm.CreateElement("a:ext")
	ext.CreateAttr("cx", cx)
	ext.CreateAttr("cy", cy)
	geom := sp.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")
}
