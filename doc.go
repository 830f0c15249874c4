// Package dvisvg converts DVI pages and PostScript, EPS or PDF images into
// SVG documents, one document per page.
//
// # Quick Start
//
// Open a DVI file, wire a font loader and convert the first page:
//
//	finder := font.NewFinder("/usr/share/texmf")
//	reader, err := dvi.NewReader(f, font.NewLoader(finder, nil), logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	conv := dvisvg.NewDVIConverter(reader, dvisvg.NewFileOutput("doc.dvi", "%f-%p.svg"),
//	    dvisvg.WithBBoxPolicy(dvisvg.ParseBBoxPolicy("min")),
//	    dvisvg.WithLogger(logger),
//	)
//	info, err := conv.Convert(ctx, 1, 1)
//
// # Page Assembly
//
// Every page goes through the same stages:
//
//  1. Bounding box resolution (min, dvi, none or a paper size)
//  2. Transformation matrix evaluation, once per document
//  3. Content rendering into an SVG group, recording used characters
//  4. Font embedding restricted to the used characters
//  5. Serialization to the page's output sink
//
// The document carries a generator comment, a timestamp comment, the SVG
// 1.1 DOCTYPE, a style element with one CSS rule per font, the page group
// and a defs element with the embedded fonts.
//
// # Transformations
//
// WithTransform accepts commands such as "rotate(90)" or "T 1in,0 S 2".
// Arguments are arithmetic expressions over the page box (ux, uy, w, h)
// and length units (pt, bp, in, cm, mm, pc, dd, cc, sp).
//
// # Images
//
// ImageConverter renders PostScript and PDF pages through a
// raster.Rasterizer and supports page ranges such as "2-3,5".
//
// # Parallel Processing
//
// Conversion of a single document is sequential. ConverterPool bounds the
// number of documents converted at the same time.
package dvisvg
