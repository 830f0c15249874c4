package font

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultResolution is the bitmap resolution (dpi) used to look up PK files.
const DefaultResolution = 600

// Outline font file extensions, in lookup order.
var outlineExts = []string{".otf", ".ttf", ".pfb", ".pfa"}

// Loader creates physical fonts from TFM metrics and classifies their
// glyph sources using a font map and a finder.
type Loader struct {
	Finder     *Finder
	Map        *FontMap
	Resolution float64
	Logger     zerolog.Logger

	mu   sync.Mutex
	encs map[string]*Encoding
}

// NewLoader creates a loader. m may be nil.
func NewLoader(f *Finder, m *FontMap) *Loader {
	return &Loader{Finder: f, Map: m, Resolution: DefaultResolution, Logger: zerolog.Nop()}
}

// Load creates the font name at scaledSize points. designSize and
// checksum come from the DVI font definition; a checksum mismatch with
// the TFM is logged, not fatal.
func (l *Loader) Load(name string, scaledSize, designSize float64, checksum uint32) (*PhysicalFont, error) {
	tfm, err := l.loadTFM(name)
	if err != nil {
		return nil, err
	}
	if checksum != 0 && tfm.Checksum != 0 && checksum != tfm.Checksum {
		l.Logger.Warn().Str("font", name).Msg("checksum mismatch")
	}
	if designSize == 0 {
		designSize = tfm.DesignSize
	}
	return NewPhysicalFont(name, scaledSize, tfm, l.classify(name, scaledSize, designSize)), nil
}

func (l *Loader) loadTFM(name string) (*TFM, error) {
	f, err := l.Finder.Open(name, ".tfm")
	if err != nil {
		return nil, fmt.Errorf("%w: %s.tfm", ErrFontNotFound, name)
	}
	defer func() { _ = f.Close() }()
	tfm, err := ParseTFM(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return tfm, nil
}

func (l *Loader) classify(name string, scaledSize, designSize float64) Source {
	if e, ok := l.Map.Lookup(name); ok && e.FontFile != "" {
		if path, found := l.Finder.Find(e.FontFile, outlineExts...); found {
			return Source{Kind: KindOutline, Path: path, Encoding: l.encoding(e.EncodingFile), PSName: e.PSName}
		}
		l.Logger.Debug().Str("font", name).Str("file", e.FontFile).Msg("mapped font file not found")
	}
	if path, ok := l.Finder.Find(PKFileName(name, l.dpi(scaledSize, designSize))); ok {
		return Source{Kind: KindMetafont, Path: path}
	}
	if path, ok := l.Finder.Find(name, ".mf"); ok {
		return Source{Kind: KindMetafont, Path: path}
	}
	return Source{Kind: KindUnknown}
}

func (l *Loader) dpi(scaledSize, designSize float64) int {
	res := l.Resolution
	if res <= 0 {
		res = DefaultResolution
	}
	if designSize <= 0 {
		return int(math.Round(res))
	}
	return int(math.Round(res * scaledSize / designSize))
}

// PKFileName returns the conventional PK file name for a font at dpi.
func PKFileName(name string, dpi int) string {
	return name + "." + strconv.Itoa(dpi) + "pk"
}

func (l *Loader) encoding(file string) *Encoding {
	if file == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if enc, ok := l.encs[file]; ok {
		return enc
	}
	var enc *Encoding
	f, err := l.Finder.Open(file, ".enc")
	if err == nil {
		enc, err = ParseEncoding(f)
		_ = f.Close()
	}
	if err != nil {
		l.Logger.Warn().Err(err).Str("file", file).Msg("can't read encoding")
	}
	if l.encs == nil {
		l.encs = make(map[string]*Encoding)
	}
	l.encs[file] = enc
	return enc
}
