package font

// Manager maps the font numbers of a DVI file to fonts and hands out
// small stable IDs used in CSS class names.
type Manager struct {
	byNum map[uint32]Font
	ids   map[Font]int
	fonts []Font
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		byNum: make(map[uint32]Font),
		ids:   make(map[Font]int),
	}
}

// Register binds DVI font number num to f and returns f's ID. A font
// registered under several numbers keeps its first ID.
func (m *Manager) Register(num uint32, f Font) int {
	m.byNum[num] = f
	if id, ok := m.ids[f]; ok {
		return id
	}
	id := len(m.fonts)
	m.ids[f] = id
	m.fonts = append(m.fonts, f)
	return id
}

// Font returns the font bound to num.
func (m *Manager) Font(num uint32) (Font, bool) {
	f, ok := m.byNum[num]
	return f, ok
}

// ID returns f's ID, or -1 if f is unknown.
func (m *Manager) ID(f Font) int {
	if id, ok := m.ids[f]; ok {
		return id
	}
	return -1
}

// Fonts returns all registered fonts in ID order.
func (m *Manager) Fonts() []Font {
	out := make([]Font, len(m.fonts))
	copy(out, m.fonts)
	return out
}

// Encoding returns the encoding vector of f, or nil for virtual fonts and
// fonts using their built-in encoding.
func (m *Manager) Encoding(f Font) *Encoding {
	if pf, ok := AsPhysical(f); ok {
		return pf.Encoding()
	}
	return nil
}
