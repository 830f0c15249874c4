// Package transform builds affine matrices from textual transformation
// commands such as "rotate(90) translate(w/2, 0)" or "R90 T1cm,0".
//
// Arguments are arithmetic expressions evaluated by a calc.Calculator, so
// they may refer to the page geometry (ux, uy, w, h) and to length units.
// Commands are applied in the order written.
package transform

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/alnah/go-dvisvg/internal/calc"
	"github.com/alnah/go-dvisvg/internal/geom"
)

// ErrInvalid matches every *Error via errors.Is.
var ErrInvalid = errors.New("invalid transformation")

// Error reports a malformed command together with its source text.
type Error struct {
	Command string
	Reason  string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v %q: %s", ErrInvalid, e.Command, e.Reason)
}

// Is makes errors.Is(err, ErrInvalid) succeed.
func (e *Error) Is(target error) bool { return target == ErrInvalid }

func (e *Error) Unwrap() error { return e.Err }

// Bindings returns a calculator with the bounding box variables and all
// length units bound. scale converts box coordinates to TeX points; pass 1
// for boxes already measured in points.
func Bindings(box geom.BoundingBox, scale float64) *calc.Calculator {
	c := calc.New()
	c.SetVariable("ux", box.MinX()*scale)
	c.SetVariable("uy", box.MinY()*scale)
	c.SetVariable("w", box.Width()*scale)
	c.SetVariable("h", box.Height()*scale)
	for _, u := range geom.Units() {
		c.SetVariable(u.Name, u.Points)
	}
	return c
}

type command struct {
	minArgs, maxArgs int
	build            func(args []float64) geom.Matrix
}

var functional = map[string]command{
	"rotate":    {1, 3, rotate},
	"scale":     {1, 2, scale},
	"translate": {1, 2, translate},
	"skewX":     {1, 1, func(a []float64) geom.Matrix { return geom.SkewingX(a[0]) }},
	"skewY":     {1, 1, func(a []float64) geom.Matrix { return geom.SkewingY(a[0]) }},
	"matrix":    {6, 6, func(a []float64) geom.Matrix { return geom.NewMatrix(a[0], a[1], a[2], a[3], a[4], a[5]) }},
	"flipH":     {0, 1, func(a []float64) geom.Matrix { return geom.FlipH(optional(a)) }},
	"flipV":     {0, 1, func(a []float64) geom.Matrix { return geom.FlipV(optional(a)) }},
}

// letterCommands are matched longest first.
var letterCommands = []struct {
	name string
	cmd  string
}{
	{"KX", "skewX"}, {"KY", "skewY"}, {"FH", "flipH"}, {"FV", "flipV"},
	{"R", "rotate"}, {"S", "scale"}, {"T", "translate"}, {"M", "matrix"},
}

func rotate(a []float64) geom.Matrix {
	if len(a) == 3 {
		return geom.RotationAbout(a[0], a[1], a[2])
	}
	return geom.Rotation(a[0])
}

func scale(a []float64) geom.Matrix {
	if len(a) == 2 {
		return geom.Scaling(a[0], a[1])
	}
	return geom.Scaling(a[0], a[0])
}

func translate(a []float64) geom.Matrix {
	if len(a) == 2 {
		return geom.Translation(a[0], a[1])
	}
	return geom.Translation(a[0], 0)
}

func optional(a []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return a[0]
}

// Parse evaluates the command string cmds. An empty or blank string yields
// the identity matrix. The first command is applied to a point first.
func Parse(cmds string, c *calc.Calculator) (geom.Matrix, error) {
	if c == nil {
		c = calc.New()
	}
	m := geom.Identity()
	s := &scanner{src: cmds}
	for {
		s.skipSeparators()
		if s.eof() {
			return m, nil
		}
		start := s.pos
		name, args, err := s.next()
		if err != nil {
			return geom.Identity(), &Error{Command: s.src[start:s.pos], Reason: err.Error(), Err: err}
		}
		text := strings.TrimSpace(s.src[start:s.pos])
		cmd := functional[name]
		if len(args) < cmd.minArgs || len(args) > cmd.maxArgs || (name == "rotate" && len(args) == 2) {
			return geom.Identity(), &Error{Command: text, Reason: fmt.Sprintf("%s takes %s", name, arity(name, cmd))}
		}
		values := make([]float64, len(args))
		for i, arg := range args {
			v, err := c.Eval(arg)
			if err != nil {
				return geom.Identity(), &Error{Command: text, Reason: err.Error(), Err: err}
			}
			values[i] = v
		}
		m = m.LMultiply(cmd.build(values))
	}
}

func arity(name string, cmd command) string {
	switch {
	case name == "rotate":
		return "1 or 3 arguments"
	case cmd.minArgs == cmd.maxArgs:
		return fmt.Sprintf("%d argument(s)", cmd.minArgs)
	default:
		return fmt.Sprintf("%d to %d arguments", cmd.minArgs, cmd.maxArgs)
	}
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) skipSeparators() {
	for !s.eof() && (s.src[s.pos] == ',' || unicode.IsSpace(rune(s.src[s.pos]))) {
		s.pos++
	}
}

func (s *scanner) skipSpace() {
	for !s.eof() && unicode.IsSpace(rune(s.src[s.pos])) {
		s.pos++
	}
}

// next reads one command and returns its functional name and raw arguments.
func (s *scanner) next() (string, []string, error) {
	start := s.pos
	for !s.eof() && isLetter(s.src[s.pos]) {
		s.pos++
	}
	ident := s.src[start:s.pos]
	s.skipSpace()
	if _, ok := functional[ident]; ok && !s.eof() && s.src[s.pos] == '(' {
		args, err := s.parenArgs()
		return ident, args, err
	}

	s.pos = start
	for _, lc := range letterCommands {
		if strings.HasPrefix(s.src[s.pos:], lc.name) {
			s.pos += len(lc.name)
			return lc.cmd, s.bareArgs(), nil
		}
	}
	s.pos = start
	for !s.eof() && !unicode.IsSpace(rune(s.src[s.pos])) {
		s.pos++
	}
	if ident == "" {
		return "", nil, errors.New("command expected")
	}
	return "", nil, fmt.Errorf("unknown command %q", ident)
}

// parenArgs reads "(a, b, ...)" starting at the opening parenthesis.
func (s *scanner) parenArgs() ([]string, error) {
	s.pos++
	start, depth := s.pos, 0
	for ; !s.eof(); s.pos++ {
		switch s.src[s.pos] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				inner := s.src[start:s.pos]
				s.pos++
				return splitArgs(inner), nil
			}
			depth--
		}
	}
	return nil, errors.New("missing ')'")
}

// bareArgs reads letter-form arguments up to the next blank outside parentheses.
func (s *scanner) bareArgs() []string {
	start, depth := s.pos, 0
	for ; !s.eof(); s.pos++ {
		ch := s.src[s.pos]
		if ch == '(' {
			depth++
		} else if ch == ')' && depth > 0 {
			depth--
		} else if depth == 0 && unicode.IsSpace(rune(ch)) {
			break
		}
	}
	return splitArgs(s.src[start:s.pos])
}

// splitArgs splits on commas outside parentheses. Blank input has no arguments.
func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var (
		args  []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(s[start:]))
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
