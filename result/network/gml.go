package network

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/teenjuna/decu/result"
)

// Capability registers *Graph under "gml".
var Capability = result.Capability{
	Name:     "graph",
	Register: register,
}

func register(r *result.Registry) error {
	return result.Register(r, "gml", Write, Read)
}

var escaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;")

// Write stores g at path as GML. Integer labels are written bare, string labels quoted.
func Write(path string, g *Graph) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(file)
	encode(w, g)
	if err := w.Flush(); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}

func encode(w io.Writer, g *Graph) {
	fmt.Fprintln(w, "graph [")
	for _, label := range g.Labels() {
		fmt.Fprintln(w, "  node [")
		fmt.Fprintf(w, "    id %d\n", g.ids[label])
		if n, ok := label.(int); ok {
			fmt.Fprintf(w, "    label %d\n", n)
		} else {
			fmt.Fprintf(w, "    label \"%s\"\n", escaper.Replace(fmt.Sprint(label)))
		}
		fmt.Fprintln(w, "  ]")
	}
	for _, e := range g.Edges() {
		fmt.Fprintln(w, "  edge [")
		fmt.Fprintf(w, "    source %d\n", g.ids[e[0]])
		fmt.Fprintf(w, "    target %d\n", g.ids[e[1]])
		fmt.Fprintln(w, "  ]")
	}
	fmt.Fprintln(w, "]")
}

// Read parses the GML graph at path. A bare integer label is restored as an int and a quoted label
// stays a string; a node without a label is labeled with its id.
func Read(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	root, err := parse(string(data))
	if err != nil {
		return nil, err
	}

	body, ok := root.list("graph")
	if !ok {
		return nil, fmt.Errorf("missing graph")
	}
	if directed, ok := body.int("directed"); ok && directed != 0 {
		return nil, fmt.Errorf("directed graphs are not supported")
	}

	g := New()
	labels := make(map[int]any)
	for _, node := range body.lists("node") {
		id, ok := node.int("id")
		if !ok {
			return nil, fmt.Errorf("node without id")
		}
		if _, dup := labels[id]; dup {
			return nil, fmt.Errorf("duplicate node id %d", id)
		}

		var label any = id
		if v, ok := node.value("label"); ok {
			label = v
		}
		if _, err := g.AddNode(label); err != nil {
			return nil, err
		}
		labels[id] = label
	}

	for _, edge := range body.lists("edge") {
		source, ok := edge.int("source")
		if !ok {
			return nil, fmt.Errorf("edge without source")
		}
		target, ok := edge.int("target")
		if !ok {
			return nil, fmt.Errorf("edge without target")
		}
		u, ok := labels[source]
		if !ok {
			return nil, fmt.Errorf("edge source %d is not a node", source)
		}
		v, ok := labels[target]
		if !ok {
			return nil, fmt.Errorf("edge target %d is not a node", target)
		}
		if err := g.AddEdge(u, v); err != nil {
			return nil, err
		}
	}

	return g, nil
}

type pair struct {
	key   string
	value any
}

type list []pair

func (l list) value(key string) (any, bool) {
	for _, p := range l {
		if p.key == key {
			return p.value, true
		}
	}
	return nil, false
}

func (l list) int(key string) (int, bool) {
	v, ok := l.value(key)
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}

func (l list) list(key string) (list, bool) {
	v, ok := l.value(key)
	if !ok {
		return nil, false
	}
	sub, ok := v.(list)
	return sub, ok
}

func (l list) lists(key string) []list {
	out := make([]list, 0)
	for _, p := range l {
		if sub, ok := p.value.(list); ok && p.key == key {
			out = append(out, sub)
		}
	}
	return out
}

type scanner struct {
	src string
	pos int
}

func parse(src string) (list, error) {
	s := &scanner{src: src}
	l, err := s.list()
	if err != nil {
		return nil, err
	}
	if tok := s.next(); tok != "" {
		return nil, fmt.Errorf("unexpected %q at offset %d", tok, s.pos)
	}
	return l, nil
}

func (s *scanner) list() (list, error) {
	l := make(list, 0)
	for {
		key := s.next()
		if key == "" || key == "]" {
			if key == "]" {
				s.pos--
			}
			return l, nil
		}
		if !isKey(key) {
			return nil, fmt.Errorf("invalid key %q at offset %d", key, s.pos)
		}

		value, err := s.value()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		l = append(l, pair{key: key, value: value})
	}
}

func (s *scanner) value() (any, error) {
	tok := s.next()
	switch {
	case tok == "":
		return nil, fmt.Errorf("unexpected end of input")
	case tok == "[":
		sub, err := s.list()
		if err != nil {
			return nil, err
		}
		if s.next() != "]" {
			return nil, fmt.Errorf("unterminated list")
		}
		return sub, nil
	case strings.HasPrefix(tok, `"`):
		if len(tok) < 2 || !strings.HasSuffix(tok, `"`) {
			return nil, fmt.Errorf("unterminated string")
		}
		return html.UnescapeString(tok[1 : len(tok)-1]), nil
	}

	if n, err := strconv.Atoi(tok); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f, nil
	}
	return nil, fmt.Errorf("invalid value %q", tok)
}

// next returns the next token: "[", "]", a quoted string including its quotes, or a bare word.
// It returns "" at the end of input.
func (s *scanner) next() string {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '#':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
		case unicode.IsSpace(rune(c)):
			s.pos++
		default:
			return s.token()
		}
	}
	return ""
}

func (s *scanner) token() string {
	start := s.pos
	switch s.src[s.pos] {
	case '[', ']':
		s.pos++
	case '"':
		s.pos++
		for s.pos < len(s.src) && s.src[s.pos] != '"' {
			s.pos++
		}
		if s.pos < len(s.src) {
			s.pos++
		}
	default:
		for s.pos < len(s.src) && !unicode.IsSpace(rune(s.src[s.pos])) &&
			s.src[s.pos] != '[' && s.src[s.pos] != ']' {
			s.pos++
		}
	}
	return s.src[start:s.pos]
}

func isKey(tok string) bool {
	for i, r := range tok {
		if !(unicode.IsLetter(r) || r == '_' || (i > 0 && unicode.IsDigit(r))) {
			return false
		}
	}
	return tok != ""
}
