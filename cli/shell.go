package cli

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
	"gonum.org/v1/gonum/mat"

	"github.com/teenjuna/decu/result/network"
	"github.com/teenjuna/decu/result/records"
	"github.com/teenjuna/decu/result/table"
)

const shellHelp = `value  print the loaded value
type   print the type of the value
len    print the length of the value
keys   print the keys, columns or node labels of the value
help   print this help
quit   leave the shell`

type shell struct {
	path  string
	value any
}

func (s *shell) interact(fd int, in io.Reader, out io.Writer) error {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	defer term.Restore(fd, state)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, "decu> ")

	fmt.Fprintf(t, "Loaded %s as %T. Type help for commands.\n", s.path, s.value)
	for {
		line, err := t.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}

		output, quit := s.eval(line)
		if output != "" {
			fmt.Fprintln(t, output)
		}
		if quit {
			return nil
		}
	}
}

// eval runs one command line and returns its output and whether the shell should stop.
func (s *shell) eval(line string) (string, bool) {
	switch cmd := strings.TrimSpace(line); cmd {
	case "":
		return "", false
	case "value", "v":
		return format(s.value), false
	case "type", "t":
		return fmt.Sprintf("%T", s.value), false
	case "len":
		n, ok := length(s.value)
		if !ok {
			return fmt.Sprintf("%T has no length", s.value), false
		}
		return fmt.Sprint(n), false
	case "keys":
		names, ok := keys(s.value)
		if !ok {
			return fmt.Sprintf("%T has no keys", s.value), false
		}
		return strings.Join(names, "\n"), false
	case "help", "?":
		return shellHelp, false
	case "quit", "exit", "q":
		return "", true
	default:
		return fmt.Sprintf("unknown command %q, type help for commands", cmd), false
	}
}

func format(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case mat.Matrix:
		return fmt.Sprintf("%v", mat.Formatted(v))
	case *table.Series:
		return formatFrame(v.Frame())
	case *table.Frame:
		return formatFrame(v)
	case *records.Table:
		var b strings.Builder
		w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, strings.Join(v.Columns, "\t"))
		for _, row := range v.Rows {
			cells := make([]string, len(row))
			for i, cell := range row {
				cells[i] = fmt.Sprint(cell)
			}
			fmt.Fprintln(w, strings.Join(cells, "\t"))
		}
		w.Flush()
		return strings.TrimRight(b.String(), "\n")
	case *network.Graph:
		return fmt.Sprintf("graph with %d nodes and %d edges\nnodes: %v\nedges: %v",
			v.Order(), v.Size(), v.Labels(), v.Edges())
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatFrame(f *table.Frame) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\t"+strings.Join(f.Columns, "\t"))
	for i, label := range f.Index {
		cells := make([]string, len(f.Values[i]))
		for j, v := range f.Values[i] {
			cells[j] = fmt.Sprint(v)
		}
		fmt.Fprintln(w, label+"\t"+strings.Join(cells, "\t"))
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func length(v any) (int, bool) {
	switch v := v.(type) {
	case interface{ Len() int }:
		return v.Len(), true
	case *network.Graph:
		return v.Order(), true
	case mat.Matrix:
		r, c := v.Dims()
		return r * c, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array, reflect.Chan, reflect.Map, reflect.Slice, reflect.String:
		return rv.Len(), true
	}
	return 0, false
}

func keys(v any) ([]string, bool) {
	switch v := v.(type) {
	case *table.Frame:
		return v.Columns, true
	case *table.Series:
		return v.Index, true
	case *records.Table:
		return v.Columns, true
	case *network.Graph:
		labels := v.Labels()
		names := make([]string, len(labels))
		for i, label := range labels {
			names[i] = fmt.Sprint(label)
		}
		return names, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	names := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		names = append(names, fmt.Sprint(k.Interface()))
	}
	slices.Sort(names)
	return names, true
}
