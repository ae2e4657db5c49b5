// Package shdl parses the two file formats the Fairplay compiler emits:
// the SHDL circuit description (<input>.Opt.circuit / .NoOpt.circuit)
// and the companion format file (.fmt) mapping named party variables to
// wire numbers.
//
// Parsing follows the observed grammar only; the driver never interprets
// circuits beyond classification and counting.
package shdl

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// maxArity is the largest gate fan-in the format produces.
const maxArity = 3

// Gate is one parsed circuit line: an input declaration or a truth-table
// gate.
//
// Circuit lines look like:
//
//	0 input                                          //input$input.alice$0
//	289 gate arity 1 table [ 1 0 ] inputs [ 2 ]
//	511 output gate arity 1 table [ 0 1 ] inputs [ 510 ]  //output$output.bob$0
type Gate struct {
	Wire     int
	IsInput  bool
	IsOutput bool
	Arity    int
	Table    []int
	Inputs   []int
	Comment  string
}

// IsConstant reports whether the gate fixes its wire to a constant
// value: an arity-0 table always maps to the same bit.
func (g Gate) IsConstant() bool {
	return !g.IsInput && g.Arity == 0
}

// IsPassThru reports whether the gate copies its single input bit
// unchanged (table [0 1]).
func (g Gate) IsPassThru() bool {
	return !g.IsInput && g.Arity == 1 && len(g.Table) == 2 && g.Table[0] == 0 && g.Table[1] == 1
}

// IsNot reports whether the gate inverts its single input bit
// (table [1 0]).
func (g Gate) IsNot() bool {
	return !g.IsInput && g.Arity == 1 && len(g.Table) == 2 && g.Table[0] == 1 && g.Table[1] == 0
}

// Variable is one parsed format-file line, binding a named party
// variable to its wires:
//
//	Alice input integer "input.alice" [ 0 1 2 3 ]
type Variable struct {
	Party string // "Alice" or "Bob"
	Dir   string // "input" or "output"
	Type  string // only "integer" observed
	Name  string
	Wires []int
}

// ParseError reports a malformed circuit or format line.
type ParseError struct {
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
}

var (
	gateLine = regexp.MustCompile(`^(\d+) (?:(output )?gate arity (\d+) table \[\s*([01\s]*?)\s*\] inputs \[\s*([\d\s]*?)\s*\]|(input))(?:\s*//\s*(.*))?$`)
	varLine  = regexp.MustCompile(`^(Alice|Bob) (input|output) (integer) "([^"]+)" \[\s*([\d\s]*?)\s*\]$`)
)

// ParseCircuit reads an SHDL circuit file into its gates, in file order.
// Wire numbers must be unique.
func ParseCircuit(r io.Reader) ([]Gate, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var gates []Gate
	seen := make(map[int]bool)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		g, err := parseGateLine(line, lineno)
		if err != nil {
			return nil, err
		}
		if seen[g.Wire] {
			return nil, &ParseError{Line: lineno, Text: line, Msg: fmt.Sprintf("duplicate wire %d", g.Wire)}
		}
		seen[g.Wire] = true
		gates = append(gates, g)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading circuit: %w", err)
	}
	return gates, nil
}

func parseGateLine(line string, lineno int) (Gate, error) {
	m := gateLine.FindStringSubmatch(line)
	if m == nil {
		return Gate{}, &ParseError{Line: lineno, Text: line, Msg: "unrecognized gate line"}
	}

	wire, err := strconv.Atoi(m[1])
	if err != nil {
		return Gate{}, &ParseError{Line: lineno, Text: line, Msg: "bad wire number"}
	}

	g := Gate{Wire: wire, Comment: strings.TrimSpace(m[7])}
	if m[6] == "input" {
		g.IsInput = true
		return g, nil
	}

	g.IsOutput = m[2] != ""
	g.Arity, err = strconv.Atoi(m[3])
	if err != nil || g.Arity < 0 || g.Arity > maxArity {
		return Gate{}, &ParseError{Line: lineno, Text: line, Msg: fmt.Sprintf("unsupported gate arity %q", m[3])}
	}
	g.Table = parseInts(m[4])
	g.Inputs = parseInts(m[5])

	if len(g.Table) != 1<<g.Arity {
		return Gate{}, &ParseError{
			Line: lineno,
			Text: line,
			Msg:  fmt.Sprintf("expected table of %d bits for arity %d, got %d", 1<<g.Arity, g.Arity, len(g.Table)),
		}
	}
	if len(g.Inputs) != g.Arity {
		return Gate{}, &ParseError{
			Line: lineno,
			Text: line,
			Msg:  fmt.Sprintf("expected %d inputs for arity %d, got %d", g.Arity, g.Arity, len(g.Inputs)),
		}
	}
	return g, nil
}

// ParseFormat reads a .fmt file into its variable bindings, in file order.
func ParseFormat(r io.Reader) ([]Variable, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var vars []Variable
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		m := varLine.FindStringSubmatch(line)
		if m == nil {
			return nil, &ParseError{Line: lineno, Text: line, Msg: "unrecognized variable line"}
		}
		vars = append(vars, Variable{
			Party: m[1],
			Dir:   m[2],
			Type:  m[3],
			Name:  m[4],
			Wires: parseInts(m[5]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading format file: %w", err)
	}
	return vars, nil
}

func parseInts(s string) []int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			// The regex character classes only admit digits and spaces.
			continue
		}
		out = append(out, n)
	}
	return out
}
