package shdl

import (
	"fmt"
	"io"
	"sort"
)

// Summary is a structural overview of a parsed circuit.
type Summary struct {
	Wires     int
	Inputs    int
	Outputs   int
	Constants int
	PassThru  int
	Not       int
	Other     int

	// VariablesByParty counts format-file bindings per "Party dir" key
	// (e.g. "Alice input"). Nil when no format file was supplied.
	VariablesByParty map[string]int
}

// Summarize classifies every gate of a circuit. The format variables are
// optional.
func Summarize(gates []Gate, vars []Variable) Summary {
	s := Summary{Wires: len(gates)}
	for _, g := range gates {
		switch {
		case g.IsInput:
			s.Inputs++
		case g.IsConstant():
			s.Constants++
		case g.IsPassThru():
			s.PassThru++
		case g.IsNot():
			s.Not++
		default:
			s.Other++
		}
		if g.IsOutput {
			s.Outputs++
		}
	}

	if len(vars) > 0 {
		s.VariablesByParty = make(map[string]int)
		for _, v := range vars {
			s.VariablesByParty[v.Party+" "+v.Dir]++
		}
	}
	return s
}

// Write renders the summary in a stable line order.
func (s Summary) Write(w io.Writer) error {
	lines := []string{
		fmt.Sprintf("wires:      %d", s.Wires),
		fmt.Sprintf("inputs:     %d", s.Inputs),
		fmt.Sprintf("outputs:    %d", s.Outputs),
		fmt.Sprintf("constants:  %d", s.Constants),
		fmt.Sprintf("pass-thru:  %d", s.PassThru),
		fmt.Sprintf("not:        %d", s.Not),
		fmt.Sprintf("other:      %d", s.Other),
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}

	if len(s.VariablesByParty) > 0 {
		keys := make([]string, 0, len(s.VariablesByParty))
		for k := range s.VariablesByParty {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err := fmt.Fprintf(w, "variables (%s): %d\n", k, s.VariablesByParty[k]); err != nil {
				return err
			}
		}
	}
	return nil
}
