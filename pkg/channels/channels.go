package channels

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dimchansky/utfbom"
)

// LapNumber is the simulator's current lap counter. Every recording carries it.
const LapNumber = "Lap"

var ErrInvalidDefinition = errors.New("channels: invalid channel definition")

// Definition describes a single telemetry channel exposed by the simulator.
type Definition struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"desc" yaml:"desc"`
	Unit        string `json:"unit" yaml:"unit"`
}

// Table maps a channel name to its definition.
type Table map[string]Definition

func (t Table) Lookup(name string) (Definition, bool) {
	def, ok := t[name]

	return def, ok
}

// Names returns all channel names in the table, sorted.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))

	for name := range t {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Resolve looks up each name in the table, dropping names the simulator does not know.
// The dropped names are returned so callers can report them.
func (t Table) Resolve(names []string) (known []Definition, unknown []string) {
	for _, name := range names {
		if def, ok := t[name]; ok {
			known = append(known, def)
		} else {
			unknown = append(unknown, name)
		}
	}

	return known, unknown
}

// Category returns the definitions of the catalogued channels in category c
// that exist in the table.
func (t Table) Category(c Category) []Definition {
	known, _ := t.Resolve(c.Channels())

	return known
}

// ReadDefinitions loads the channel definition table from a text file.
func ReadDefinitions(path string) (Table, error) {
	f, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	defer f.Close()

	return ParseDefinitions(f)
}

// ParseDefinitions parses one definition per line, in the form:
//
//	<NAME> <description words...>, <unit>
//
// The unit follows the last comma. The remainder is split on spaces into at
// most 9 tokens, of which the first is the name and the second the description.
func ParseDefinitions(r io.Reader) (Table, error) {
	table := make(Table)

	scanner := bufio.NewScanner(utfbom.SkipOnly(r))
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++

		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		def, err := parseDefinition(line)

		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}

		table[def.Name] = def
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return table, nil
}

func parseDefinition(line string) (Definition, error) {
	comma := strings.LastIndex(line, ",")

	if comma < 0 {
		return Definition{}, fmt.Errorf("%w: missing unit in %q", ErrInvalidDefinition, line)
	}

	var tokens []string

	for _, token := range strings.SplitN(line[:comma], " ", 9) {
		if token = strings.TrimSpace(token); token != "" {
			tokens = append(tokens, token)
		}
	}

	if len(tokens) == 0 {
		return Definition{}, fmt.Errorf("%w: missing name in %q", ErrInvalidDefinition, line)
	}

	def := Definition{
		Name: tokens[0],
		Unit: strings.TrimSpace(line[comma+1:]),
	}

	if len(tokens) > 1 {
		def.Description = tokens[1]
	}

	return def, nil
}
