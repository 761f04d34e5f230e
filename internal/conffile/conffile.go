// Package conffile reads dsc.conf style directive files. A statement is a
// directive name followed by arguments and terminated by ';'. Statements
// may span lines, '#' starts a comment outside of quotes, and arguments
// may be quoted.
package conffile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/shlex"

	"EnigmaNetz/Enigma-Go-Collector/internal/directive"
)

// ErrUnknownDirective is returned for a statement no handler accepts
var ErrUnknownDirective = errors.New("unknown directive")

// Statement is one parsed directive
type Statement struct {
	Line      int
	Directive string
	Args      []string
}

// Parse splits r into statements without applying them
func Parse(r io.Reader) ([]Statement, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	var (
		stmts   []Statement
		buf     strings.Builder
		line    = 1
		start   = 0
		quote   byte
		comment bool
	)
	for i := 0; i < len(data); i++ {
		c := data[i]
		if c == '\n' {
			line++
			comment = false
		}
		switch {
		case comment:
			continue
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#':
			comment = true
			continue
		case c == ';':
			stmt, err := tokenize(buf.String(), start)
			if err != nil {
				return nil, err
			}
			if stmt != nil {
				stmts = append(stmts, *stmt)
			}
			buf.Reset()
			start = 0
			continue
		}
		if start == 0 && !isBlank(c) {
			start = line
		}
		buf.WriteByte(c)
	}

	if quote != 0 {
		return nil, fmt.Errorf("line %d: unterminated quote", start)
	}
	if strings.TrimSpace(buf.String()) != "" {
		return nil, fmt.Errorf("line %d: statement is missing ';'", start)
	}
	return stmts, nil
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func tokenize(text string, line int) (*Statement, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	words, err := shlex.Split(text)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", line, err)
	}
	if len(words) == 0 {
		return nil, nil
	}
	return &Statement{Line: line, Directive: words[0], Args: words[1:]}, nil
}

// Load parses r and applies each statement through table in order. It
// stops at the first unknown directive or failed handler and returns the
// number of statements applied before that point.
func Load(r io.Reader, table directive.Table) (int, error) {
	stmts, err := Parse(r)
	if err != nil {
		return 0, err
	}
	for i, s := range stmts {
		fn, ok := table[s.Directive]
		if !ok {
			return i, fmt.Errorf("line %d: %w %q", s.Line, ErrUnknownDirective, s.Directive)
		}
		if !fn(s.Args) {
			return i, fmt.Errorf("line %d: %s directive failed", s.Line, s.Directive)
		}
	}
	return len(stmts), nil
}

// LoadFile opens path and loads it with Load
func LoadFile(path string, table directive.Table) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	n, err := Load(f, table)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}
