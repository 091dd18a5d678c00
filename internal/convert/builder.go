package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/backmassage/texmtlx/internal/config"
)

// Template is a parsed converter command line.
type Template struct {
	raw  string
	argv []string
}

// ParseTemplate splits cmd into arguments. The result must name a program and
// reference both the source and target placeholders.
func ParseTemplate(cmd string) (*Template, error) {
	argv, err := shellwords.Parse(cmd)
	if err != nil {
		return nil, fmt.Errorf("parse converter command %q: %w", cmd, err)
	}
	if len(argv) == 0 {
		return nil, errors.New("converter command is empty")
	}
	if !strings.Contains(cmd, config.PlaceholderSource) || !strings.Contains(cmd, config.PlaceholderTarget) {
		return nil, fmt.Errorf("converter command %q must reference %s and %s",
			cmd, config.PlaceholderSource, config.PlaceholderTarget)
	}
	return &Template{raw: cmd, argv: argv}, nil
}

// Tool returns the program name (first argument).
func (t *Template) Tool() string { return t.argv[0] }

// String returns the template as configured.
func (t *Template) String() string { return t.raw }

// Build returns the argument slice for one conversion. Placeholders are
// substituted inside each argument, so "-o={dst}" works. Paths are never
// re-split, so spaces in file names are safe.
func (t *Template) Build(src, dst string) []string {
	r := strings.NewReplacer(config.PlaceholderSource, src, config.PlaceholderTarget, dst)
	args := make([]string, len(t.argv))
	for i, a := range t.argv {
		args[i] = r.Replace(a)
	}
	return args
}
