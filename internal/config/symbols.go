package config

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// SymbolList returns the symbols to download. A symbol file, when set,
// replaces the comma-separated list.
func (c *Config) SymbolList() ([]string, error) {
	if c.Download.SymbolFile != "" {
		return ReadSymbolFile(c.Download.SymbolFile)
	}
	return SplitSymbols(c.Download.Symbols), nil
}

// SplitSymbols splits a comma-separated list, dropping blanks.
func SplitSymbols(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ReadSymbolFile reads one symbol per line. Lines starting with '#' and
// blank lines are skipped.
func ReadSymbolFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open symbol file")
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return out, nil
}
