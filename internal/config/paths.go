package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// expandPath expands a leading ~ and environment variables in p.
// On Windows ~\ and %VAR% forms are recognised as well.
func expandPath(p string) string {
	if p == "" {
		return p
	}

	expanded := os.ExpandEnv(p)
	if runtime.GOOS == "windows" {
		expanded = expandPercentVars(expanded)
	}

	rest, ok := cutHome(expanded)
	if !ok {
		return expanded
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return expanded
	}
	if rest == "" {
		return home
	}
	return filepath.Join(home, rest)
}

// cutHome strips a leading ~ or ~/ and reports whether one was present.
func cutHome(p string) (string, bool) {
	if p == "~" {
		return "", true
	}
	if strings.HasPrefix(p, "~/") {
		return p[2:], true
	}
	if runtime.GOOS == "windows" && strings.HasPrefix(p, `~\`) {
		return p[2:], true
	}
	return "", false
}

// expandPercentVars replaces %NAME% with the value of NAME. Unknown names
// are left untouched.
func expandPercentVars(p string) string {
	if !strings.Contains(p, "%") {
		return p
	}
	var b strings.Builder
	for {
		start := strings.IndexByte(p, '%')
		if start < 0 {
			b.WriteString(p)
			return b.String()
		}
		end := strings.IndexByte(p[start+1:], '%')
		if end < 0 {
			b.WriteString(p)
			return b.String()
		}
		key := p[start+1 : start+1+end]
		b.WriteString(p[:start])
		if val, ok := os.LookupEnv(key); ok && key != "" {
			b.WriteString(val)
		} else {
			b.WriteString(p[start : start+end+2])
		}
		p = p[start+end+2:]
	}
}
