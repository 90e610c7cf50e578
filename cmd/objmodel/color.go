package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/xyproto/env/v2"

	"github.com/funvibe/objmodel/internal/config"
	"github.com/funvibe/objmodel/internal/typesystem"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// palette colours output written to a terminal. The zero value writes plain text.
type palette struct {
	enabled bool
}

func newPalette(w io.Writer) palette {
	if env.Has(config.EnvNoColor) {
		return palette{}
	}
	f, ok := w.(*os.File)
	if !ok {
		return palette{}
	}
	return palette{enabled: isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())}
}

func (p palette) wrap(code, s string) string {
	if !p.enabled {
		return s
	}
	return code + s + ansiReset
}

func (p palette) typeName(s string) string { return p.wrap(ansiBold, s) }
func (p palette) key(s string) string      { return p.wrap(ansiCyan, s) }

func (p palette) access(a typesystem.Access) string {
	switch a {
	case typesystem.AccessPublic:
		return p.wrap(ansiGreen, a.String())
	case typesystem.AccessProtected:
		return p.wrap(ansiYellow, a.String())
	}
	return p.wrap(ansiRed, a.String())
}
