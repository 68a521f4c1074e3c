// Package integration provides embedded shell integration snippets.
package integration

import (
	"bytes"
	_ "embed"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"
)

// ZshFzf contains the zsh shell integration script with fzf support.
//
//go:embed zsh-fzf.sh
var ZshFzf string

// Render renders the integration script with the zsh and filemeta paths.
func Render() (string, error) {
	// First use LookPath to find zsh binary
	zsh, err := exec.LookPath("zsh")
	if err != nil {
		return "", err
	}

	binary := "filemeta"
	if exe, err := os.Executable(); err == nil {
		binary = exe
	}

	return render(filepath.ToSlash(zsh), filepath.ToSlash(binary))
}

// render substitutes the interpreter and binary paths into ZshFzf.
func render(zsh, binary string) (string, error) {
	tmpl, err := template.New("zsh-fzf").Parse(ZshFzf)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"ZSH":    zsh,
		"Binary": binary,
	}); err != nil {
		return "", err
	}

	return buf.String(), nil
}
