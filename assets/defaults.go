package assets

import (
	"embed"
	"io/fs"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

//go:embed defaults/fragments/*.yaml
var defaultFragments embed.FS

// PowerShellHook is dot-sourced from $PROFILE.
//
//go:embed hooks/profile.ps1
var PowerShellHook string

// BashHook is sourced from ~/.bashrc.
//
//go:embed hooks/bash.sh
var BashHook string

// ZshHook is sourced from ~/.zshrc.
//
//go:embed hooks/zsh.sh
var ZshHook string

// DefaultFragments exposes the bundled fragments rooted at their directory.
func DefaultFragments() fs.FS {
	sub, err := fs.Sub(defaultFragments, "defaults/fragments")
	if err != nil {
		panic(err)
	}
	return sub
}
