package main

import (
	"fmt"
	"strings"
)

const (
	outputModePrint   = "print"
	outputModeCopy    = "copy"
	outputModeSSHCopy = "ssh-copy"
)

func normalizeOutputMode(mode string) (string, bool) {
	m := strings.TrimSpace(strings.ToLower(mode))
	switch m {
	case outputModePrint, "":
		return outputModePrint, true
	case outputModeCopy:
		return outputModeCopy, true
	case outputModeSSHCopy, "sshcopy", "ssh", "osc52":
		return outputModeSSHCopy, true
	default:
		return "", false
	}
}

func resolveOutputMode(defaultMode string, printFlag, copyFlag, sshFlag bool) (string, error) {
	selected := 0
	if printFlag {
		selected++
	}
	if copyFlag {
		selected++
	}
	if sshFlag {
		selected++
	}
	if selected > 1 {
		return "", fmt.Errorf("only one of --print, --copy, or --ssh-copy may be set")
	}
	if printFlag {
		return outputModePrint, nil
	}
	if copyFlag {
		return outputModeCopy, nil
	}
	if sshFlag {
		return outputModeSSHCopy, nil
	}
	normalized, ok := normalizeOutputMode(defaultMode)
	if !ok {
		return "", fmt.Errorf("invalid output mode %q in configuration (expected print, copy, or ssh-copy)", defaultMode)
	}
	return normalized, nil
}
