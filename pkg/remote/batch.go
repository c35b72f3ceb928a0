package remote

import "strings"

// Batch is an ordered sequence of administrative sub-commands applied in a
// single remote invocation. Shell is the wrapping command (e.g.
// "sudo vtysh"); Enter, when set, is the sub-command that opens the
// stateful context the rest run inside (e.g. "configure terminal").
//
// Order is significant: later sub-commands may depend on mode established
// by earlier ones. The remote shell offers no per-sub-command isolation;
// a failed batch may still have applied a prefix of its commands.
type Batch struct {
	Shell    string
	Enter    string
	Commands []string
}

// Empty reports whether the batch contains no sub-commands.
func (b Batch) Empty() bool {
	return b.Enter == "" && len(b.Commands) == 0
}

// Render concatenates the batch into one shell-quoted command line:
//
//	sudo vtysh -c 'configure terminal' -c 'router bgp 101' -c ...
func (b Batch) Render() string {
	parts := []string{b.Shell}
	if b.Enter != "" {
		parts = append(parts, "-c", shellQuote(b.Enter))
	}
	for _, cmd := range b.Commands {
		parts = append(parts, "-c", shellQuote(cmd))
	}
	return strings.Join(parts, " ")
}

// shellQuote minimally quotes an argument for POSIX shells. Common safe
// characters stay unquoted; everything else is single-quoted with the
// standard `'\''` escape for embedded single quotes.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, func(r rune) bool {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return false
		}
		switch r {
		case '-', '_', '.', '/', '@', ':', ',', '+', '=':
			return false
		}
		return true
	}) == -1 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}
