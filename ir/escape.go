package ir

import "strings"

var escaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

// Escape encodes s for one argument line.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape decodes an argument line. An unknown escape yields the escaped
// byte itself and a trailing backslash is kept. Bytes that are not valid
// UTF-8 pass through unchanged.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			sb.WriteByte(s[i])
			continue
		}

		i++

		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		default:
			sb.WriteByte(s[i])
		}
	}

	return sb.String()
}
