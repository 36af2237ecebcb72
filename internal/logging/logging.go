// SPDX-License-Identifier: MPL-2.0

// Package logging configures the process logger and provides command
// redaction for anything that leaves the process: logs, scan reports,
// denial output.
package logging

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Redaction levels for reported command text.
const (
	RedactNone       = "none"
	RedactQuoted     = "quoted"
	RedactAggressive = "aggressive"
)

// Setup configures the global logger. Diagnostics always go to stderr;
// robot mode silences everything below error so machine output stays
// clean.
func Setup(verbose, robot bool) {
	log.SetOutput(os.Stderr)
	switch {
	case robot:
		log.SetLevel(log.ErrorLevel)
	case verbose:
		log.SetLevel(log.DebugLevel)
	default:
		log.SetLevel(log.WarnLevel)
	}
	log.SetReportTimestamp(false)
	log.SetPrefix("dcg")
}

// RedactCommand masks sensitive substrings of a command according to
// the level. Quoted redaction replaces quoted regions (where secrets
// and free text live) with a fixed placeholder; aggressive keeps only
// the command head.
func RedactCommand(cmd, level string) string {
	switch level {
	case RedactAggressive:
		fields := strings.Fields(cmd)
		if len(fields) == 0 {
			return cmd
		}
		if len(fields) == 1 {
			return fields[0]
		}
		return fields[0] + " […]"
	case RedactQuoted:
		return maskQuoted(cmd)
	default:
		return cmd
	}
}

func maskQuoted(cmd string) string {
	var b strings.Builder
	var quote byte
	for i := 0; i < len(cmd); i++ {
		c := cmd[i]
		if quote != 0 {
			if c == quote {
				b.WriteString("[redacted]")
				b.WriteByte(c)
				quote = 0
			} else if c == '\\' && quote == '"' && i+1 < len(cmd) {
				i++
			}
			continue
		}
		if c == '\'' || c == '"' {
			quote = c
		}
		b.WriteByte(c)
	}
	if quote != 0 {
		b.WriteString("[redacted]")
	}
	return b.String()
}

// Truncate caps a reported command at n runes (0 means no cap).
func Truncate(cmd string, n int) string {
	if n <= 0 {
		return cmd
	}
	runes := []rune(cmd)
	if len(runes) <= n {
		return cmd
	}
	return string(runes[:n]) + "…"
}
