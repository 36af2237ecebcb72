// SPDX-License-Identifier: MPL-2.0

package cmdspan

type (
	// safeArgRule marks the value of a (command, subcommand?, flag)
	// triple as data: commit messages, search patterns, descriptions.
	// Dangerous-looking text inside such arguments must not trigger
	// keyword gating or pattern matching.
	safeArgRule struct {
		command    string
		subcommand string // "" matches any / no subcommand
		flag       string
	}

	// dataOnlyCommand marks every positional argument of a command as
	// data (echo, printf).
	dataOnlyCommand struct {
		command string
	}
)

// safeArgRules is data, not code; Extend grows it from configuration.
var safeArgRules = []safeArgRule{
	{command: "git", subcommand: "commit", flag: "-m"},
	{command: "git", subcommand: "commit", flag: "--message"},
	{command: "git", subcommand: "commit", flag: "-am"},
	{command: "git", subcommand: "tag", flag: "-m"},
	{command: "git", subcommand: "merge", flag: "-m"},
	{command: "git", subcommand: "stash", flag: "-m"},
	{command: "bd", subcommand: "create", flag: "--description"},
	{command: "bd", subcommand: "create", flag: "-d"},
	{command: "bd", subcommand: "update", flag: "--description"},
	{command: "bd", subcommand: "notes", flag: ""},
	{command: "rg", subcommand: "", flag: "-e"},
	{command: "rg", subcommand: "", flag: "--regexp"},
	{command: "grep", subcommand: "", flag: "-e"},
	{command: "grep", subcommand: "", flag: "-E"},
	{command: "ag", subcommand: "", flag: ""},
	{command: "gh", subcommand: "issue", flag: "--body"},
	{command: "gh", subcommand: "pr", flag: "--body"},
	{command: "gh", subcommand: "issue", flag: "--title"},
	{command: "gh", subcommand: "pr", flag: "--title"},
}

var dataOnlyCommands = []dataOnlyCommand{
	{command: "echo"},
	{command: "printf"},
}

// ExtendSafeArgs adds (command, subcommand, flag) triples from
// configuration. An empty subcommand matches any position; an empty
// flag marks every positional argument after the subcommand as data.
func ExtendSafeArgs(rules [][3]string) {
	for _, r := range rules {
		safeArgRules = append(safeArgRules, safeArgRule{
			command: r[0], subcommand: r[1], flag: r[2],
		})
	}
}

// safeArgFlag reports whether the value following flag is data for the
// given head and subcommand.
func safeArgFlag(head, sub, flag string) bool {
	for _, r := range safeArgRules {
		if r.command != head || r.flag == "" || r.flag != flag {
			continue
		}
		if r.subcommand == "" || r.subcommand == sub {
			return true
		}
	}
	return false
}

// dataOnly reports whether every positional argument of head is data
// (echo, printf).
func dataOnly(head string) bool {
	for _, c := range dataOnlyCommands {
		if c.command == head {
			return true
		}
	}
	return false
}

// safePositional reports whether bare positional arguments of
// head/subcommand are data ("bd notes", "ag", echo, printf).
func safePositional(head, sub string) bool {
	for _, r := range safeArgRules {
		if r.command == head && r.flag == "" {
			if r.subcommand == "" || r.subcommand == sub {
				return true
			}
		}
	}
	return false
}
