// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"testing"
)

func TestExitError(t *testing.T) {
	err := &ExitError{Code: 2, Err: errors.New("bad config")}
	if err.Error() != "bad config" {
		t.Errorf("Error() = %q", err.Error())
	}
	bare := &ExitError{Code: 1}
	if bare.Error() != "exit status 1" {
		t.Errorf("Error() = %q", bare.Error())
	}

	wrapped := &ExitError{Code: 1, Err: errors.New("inner")}
	var target *ExitError
	if !errors.As(error(wrapped), &target) || target.Code != 1 {
		t.Error("errors.As must recover ExitError")
	}
}

func TestVersionString(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	defer func() { Version, Commit = oldVersion, oldCommit }()

	Version = "dev"
	if got := getVersionString(); got != "dev (built from source)" {
		t.Errorf("dev version string = %q", got)
	}

	Version, Commit = "1.2.3", "abc123"
	if got := getVersionString(); got != "1.2.3 (commit: abc123)" {
		t.Errorf("release version string = %q", got)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"hook": false, "test": false, "explain": false, "allow-once": false,
		"allowlist": false, "packs": false, "pack": false, "scan": false,
	}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
