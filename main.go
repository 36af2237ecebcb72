// SPDX-License-Identifier: MPL-2.0

package main

import cmd "dcg-cli/cmd/dcg"

func main() {
	cmd.Execute()
}
