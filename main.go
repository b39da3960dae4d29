// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/buildtest/buildtest/cmd/buildtest"

func main() {
	cmd.Execute()
}
