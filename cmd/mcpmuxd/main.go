// Command mcpmuxd runs the mcpmux demo server.
package main

import "github.com/mcpmux/mcpmux/cmd"

func main() {
	cmd.Execute()
}
