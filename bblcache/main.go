// Command bblcache simulates a cache over the basic blocks of a program trace.
package main

import "github.com/sarchlab/bblcache/bblcache/cmd"

func main() {
	cmd.Execute()
}
