// Command asm8086 assembles 8086/80186 source into a raw binary or MS-DOS
// MZ executable.
package main

import "github.com/keurnel/assembler8086/internal/cli"

func main() {
	cli.Execute()
}
