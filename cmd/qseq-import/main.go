// Command qseq-import loads bedGraph files into a SQLite score store.
package main

import (
	"qseq/internal/appshell"
	"qseq/internal/importapp"
)

func main() { appshell.Main(importapp.RunContext) }
