// Command qseq queries per-base sequence and score features.
package main

import (
	"qseq/internal/app"
	"qseq/internal/appshell"
)

func main() { appshell.Main(app.RunContext) }
