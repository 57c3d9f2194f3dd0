// chatstat - Chat Export Statistics
//
// chatstat parses exported chat transcripts and reports per-author and
// overall activity, vocabulary and emoji statistics.
package main

import (
	"os"

	"github.com/ccollicutt/chatstat/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
