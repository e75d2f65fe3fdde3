// Command studyseq compiles study orderings and generates balanced
// participant sequences.
//
//	studyseq validate study.cue
//	studyseq generate study.cue --db study.db --seed 7
//	studyseq assign P001 --db study.db
package main

import (
	"fmt"
	"os"

	"github.com/roach88/studyseq/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	cmd.SilenceErrors = true

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
