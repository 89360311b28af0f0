// Command stockintel analyzes stocks through a supervised workflow:
// research, LLM synthesis, then human approval. Sessions survive process
// restarts; a suspended session can be resumed from any later invocation.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
