// Command ssml-speech synthesizes a directory of SSML documents with Azure Speech,
// playing the audio or writing one .wav file per document.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCommand(os.Stdout).ExecuteContext(ctx)
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ssml-speech exited with error: %v\n", err)
		os.Exit(1)
	}
}
