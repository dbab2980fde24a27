package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	wiring := defaultCommandWiring(os.Stdin, os.Stdout, os.Stderr)
	os.Exit(realMain(os.Args[1:], wiring))
}

func realMain(args []string, wiring commandWiring) int {
	root := buildRootCmd(wiring)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		exitOnErr(err, wiring.stderr)
		return 1
	}
	return 0
}

func exitOnErr(err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "fabbro: %v\n", err)
}
