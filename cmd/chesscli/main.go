package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
)

func main() {
	load := flag.String("load", "", "resume a saved game from this file")
	noColor := flag.Bool("no-color", false, "disable colored output")
	flag.Parse()
	if *noColor {
		color.NoColor = true
	}

	s := newSession(color.Output)
	if *load != "" {
		if err := s.load(*load); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	fmt.Fprintln(s.out, "moves: e2 e4 [q|r|b|n]  commands: moves <sq>, undo, save <file>, load <file>, board, quit")
	if err := s.run(os.Stdin); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
