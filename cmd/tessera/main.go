// Command tessera evaluates a tessera script and writes the resulting
// scene as an SVG document.
//
// Usage:
//
//	tessera [-o out.svg] script.tsl
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/chazu/tessera/pkg/engine"
	"github.com/chazu/tessera/pkg/render"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("tessera: ")

	out := flag.String("o", "", "output SVG path (default stdout)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: tessera [-o out.svg] script.tsl")
		os.Exit(2)
	}

	source, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	scene, evalErrs, err := engine.NewEngine().Evaluate(string(source))
	if err != nil {
		log.Fatal(err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", flag.Arg(0), e.Error())
		}
		os.Exit(1)
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		w = f
	}
	if err := render.WriteSVG(w, scene); err != nil {
		log.Fatal(err)
	}
}
