// Command renlib browses a RenLib opening library from the terminal.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/jaminalder/codex-renju/internal/board"
	"github.com/jaminalder/codex-renju/internal/renju"
	"github.com/jaminalder/codex-renju/internal/renlib"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("[renlib] ")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s file.lib\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	lib, err := renlib.Parse(bufio.NewReader(f))
	f.Close()
	if err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
	if err := run(lib, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run prints the node count, then answers commands read from in until
// quit or EOF.
func run(lib *renlib.Library, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "library v%s, %d nodes\n", lib.Version, lib.Len())
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		cmd := strings.TrimSpace(sc.Text())
		switch cmd {
		case "":
		case "q", "quit":
			return nil
		case "tree":
			if err := lib.Outline(out); err != nil {
				return err
			}
		default:
			index, err := strconv.Atoi(cmd)
			if err != nil {
				fmt.Fprintf(out, "unknown command %q (node index, tree or quit)\n", cmd)
				continue
			}
			if err := showNode(lib, index, out); err != nil {
				fmt.Fprintln(out, err)
			}
		}
	}
}

func showNode(lib *renlib.Library, index int, out io.Writer) error {
	g, err := lib.Position(index)
	if err != nil {
		return err
	}
	toMove, err := lib.ToMove(index)
	if err != nil {
		return err
	}
	fmt.Fprint(out, g)

	cs := g.Comments()
	points := make([]board.Point, 0, len(cs))
	for p := range cs {
		points = append(points, p)
	}
	slices.SortFunc(points, board.Point.Compare)
	for _, p := range points {
		fmt.Fprintf(out, "%s: %s\n", p.Notation(renlib.Size), cs[p])
	}

	res := renju.Evaluate(g, toMove, nil)
	forbidden := res.Forbidden.Sorted()
	names := make([]string, len(forbidden))
	for i, p := range forbidden {
		names[i] = p.Notation(renlib.Size)
	}
	if len(names) == 0 {
		names = []string{"none"}
	}
	fmt.Fprintf(out, "%s to move, forbidden: %s\n", toMove, strings.Join(names, " "))
	return nil
}
