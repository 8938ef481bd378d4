// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ptago runs the andersen points-to solver over a small
// built-in sample program and prints the resulting points-to sets. It
// exists to exercise the engine from the command line, the way
// race_checker/main.go drives its own analysis via flags and logrus.
package main

import (
	"flag"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/o2lab/ptago/andersen"
	"github.com/o2lab/ptago/internal/toyfrontend"
)

func main() {
	debug := flag.Bool("debug", false, "Prints log.Debug messages.")
	noHVN := flag.Bool("noHVN", false, "Disable the offline HVN optimization pass.")
	noHCD := flag.Bool("noHCD", false, "Disable the offline hybrid cycle detection pass.")
	noLCD := flag.Bool("noLCD", false, "Disable the online lazy cycle detection heuristic.")
	dump := flag.Bool("dump", true, "Print the solved points-to sets.")
	dumpConstraints := flag.Bool("dumpConstraints", false, "Print the collected constraints before solving.")
	help := flag.Bool("help", false, "Show all command-line options.")
	flag.Parse()

	if *help {
		flag.PrintDefaults()
		return
	}
	if *debug {
		log.SetLevel(log.DebugLevel)
	}
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	prog, err := sampleProgram(flag.Args())
	if err != nil {
		log.Fatal(err)
	}

	t := toyfrontend.New(andersen.NewDefaultExternalCallOracle())
	t.Translate(prog)

	if *dumpConstraints {
		fmt.Print(t.ConstraintSet().Dump())
	}

	var opts []andersen.SolverOption
	if *noHVN {
		opts = append(opts, andersen.WithoutHVN())
	}
	if *noHCD {
		opts = append(opts, andersen.WithoutHCD())
	}
	if *noLCD {
		opts = append(opts, andersen.WithoutLCD())
	}

	solver := andersen.NewSolver(t.NodeFactory(), t.ConstraintSet(), opts...)
	result := solver.Solve()

	if *dump {
		fmt.Print(result.Dump())
	}
}

// sampleProgram builds a small illustrative toy program in lieu of a
// real frontend: `p = &x; q = p; p = &y; *q = p`. args must be empty:
// any argument is rejected with an error.
func sampleProgram(args []string) (*toyfrontend.Program, error) {
	if len(args) > 0 {
		return nil, fmt.Errorf("ptago: reading a program from %v is not supported; ptago runs its built-in sample program", args)
	}

	x := &toyfrontend.Var{Name: "x"}
	y := &toyfrontend.Var{Name: "y"}
	p := &toyfrontend.Var{Name: "p"}
	q := &toyfrontend.Var{Name: "q"}

	return &toyfrontend.Program{
		Func:    &toyfrontend.Fn{Name: "main"},
		Globals: []*toyfrontend.Var{x, y},
		Stmts: []toyfrontend.Stmt{
			{Op: toyfrontend.OpAddrOf, A: p, B: x},
			{Op: toyfrontend.OpAssign, A: q, B: p},
			{Op: toyfrontend.OpAddrOf, A: p, B: y},
			{Op: toyfrontend.OpStore, A: q, B: p},
		},
	}, nil
}
