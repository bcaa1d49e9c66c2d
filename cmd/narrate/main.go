// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command narrate replays one ballot against a result dataset and prints
// where the vote went.
//
//	narrate -house data/house.json -division Adelaide 1=3 2=1 3=2
//	narrate -senate data/senate.json -state TAS -method atl A=1 B=2 C=3 D=4 E=5 F=6
//
// Each argument is id=rank. House ids are candidate ids; Senate ids are
// ticket ids above the line and ballot positions below it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielhkuo/my-vote/ballot"
	"github.com/danielhkuo/my-vote/count"
	"github.com/danielhkuo/my-vote/models"
	"github.com/danielhkuo/my-vote/source"
)

type options struct {
	house    string
	senate   string
	division string
	state    string
	method   string
	long     bool
	ranks    map[string]string
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		slog.Error("narrate failed", "error", err)
		os.Exit(1)
	}
}

func parseOptions(args []string) (options, error) {
	opts := options{ranks: make(map[string]string)}

	fs := flag.NewFlagSet("narrate", flag.ContinueOnError)
	fs.StringVar(&opts.house, "house", "", "House dataset JSON")
	fs.StringVar(&opts.senate, "senate", "", "Senate dataset JSON")
	fs.StringVar(&opts.division, "division", "", "House division")
	fs.StringVar(&opts.state, "state", "", "Senate state")
	fs.StringVar(&opts.method, "method", models.VoteAboveTheLine, "Senate voting method (atl or btl)")
	fs.BoolVar(&opts.long, "long", false, "Also print the count-by-count Senate explanation")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	switch {
	case opts.house != "" && opts.division == "":
		return options{}, errors.New("-division required with -house")
	case opts.senate != "" && opts.state == "":
		return options{}, errors.New("-state required with -senate")
	case (opts.house == "") == (opts.senate == ""):
		return options{}, errors.New("one of -house or -senate required")
	}

	for _, arg := range fs.Args() {
		id, rank, ok := strings.Cut(arg, "=")
		if !ok || id == "" {
			return options{}, fmt.Errorf("ballot box %q is not id=rank", arg)
		}
		opts.ranks[id] = rank
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}

	chamber, path := models.ChamberHouse, opts.house
	if opts.senate != "" {
		chamber, path = models.ChamberSenate, opts.senate
	}
	catalog := source.NewCatalog(source.FS{
		Dir:  filepath.Dir(path),
		Keys: source.Keys{House: filepath.Base(opts.house), Senate: filepath.Base(opts.senate)},
	}, nil)

	b := ballot.FromMap(opts.ranks)

	var lines []models.Line
	if chamber == models.ChamberHouse {
		result, err := catalog.Division(ctx, opts.division)
		if err != nil {
			return err
		}
		n, err := count.NarrateHouse(result, b)
		if err != nil {
			return incomplete(err)
		}
		lines = n.Lines
	} else {
		result, err := catalog.State(ctx, opts.state)
		if err != nil {
			return err
		}
		n, err := count.NarrateSenate(result, opts.method, b)
		if err != nil {
			return incomplete(err)
		}
		if !opts.long {
			lines = n.Short
		} else {
			fmt.Fprintln(stdout, "The short version")
			printLines(stdout, n.Short)
			fmt.Fprintln(stdout)
			fmt.Fprintln(stdout, "The long version")
			lines = n.Long
		}
	}

	printLines(stdout, lines)
	return nil
}

func printLines(w io.Writer, lines []models.Line) {
	for _, l := range lines {
		fmt.Fprintln(w, l.Text)
	}
}

func incomplete(err error) error {
	if errors.Is(err, count.ErrIncompleteBallot) {
		return errors.New("ballot is not numbered far enough to be counted")
	}
	return err
}
