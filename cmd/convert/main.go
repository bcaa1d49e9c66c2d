// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command convert turns AEC distribution of preferences CSV downloads into
// result datasets, and optionally imports them into the database.
//
//	convert -house HouseDopByDivisionDownload.csv -o data/house.json
//	convert -senate SenateStateDOPDownload-NSW.csv -senate ...-VIC.csv -tickets tickets.json -o data/senate.json
//	convert -senate ...-TAS.csv -import -d file:results.db
//	convert -admin-key
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/danielhkuo/my-vote/auth"
	"github.com/danielhkuo/my-vote/convert"
	"github.com/danielhkuo/my-vote/db"
	"github.com/danielhkuo/my-vote/models"
	"github.com/danielhkuo/my-vote/source"
)

type options struct {
	house       string
	senate      []string
	tickets     string
	out         string
	importDB    bool
	databaseURL string
	dbType      string
	adminKey    bool
	salt        string
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		slog.Error("convert failed", "error", err)
		os.Exit(1)
	}
}

func parseOptions(args []string) (options, error) {
	var opts options

	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.StringVar(&opts.house, "house", "", "House distribution of preferences CSV")
	fs.Func("senate", "Senate state distribution of preferences CSV (repeatable)", func(path string) error {
		opts.senate = append(opts.senate, path)
		return nil
	})
	fs.StringVar(&opts.tickets, "tickets", "", "Ticket names JSON {state: {ticket: name}}")
	fs.StringVar(&opts.out, "o", "-", "Output file (- for stdout)")
	fs.BoolVar(&opts.importDB, "import", false, "Import the dataset into the database")
	fs.StringVar(&opts.databaseURL, "d", os.Getenv("DATABASE_URL"), "Database URL")
	fs.StringVar(&opts.dbType, "t", envOr("DATABASE_TYPE", db.TypeSQLite), "Database type (sqlite or postgres)")
	fs.BoolVar(&opts.adminKey, "admin-key", false, "Print the import admin keys for ADMIN_KEY_SALT")
	fs.StringVar(&opts.salt, "admin-salt", os.Getenv("ADMIN_KEY_SALT"), "Admin key salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	switch {
	case opts.adminKey:
		if opts.salt == "" {
			return options{}, errors.New("ADMIN_KEY_SALT required for -admin-key")
		}
	case opts.house != "" && len(opts.senate) > 0:
		return options{}, errors.New("convert one chamber at a time")
	case opts.house == "" && len(opts.senate) == 0:
		return options{}, errors.New("-house or -senate required")
	}
	if opts.importDB && opts.databaseURL == "" {
		return options{}, errors.New("database URL required for -import (use -d or DATABASE_URL env)")
	}
	return opts, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}

	if opts.adminKey {
		for _, chamber := range []string{models.ChamberHouse, models.ChamberSenate} {
			fmt.Fprintf(stdout, "%s\t%s\n", chamber, auth.GenerateAdminKey(chamber, opts.salt))
		}
		return nil
	}

	chamber, data, err := convertFiles(opts)
	if err != nil {
		return err
	}

	if opts.importDB {
		return importDataset(ctx, opts, chamber, data)
	}
	return writeOutput(opts.out, data, stdout)
}

// convertFiles converts the input files into a chamber's JSON dataset.
func convertFiles(opts options) (string, []byte, error) {
	var (
		chamber string
		dataset any
	)

	if opts.house != "" {
		f, err := os.Open(opts.house)
		if err != nil {
			return "", nil, err
		}
		defer f.Close()

		results, err := convert.House(f)
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", opts.house, err)
		}
		slog.Info("converted house results", "file", opts.house, "divisions", len(results))
		chamber, dataset = models.ChamberHouse, results
	} else {
		var names convert.TicketNames
		if opts.tickets != "" {
			f, err := os.Open(opts.tickets)
			if err != nil {
				return "", nil, err
			}
			names, err = convert.LoadTicketNames(f)
			f.Close()
			if err != nil {
				return "", nil, fmt.Errorf("%s: %w", opts.tickets, err)
			}
		}

		results := make([]models.SenateResult, 0, len(opts.senate))
		for _, path := range opts.senate {
			result, err := convertSenate(path, names)
			if err != nil {
				return "", nil, err
			}
			slog.Info("converted senate results", "file", path, "state", result.State, "events", len(result.Events))
			results = append(results, result)
		}
		chamber, dataset = models.ChamberSenate, results
	}

	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode %s dataset: %w", chamber, err)
	}
	return chamber, data, nil
}

func convertSenate(path string, names convert.TicketNames) (models.SenateResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.SenateResult{}, err
	}
	defer f.Close()

	result, err := convert.Senate(f, names)
	if err != nil {
		return models.SenateResult{}, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}

func writeOutput(path string, data []byte, stdout io.Writer) error {
	data = append(data, '\n')
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	slog.Info("dataset written", "file", path, "bytes", len(data))
	return nil
}

func importDataset(ctx context.Context, opts options, chamber string, data []byte) error {
	conn, err := db.Open(opts.dbType, opts.databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.CreateSchema(conn); err != nil {
		return err
	}

	records, err := source.Records(chamber, data)
	if err != nil {
		return err
	}
	importID, err := db.NewStore(conn).Import(ctx, chamber, records)
	if err != nil {
		return err
	}
	slog.Info("dataset imported", "import_id", importID, "chamber", chamber, "records", len(records))
	return nil
}
