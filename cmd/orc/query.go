package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// queryCommand backs `orc query <pattern>`: a case-insensitive substring
// search across function, class, and file names, narrowed by --type.
func queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "search indexed symbols by name substring",
		ArgsUsage: "<pattern>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Usage: "restrict to one of: function, class, file"},
			&cli.IntFlag{Name: "limit", Value: 25, Usage: "maximum results to print"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: orc query <pattern>")
			}
			e := envFrom(c)
			db, err := openStore(e)
			if err != nil {
				return err
			}
			defer db.Close()

			pattern := c.Args().Get(0)
			limit := c.Int("limit")
			wantType := c.String("type")

			switch wantType {
			case "", "function", "class", "file":
			default:
				return fmt.Errorf("--type must be function, class, or file (got %q)", wantType)
			}

			matches, err := db.SearchSymbols(pattern, limit)
			if err != nil {
				return err
			}
			printed := 0
			for _, m := range matches {
				if wantType != "" && m.Kind != wantType {
					continue
				}
				if m.Line > 0 {
					fmt.Printf("%-9s %-40s %s:%d\n", m.Kind, m.Name, m.File, m.Line)
				} else {
					fmt.Printf("%-9s %-40s %s\n", m.Kind, m.Name, m.File)
				}
				printed++
			}
			if printed == 0 {
				fmt.Println("no matches")
			}
			return nil
		},
	}
}
