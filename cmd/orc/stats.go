package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "show index-wide totals: files, functions, classes, complexity",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print as JSON"},
		},
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			db, err := openStore(e)
			if err != nil {
				return err
			}
			defer db.Close()

			s, err := db.GetStatistics()
			if err != nil {
				return err
			}

			if c.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}

			fmt.Printf("files:              %d\n", s.TotalFiles)
			fmt.Printf("functions:          %d\n", s.TotalFunctions)
			fmt.Printf("classes:            %d\n", s.TotalClasses)
			fmt.Printf("average complexity: %.2f\n", s.AverageComplexity)
			fmt.Printf("max complexity:     %d\n", s.MaxComplexity)
			fmt.Println("files by language:")
			for lang, n := range s.FilesByLanguage {
				fmt.Printf("  %-12s %d\n", lang, n)
			}
			return nil
		},
	}
}
