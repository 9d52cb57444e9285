package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "rankdrift",
		Usage: "Rankdrift builds playlists of ranked maps whose star rating drifts from the predicted one.",
		Commands: []*cli.Command{
			{
				Name:   "classify",
				Usage:  "Predict, classify and write the over/underrated playlists",
				Flags:  classifyFlags,
				Action: classify,
			},
			{
				Name:   "buckets",
				Usage:  "List every playlist title and file name",
				Action: listBuckets,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
