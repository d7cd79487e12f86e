package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/alitto/pond"
	"github.com/urfave/cli/v2"

	ek60 "github.com/echosounder/go-ek60"
)

// exitCode maps a ReadRaw error to the process exit code spec section 6.4
// requires: 0 on success, 2 on CorruptFrame, 3 on UnknownCalibrationKey, 4
// on InvalidCalibrationLength, 1 on any other error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ek60.ErrCorruptFrame):
		return 2
	case errors.Is(err, ek60.ErrUnknownCalibrationKey):
		return 3
	case errors.Is(err, ek60.ErrInvalidCalibrationLength):
		return 4
	default:
		return 1
	}
}

// convertRaw loads one .raw file and writes its LoadReport and every
// channel's Sv grid as gzip-compressed JSON files into outdirUri (the
// source's directory when outdirUri is empty).
func convertRaw(rawUri, configUri, outdirUri string, metadataOnly bool) error {
	dir, file := filepath.Split(rawUri)
	if outdirUri == "" {
		outdirUri = dir
	}

	log.Println("Processing raw:", rawUri)
	container := ek60.New()
	report, err := container.ReadRaw([]string{rawUri}, ek60.ReadOptions{})
	if err != nil {
		return err
	}

	log.Println("Writing load report")
	reportUri := filepath.Join(outdirUri, file+"-report.json.gz")
	if err := ek60.WriteGzipJSON(reportUri, report); err != nil {
		return err
	}

	if metadataOnly {
		log.Println("Finished raw (metadata only):", rawUri)
		return nil
	}

	log.Println("Exporting calibrated grids")
	for _, channelID := range container.ChannelIDs() {
		grid, err := container.GetSv(channelID, nil, false, ek60.AlignTransducerFace)
		if err != nil {
			log.Printf("skipping channel %s: %v", channelID, err)
			continue
		}
		gridUri := filepath.Join(outdirUri, file+"-"+channelID+"-sv.json.gz")
		if err := ek60.WriteGzipJSON(gridUri, grid); err != nil {
			return err
		}
	}

	log.Println("Finished raw:", rawUri)
	return nil
}

// convertRawList searches uri for .raw files and converts each through a
// fixed worker pool, sized at 2 workers per CPU as the donor CLI does.
func convertRawList(uri, configUri, outdirUri string, metadataOnly bool) error {
	log.Println("Searching uri:", uri)
	items, err := ek60.FindRaw(uri, configUri)
	if err != nil {
		return err
	}
	log.Println("Number of raw files to process:", len(items))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := runtime.NumCPU() * 2
	pool := pond.New(n, 0, pond.MinWorkers(n), pond.Context(ctx))
	defer pool.StopAndWait()

	var firstErr error
	for _, name := range items {
		item := name
		pool.Submit(func() {
			if err := convertRaw(item, configUri, outdirUri, metadataOnly); err != nil {
				log.Printf("error processing %s: %v", item, err)
				if firstErr == nil {
					firstErr = err
				}
			}
		})
	}

	return firstErr
}

func main() {
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name: "convert",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "raw-uri", Usage: "URI or pathname to a .raw file."},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB config file."},
					&cli.StringFlag{Name: "outdir-uri", Usage: "URI or pathname to an output directory."},
					&cli.BoolFlag{Name: "metadata-only", Usage: "Only decode and export the load report, skipping calibrated grid export."},
				},
				Action: func(cCtx *cli.Context) error {
					return convertRaw(cCtx.String("raw-uri"), cCtx.String("config-uri"), cCtx.String("outdir-uri"), cCtx.Bool("metadata-only"))
				},
			},
			{
				Name: "convert-trawl",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "uri", Usage: "URI or pathname to a directory containing .raw files."},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB config file."},
					&cli.StringFlag{Name: "outdir-uri", Usage: "URI or pathname to an output directory."},
					&cli.BoolFlag{Name: "metadata-only", Usage: "Only decode and export load reports, skipping calibrated grid export."},
				},
				Action: func(cCtx *cli.Context) error {
					return convertRawList(cCtx.String("uri"), cCtx.String("config-uri"), cCtx.String("outdir-uri"), cCtx.Bool("metadata-only"))
				},
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Println(err)
	}
	os.Exit(exitCode(err))
}
