package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/urfave/cli.v1"

	"btcdraw/internal/blocksource"
	"btcdraw/internal/models"
	"btcdraw/internal/records"
	"btcdraw/internal/report"
	"btcdraw/internal/services"
)

// Exit codes are part of the tool contract: 0 final, 2 pending, 1 fatal.
const exitPending = 2

func main() {
	app := cli.NewApp()
	app.Name = "btcdraw"
	app.Version = report.Version
	app.Usage = "deterministic draw with no rerolls, no discretion and a verifiable input list"
	app.ArgsUsage = "[participants file (default: participants.csv)]"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "block-hash",
			Usage: "64-hex Bitcoin block hash",
		},
		cli.IntFlag{
			Name:  "block-height",
			Usage: "Bitcoin block height",
		},
		cli.StringFlag{
			Name:  "ticket-distribution",
			Value: string(models.DistributionUniform),
			Usage: "uniform (1 ticket each) or weighted (CSV with ticket_count)",
		},
		cli.IntFlag{
			Name:  "winners",
			Value: 1,
			Usage: "number of sequential elimination rounds",
		},
		cli.StringFlag{
			Name:  "provider-url",
			Usage: "override the block provider API base URL",
		},
	}
	app.Action = runDraw
	app.Commands = []cli.Command{
		{
			Name:      "legacy",
			Usage:     "re-verify a draw recorded in the explicit from_ticket/to_ticket format",
			ArgsUsage: "[participants file (default: participants.csv)]",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "block-hash",
					Usage: "64-hex Bitcoin block hash",
				},
			},
			Action: runLegacy,
		},
	}

	if err := app.Run(os.Args); err != nil {
		cli.HandleExitCoder(err)
		os.Exit(1)
	}
}

func runDraw(c *cli.Context) error {
	in := report.Input{
		Distribution: models.TicketDistribution(c.String("ticket-distribution")),
	}
	if in.Distribution != models.DistributionUniform && in.Distribution != models.DistributionWeighted {
		return cli.NewExitError("Error: ticket-distribution must be uniform or weighted.", 1)
	}

	file, err := records.Read(participantsPath(c))
	if err != nil {
		return cli.NewExitError("Error: "+err.Error(), 1)
	}
	in.File = file

	pool, err := services.Normalize(file.Text, in.Distribution)
	if err != nil {
		return cli.NewExitError("Error: "+err.Error(), 1)
	}

	seed, err := seedMaterial(c, &in)
	if err != nil {
		return err
	}

	outcome, err := services.NewDrawService().Execute(services.DrawRequest{
		Pool:    pool,
		Winners: c.Int("winners"),
		Seed:    seed,
	})
	if err != nil {
		return cli.NewExitError("Error: "+err.Error(), 1)
	}

	fmt.Print(report.Build(in, outcome).Lines())
	if outcome.Status == models.StatusPending {
		return cli.NewExitError("", exitPending)
	}
	return nil
}

// seedMaterial turns --block-hash/--block-height into seed material,
// resolving heights through the provider.
func seedMaterial(c *cli.Context, in *report.Input) (services.SeedMaterial, error) {
	hasHash := c.String("block-hash") != ""
	hasHeight := c.IsSet("block-height")
	if hasHash == hasHeight {
		return services.SeedMaterial{}, cli.NewExitError("Error: provide --block-hash or --block-height (not both).", 1)
	}

	if hasHash {
		blockHash := strings.ToLower(strings.TrimSpace(c.String("block-hash")))
		if !services.ValidBlockHash(blockHash) {
			return services.SeedMaterial{}, cli.NewExitError("Error: block_hash must be 64 hex chars.", 1)
		}
		in.BlockSource = "hash"
		in.BlockHash = blockHash
		return services.ReadySeed(blockHash), nil
	}

	in.BlockSource = "height"
	in.BlockHeight = c.Int("block-height")
	client := blocksource.NewClient(c.String("provider-url"), 0)
	res := client.ResolveHeight(in.BlockHeight)
	switch res.State {
	case blocksource.Ready:
		in.BlockHash = res.Hash
		if info, err := client.BlockInfo(res.Hash); err == nil {
			in.BlockInfo = info
		}
		return services.ReadySeed(res.Hash), nil
	case blocksource.NotYetAvailable:
		return services.PendingSeed(services.ReasonBlockNotFoundYet), nil
	default:
		return services.SeedMaterial{}, cli.NewExitError("Error: "+res.Err.Error(), 1)
	}
}

func runLegacy(c *cli.Context) error {
	blockHash := strings.ToLower(strings.TrimSpace(c.String("block-hash")))
	if !services.ValidBlockHash(blockHash) {
		return cli.NewExitError("Error: block_hash must be 64 hex chars.", 1)
	}

	file, err := records.Read(participantsPath(c))
	if err != nil {
		return cli.NewExitError("Error: "+err.Error(), 1)
	}
	ranges, total, err := services.ParseExplicitRanges(file.Text)
	if err != nil {
		return cli.NewExitError("Error: "+err.Error(), 1)
	}

	result, err := services.NewDrawService().ExecuteLegacy(ranges, total, blockHash, file.RawSHA256)
	if err != nil {
		return cli.NewExitError("Error: "+err.Error(), 1)
	}

	fmt.Print(report.BuildLegacy(file, blockHash, result).Lines())
	return nil
}

func participantsPath(c *cli.Context) string {
	if path := strings.TrimSpace(c.Args().First()); path != "" {
		return path
	}
	return "participants.csv"
}
