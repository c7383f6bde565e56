package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/powledger/powledger/pkg/chain"
	"github.com/powledger/powledger/pkg/config"
	"github.com/powledger/powledger/pkg/ledger"
	"github.com/powledger/powledger/pkg/logger"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
)

func ChainCommand() *cli.Command {
	return &cli.Command{
		Name:  "chain",
		Usage: "Mine, validate and inspect proof-of-work chains",
		Subcommands: []*cli.Command{
			mineCommand(),
			validateCommand(),
			auditCommand(),
			inspectCommand(),
		},
	}
}

func mineCommand() *cli.Command {
	return &cli.Command{
		Name:  "mine",
		Usage: "Mine a chain from a payload file and export it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "payloads",
				Aliases:  []string{"p"},
				Usage:    "JSON or YAML list of {timestamp, data} records",
				Required: true,
			},
			&cli.UintFlag{
				Name:    "difficulty",
				Aliases: []string{"d"},
				Usage:   "Leading zero hex characters required per block (default from config)",
			},
			&cli.StringFlag{
				Name:  "genesis",
				Usage: "Genesis definition file (default from config)",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Export file, a .s2 suffix compresses it (default from config)",
			},
			&cli.BoolFlag{
				Name:  "indent",
				Usage: "Pretty-print the exported JSON",
			},
		},
		Action: func(cmd *cli.Context) error {
			cfg := config.G()
			gLog := logger.G()

			records, err := loadPayloads(cmd.String("payloads"))
			if err != nil {
				return err
			}

			var override *uint32
			if cmd.IsSet("difficulty") {
				d := uint32(cmd.Uint("difficulty"))
				override = &d
			}

			obs := initObservability(cmd.Context, cfg)
			defer shutdownObservability(obs)

			c, err := newChain(cfg, stringOr(cmd.String("genesis"), cfg.Chain.GenesisPath), override, obs)
			if err != nil {
				return errors.Wrap(err, "failure to create chain")
			}

			for i, record := range records {
				spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Mining block %d of %d", i+1, len(records)))
				block, err := appendRecord(cmd.Context, c, record, cfg.Chain)
				if err != nil {
					spinner.Fail(err.Error())
					return err
				}
				spinner.Success(fmt.Sprintf("Block %d sealed with nonce %d: %s", block.Index, block.Nonce, block.Hash.Hex()))
			}

			err = c.Verify()
			if obs != nil {
				obs.RecordValidation(cmd.Context, err)
			}
			if err != nil {
				return errors.Wrap(err, "mined chain failed validation")
			}

			out := stringOr(cmd.String("out"), cfg.Export.Path)
			var opts []chain.ExportOption
			if cmd.Bool("indent") {
				opts = append(opts, chain.WithIndent())
			}
			if err := c.ExportFile(out, opts...); err != nil {
				return err
			}

			gLog.Info("Chain exported", "path", out, "blocks", c.Len(), "difficulty", c.Difficulty())
			pterm.Success.Printfln("Mined %d block(s) at difficulty %d, exported to %s", len(records), c.Difficulty(), out)
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check the hash integrity and linkage of an exported chain",
		Flags: []cli.Flag{
			inFlag(),
		},
		Action: func(cmd *cli.Context) error {
			c, err := chain.ImportFile[any](cmd.String("in"))
			if err != nil {
				return err
			}

			obs := initObservability(cmd.Context, config.G())
			defer shutdownObservability(obs)

			err = c.Verify()
			if obs != nil {
				obs.RecordValidation(cmd.Context, err)
			}
			if err != nil {
				logger.G().Error("Chain is invalid", "path", cmd.String("in"), "error", err)
				pterm.Error.Println(err.Error())
				return cli.Exit("chain is invalid", 1)
			}

			pterm.Success.Printfln("Chain of %d block(s) is valid", c.Len())
			return nil
		},
	}
}

func auditCommand() *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "Report every violation found in an exported chain",
		Flags: []cli.Flag{
			inFlag(),
			&cli.StringFlag{
				Name:  "genesis",
				Usage: "Genesis definition the chain must start from (default from config, built-in otherwise)",
			},
		},
		Action: func(cmd *cli.Context) error {
			c, err := chain.ImportFile[any](cmd.String("in"))
			if err != nil {
				return err
			}

			g, err := loadGenesis(stringOr(cmd.String("genesis"), config.G().Chain.GenesisPath))
			if err != nil {
				return err
			}
			pin, err := g.Hash()
			if err != nil {
				return err
			}

			report := ledger.AuditChain(c, pin)
			if report.Valid() {
				pterm.Success.Printfln("Audited %d block(s) at difficulty %d: no violations", report.Blocks, report.Difficulty)
				return nil
			}

			data := pterm.TableData{{"Block", "Kind", "Detail"}}
			for _, v := range report.Violations {
				block := "-"
				if v.Index >= 0 {
					block = strconv.Itoa(v.Index)
				}
				data = append(data, []string{block, string(v.Kind), v.Detail})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
				return err
			}

			logger.G().Error("Chain audit failed", "path", cmd.String("in"), "violations", len(report.Violations))
			return cli.Exit(fmt.Sprintf("%d violation(s) found", len(report.Violations)), 1)
		},
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Print the blocks of an exported chain",
		Flags: []cli.Flag{
			inFlag(),
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Dump the decoded blocks instead of a table",
			},
		},
		Action: func(cmd *cli.Context) error {
			c, err := chain.ImportFile[any](cmd.String("in"))
			if err != nil {
				return err
			}

			if cmd.Bool("raw") {
				spew.Dump(c.Blocks())
				return nil
			}

			data := pterm.TableData{{"Index", "Timestamp", "Nonce", "Previous hash", "Hash", "Data"}}
			for _, block := range c.Blocks() {
				payload, err := json.Marshal(block.Data)
				if err != nil {
					payload = []byte(fmt.Sprintf("%v", block.Data))
				}
				data = append(data, []string{
					strconv.FormatUint(block.Index, 10),
					block.Timestamp,
					strconv.FormatUint(block.Nonce, 10),
					block.PreviousHash.Hex(),
					block.Hash.Hex(),
					string(payload),
				})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
				return err
			}

			pterm.Info.Printfln("%d block(s), difficulty %d, valid: %t", c.Len(), c.Difficulty(), c.IsValid())
			return nil
		},
	}
}

func inFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "in",
		Aliases:  []string{"i"},
		Usage:    "Exported chain file",
		Required: true,
	}
}

func stringOr(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
