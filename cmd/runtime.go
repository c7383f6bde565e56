package cmd

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/powledger/powledger/pkg/chain"
	"github.com/powledger/powledger/pkg/config"
	"github.com/powledger/powledger/pkg/logger"
	"github.com/powledger/powledger/pkg/shutdown"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxRecordSize bounds a single newline-delimited payload record.
const maxRecordSize = 1 << 20

func RuntimeCommand() *cli.Command {
	return &cli.Command{
		Name:  "runtime",
		Usage: "Run the streaming miner",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Mine newline-delimited JSON payload records read from stdin until EOF or interrupt",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Export file written on shutdown (default from config)",
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
					&cli.DurationFlag{
						Name:  "checkpoint",
						Usage: "Export the chain periodically while mining, 0 disables",
					},
				},
				Action: func(cmd *cli.Context) error {
					cfg := config.G()
					gLog := logger.G()

					// Create a shutdown manager. Mining stops on SIGINT/SIGTERM or when
					// stdin is exhausted; the chain is exported once the miner returned.
					shutdownManager := shutdown.NewManager(cmd.Context, gLog)
					shutdownManager.Start()

					obs := initObservability(shutdownManager.Context(), cfg)
					shutdownManager.AddShutdownCallback(func() {
						shutdownObservability(obs)
					})

					var override *uint32
					if cmd.IsSet("difficulty") {
						d := uint32(cmd.Uint("difficulty"))
						override = &d
					}

					c, err := newChain(cfg, stringOr(cmd.String("genesis"), cfg.Chain.GenesisPath), override, obs)
					if err != nil {
						shutdownManager.Shutdown()
						shutdownManager.Wait()
						return errors.Wrap(err, "failure to create chain")
					}

					out := stringOr(cmd.String("out"), cfg.Export.Path)
					gLog.Info("Miner started", "difficulty", c.Difficulty(), "out", out)

					runErr := runMiner(shutdownManager, c, os.Stdin, cfg.Chain, out, cmd.Duration("checkpoint"))
					if runErr != nil {
						gLog.Error("Miner stopped", zap.Error(runErr))
					}

					if err := c.ExportFile(out); err != nil {
						gLog.Error("Failed to export chain", "path", out, zap.Error(err))
						if runErr == nil {
							runErr = err
						}
					} else {
						gLog.Info("Chain exported", "path", out, "blocks", c.Len())
					}

					// Wait for shutdown to complete
					shutdownManager.Shutdown()
					shutdownManager.Wait()

					gLog.Info("Runtime exited")
					return runErr
				},
			},
		},
	}
}

// runMiner appends every record read from in until in is exhausted or the
// shutdown manager cancels its context. With a positive checkpoint interval
// the chain is exported to out periodically.
func runMiner(sm *shutdown.Manager, c *chain.Chain[any], in io.Reader, settings config.Chain, out string, checkpoint time.Duration) error {
	gLog := logger.G()
	g, ctx := errgroup.WithContext(sm.Context())
	records, readErrs := readRecords(ctx, in)

	g.Go(func() error {
		// Input exhausted or failed: nothing left to mine.
		defer sm.Shutdown()

		for {
			select {
			case <-ctx.Done():
				return nil
			case err := <-readErrs:
				return err
			case record, ok := <-records:
				if !ok {
					gLog.Info("Input exhausted")
					return nil
				}

				if _, err := appendRecord(ctx, c, record, settings); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
			}
		}
	})

	if checkpoint > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(checkpoint)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if err := c.ExportFile(out); err != nil {
						return errors.Wrap(err, "checkpoint failed")
					}
					gLog.Debug("Checkpoint written", "path", out, "blocks", c.Len())
				}
			}
		})
	}

	return g.Wait()
}

// readRecords decodes newline-delimited payload records in the background.
// Blank lines are skipped. The records channel is closed at EOF; a read or
// decode error is delivered on the error channel instead. A read blocked on in
// cannot be interrupted and is abandoned at shutdown.
func readRecords(ctx context.Context, in io.Reader) (<-chan payloadRecord, <-chan error) {
	records := make(chan payloadRecord)
	errs := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

		line := 0
		for scanner.Scan() {
			line++
			if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
				continue
			}
			record, err := decodePayload(scanner.Bytes())
			if err != nil {
				errs <- errors.Wrapf(err, "line %d", line)
				return
			}
			select {
			case records <- record:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errs <- errors.Wrap(err, "failed to read input")
			return
		}
		close(records)
	}()

	return records, errs
}
