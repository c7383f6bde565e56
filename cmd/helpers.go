package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/powledger/powledger/pkg/chain"
	"github.com/powledger/powledger/pkg/config"
	"github.com/powledger/powledger/pkg/genesis"
	"github.com/powledger/powledger/pkg/logger"
	"github.com/powledger/powledger/pkg/observability"
	"github.com/powledger/powledger/pkg/types"
	"gopkg.in/yaml.v3"
)

// payloadRecord is one entry of a payload file. An empty timestamp is
// replaced by the current time when the block is appended.
type payloadRecord struct {
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Data      any    `json:"data" yaml:"data"`
}

// loadPayloads reads a JSON or YAML list of payload records.
func loadPayloads(path string) ([]payloadRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read payload file")
	}

	var records []payloadRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &records)
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		err = dec.Decode(&records)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse payload file %s", path)
	}
	return records, nil
}

// decodePayload parses a single newline-delimited JSON payload record.
func decodePayload(line []byte) (payloadRecord, error) {
	var record payloadRecord
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	if err := dec.Decode(&record); err != nil {
		return payloadRecord{}, errors.Wrap(err, "failed to parse payload record")
	}
	return record, nil
}

// loadGenesis returns the genesis definition at path, or the built-in one
// when path is empty.
func loadGenesis(path string) (*genesis.Genesis, error) {
	if path == "" {
		return genesis.Default(), nil
	}
	return genesis.LoadGenesis(path)
}

// newChain builds an empty chain from the configuration and the optional
// genesis file. The difficulty override takes precedence over the genesis
// file, which takes precedence over the configuration. Mined blocks are logged
// and reported to obs.
func newChain(cfg *config.Config, genesisPath string, override *uint32, obs *observability.Observability) (*chain.Chain[any], error) {
	g, err := loadGenesis(genesisPath)
	if err != nil {
		return nil, err
	}

	difficulty := cfg.Chain.Difficulty
	switch {
	case override != nil:
		difficulty = *override
	case g.Difficulty != nil:
		difficulty = *g.Difficulty
	}

	genesisOpt, err := genesis.Option[any](g)
	if err != nil {
		return nil, err
	}

	opts := []chain.Option[any]{genesisOpt, chain.WithLogger[any](logger.G())}
	if obs != nil {
		opts = append(opts, chain.WithObserver(observability.ChainObserver[any](obs)))
	}
	return chain.New(difficulty, opts...)
}

// appendRecord mines a block for record, bounded by the configured mining
// timeout.
func appendRecord(ctx context.Context, c *chain.Chain[any], record payloadRecord, settings config.Chain) (types.Block[any], error) {
	if settings.MiningTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.MiningTimeout)
		defer cancel()
	}

	timestamp := record.Timestamp
	if timestamp == "" {
		timestamp = types.Now()
	}
	return c.Append(ctx, record.Data, timestamp)
}

// initObservability initializes metrics and tracing, logging instead of
// failing when the exporters cannot be created.
func initObservability(ctx context.Context, cfg *config.Config) *observability.Observability {
	obs, err := observability.Initialize(ctx, cfg.Observability, logger.G())
	if err != nil {
		logger.G().Warn("Observability disabled", "error", err)
		return nil
	}
	return obs
}

func shutdownObservability(obs *observability.Observability) {
	if obs == nil {
		return
	}
	if err := obs.Shutdown(context.Background()); err != nil {
		logger.G().Warn("Failed to flush observability providers", "error", err)
	}
}
