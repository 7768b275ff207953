package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"salesdb/internal/loader"
)

var loadMode string

var loadCmd = &cobra.Command{
	Use:   "load <csv_path>",
	Short: "Ingest a sales CSV file",
	Long: `Load streams a sales CSV export into the configured store in
batches, committing each batch in its own transaction. Re-running a load
over the same file inserts nothing new: rows are keyed by their IDs and
existing keys are skipped.

Modes:
  append     keep existing data (default)
  overwrite  clear all tables first

The run report is printed to stdout as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadMode, "mode", "append", "append or overwrite")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	mode, err := loader.ParseMode(loadMode)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.EnsureSchema(ctx); err != nil {
		return err
	}

	ld := &loader.Loader{
		Store:         a.store,
		Logger:        zap.NewStdLog(a.log),
		BatchSize:     a.cfg.Loader.BatchSize,
		ParserOptions: a.cfg.Loader.Parser,
	}

	rep, err := ld.Load(ctx, args[0], mode)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
