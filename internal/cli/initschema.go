package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var initSchemaCmd = &cobra.Command{
	Use:   "init-schema",
	Short: "Create tables and indexes if missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.EnsureSchema(ctx); err != nil {
			return err
		}
		a.log.Info("schema ready", zap.String("storage", a.cfg.Storage.Kind))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initSchemaCmd)
}
