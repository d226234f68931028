package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/diogo/geminichat/internal/models"
)

func newModelsCmd(deps *Dependencies, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models tried, in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(deps, opts)
			if err != nil {
				return err
			}
			for i, name := range cfg.Models {
				fmt.Fprintf(deps.Stdout, "%d. %s\n", i+1, name)
			}
			if !slices.Equal(cfg.Models, models.DefaultModels()) {
				fmt.Fprintln(deps.Stdout)
				fmt.Fprintln(deps.Stdout, "Default chain:")
				for i, name := range models.DefaultModels() {
					fmt.Fprintf(deps.Stdout, "%d. %s\n", i+1, name)
				}
			}
			return nil
		},
	}
}
