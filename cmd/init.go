package cmd

import (
	"errors"
	"fmt"

	"github.com/prettymuchbryce/allureview/internal/config"
	"github.com/prettymuchbryce/allureview/internal/pathutil"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	initConfigPath string
	initForce      bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		SetupLogging("warn")

		path, err := config.WriteDefaultConfig(afero.NewOsFs(), initConfigPath, initForce)
		if errors.Is(err, config.ErrConfigExists) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVarP(&initConfigPath, "config", "c", pathutil.MustDefaultConfigPath(), "path to config file")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
