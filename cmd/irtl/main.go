package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"justapengu.in/irtl"
)

var (
	configPath string
	debug      bool

	logger = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "irtl",
	Short: "Record and analyse iRacing telemetry",
	Long: `irtl polls the simulator's telemetry at a fixed rate while recording and saves
each session as a JSON file. Saved sessions can be split into laps, reported on
and plotted.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			logger.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", irtl.DefaultConfigPath, "config path, YAML or .ini")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(lapsCmd)
	rootCmd.AddCommand(plotCmd)
	rootCmd.AddCommand(channelsCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func readConfig() (*irtl.Config, error) {
	config, err := irtl.ReadConfig(configPath)

	if err != nil {
		return nil, err
	}

	logger.Debugf("Using config %s", configPath)

	return config, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("irtl failed")
		os.Exit(1)
	}
}
