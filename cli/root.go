package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"loan-predictor/config"
)

var cfgFile string

// version is overridden at build time with -ldflags "-X loan-predictor/cli.version=..."
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "loan-predictor",
	Short: "Loan approval predictions from a pre-trained classifier",
	Long: `loan-predictor turns applicant attributes into the feature vector the
loan approval classifier was trained on and reports its decision.

It serves a web form API (serve), an interactive terminal dashboard
(dashboard) and a one-shot command (predict). All three share the same
encoding table, feature order and decision mapping, loaded with the model.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "loan-predictor %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./loan-predictor.yaml or $HOME/.loan-predictor/loan-predictor.yaml)")
	flags.String("model", "", "model artifact path (default: bundled model)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.Bool("strict-labels", false, "treat classifier labels other than 0/1 as errors")
	flags.String("cache", config.CacheMemory, "prediction cache: memory, redis or none")
	flags.String("redis-addr", "localhost:6379", "redis address for --cache=redis")
	flags.String("store", config.StoreMemory, "prediction log: memory or sqlite")
	flags.String("sqlite-path", "predictions.db", "sqlite file for --store=sqlite")

	_ = viper.BindPFlag("model_path", flags.Lookup("model"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("strict_labels", flags.Lookup("strict-labels"))
	_ = viper.BindPFlag("cache.backend", flags.Lookup("cache"))
	_ = viper.BindPFlag("cache.redis_addr", flags.Lookup("redis-addr"))
	_ = viper.BindPFlag("store.backend", flags.Lookup("store"))
	_ = viper.BindPFlag("store.sqlite_path", flags.Lookup("sqlite-path"))

	config.SetDefaults(viper.GetViper())

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("loan-predictor")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home + "/.loan-predictor")
		}
	}

	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		}
	}
}
