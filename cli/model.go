package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"loan-predictor/domain"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect the model artifact",
}

var modelInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the model's version, feature order and encodings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		artifact, err := loadArtifact(viper.GetString("model_path"))
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		return writeSchema(cmd, artifact.Schema())
	},
}

type schemaView struct {
	Version    string              `yaml:"version"`
	Features   []string            `yaml:"features"`
	Categories map[string][]string `yaml:"categories"`
}

func writeSchema(cmd *cobra.Command, schema domain.Schema) error {
	view := schemaView{
		Version:    schema.Version,
		Features:   schema.FeatureOrder,
		Categories: make(map[string][]string, len(domain.CategoricalAttributes)),
	}
	for _, attr := range domain.CategoricalAttributes {
		view.Categories[attr] = schema.Encodings.Labels(attr)
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(view)
}

func init() {
	modelCmd.AddCommand(modelInspectCmd)
	rootCmd.AddCommand(modelCmd)
}
