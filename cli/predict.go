package cli

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"loan-predictor/domain"
	"loan-predictor/requestcontext"
)

// predictFlags maps flag names to attributes. Values are kept as text so
// the assembler reports unparsable numbers the same way it does for forms.
var predictFlags = []struct {
	flag string
	attr string
}{
	{"age", domain.AttrAge},
	{"marital-status", domain.AttrMaritalStatus},
	{"employment-status", domain.AttrEmploymentStatus},
	{"education-level", domain.AttrEducationLevel},
	{"annual-income", domain.AttrAnnualIncome},
	{"net-worth", domain.AttrNetWorth},
	{"credit-score", domain.AttrCreditScore},
	{"total-liabilities", domain.AttrTotalLiabilities},
	{"debt-to-income", domain.AttrTotalDebtToIncomeRatio},
	{"loan-amount", domain.AttrLoanAmount},
	{"loan-duration", domain.AttrLoanDuration},
	{"interest-rate", domain.AttrInterestRate},
}

var errPredictionFailed = errors.New("prediction failed")

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict a single application from flags",
	Long: `Predict classifies one application and prints the result as JSON.
Every attribute is required.

Example:
  loan-predictor predict --age 40 --marital-status Married \
    --employment-status Employed --education-level Bachelor \
    --annual-income 50000 --net-worth 100000 --credit-score 500 \
    --total-liabilities 3000 --debt-to-income 0.30 \
    --loan-amount 10000 --loan-duration 24 --interest-rate 0.05`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(os.Stderr)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		ctx := requestcontext.WithSource(cmd.Context(), requestcontext.SourceCLI)
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		result, err := a.predictions.Predict(ctx, attributesFromFlags(cmd.Flags()))
		if err != nil {
			out := map[string]any{"success": false, "error": err.Error()}
			var vErr *domain.ValidationError
			if errors.As(err, &vErr) {
				out["field"] = vErr.Field
			}
			_ = enc.Encode(out)
			return errPredictionFailed
		}
		return enc.Encode(map[string]any{
			"success":       true,
			"prediction":    result.Decision,
			"prediction_id": result.ID,
			"model_version": result.ModelVersion,
			"features":      result.Features,
		})
	},
}

func init() {
	for _, f := range predictFlags {
		predictCmd.Flags().String(f.flag, "", f.attr)
	}
	rootCmd.AddCommand(predictCmd)
}

// attributesFromFlags includes only the flags that were set.
func attributesFromFlags(flags *pflag.FlagSet) domain.RawAttributes {
	raw := make(domain.RawAttributes, len(predictFlags))
	for _, f := range predictFlags {
		fl := flags.Lookup(f.flag)
		if fl == nil || !fl.Changed {
			continue
		}
		raw[f.attr] = fl.Value.String()
	}
	return raw
}
