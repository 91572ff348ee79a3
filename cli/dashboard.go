package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"loan-predictor/domain"
	"loan-predictor/requestcontext"
	"loan-predictor/service"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive loan predictor",
	Long: `Dashboard asks for the applicant's personal, financial and loan details
and reports whether the loan is likely to be approved. Press enter to keep
the value shown in parentheses.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(os.Stderr)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		ctx := requestcontext.WithSource(cmd.Context(), requestcontext.SourceDashboard)
		d := newDashboard(cmd.InOrStdin(), cmd.OutOrStdout(), a.artifact.Schema())
		return d.run(ctx, a.predictions)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

type predictor interface {
	Predict(ctx context.Context, raw domain.RawAttributes) (domain.PredictionResult, error)
}

// dashboard is the terminal counterpart of the web form. Inputs are bounded
// the same way the original widgets were, so only valid values reach the
// predictor.
type dashboard struct {
	in     *bufio.Reader
	out    io.Writer
	schema domain.Schema
}

func newDashboard(in io.Reader, out io.Writer, schema domain.Schema) *dashboard {
	return &dashboard{in: bufio.NewReader(in), out: out, schema: schema}
}

func (d *dashboard) run(ctx context.Context, p predictor) error {
	fmt.Fprintf(d.out, "Loan Predictor (model %s)\n", d.schema.Version)
	fmt.Fprintln(d.out, "Fill in the details below to check if the loan will be approved.")

	for {
		raw, err := d.collect()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		result, err := p.Predict(ctx, raw)
		switch {
		case err != nil:
			fmt.Fprintf(d.out, "\nData preparation error: %v\n", err)
		case result.Decision.Approved():
			fmt.Fprintln(d.out, "\nThe loan is likely to be approved! ✅")
		default:
			fmt.Fprintln(d.out, "\nThe loan is likely to be denied. ❌")
		}
		if err == nil {
			d.showPayment(raw)
		}

		again, err := d.confirm("Predict another application?")
		if err != nil || !again {
			return nil
		}
	}
}

// collect prompts for every attribute, grouped as on the original page.
func (d *dashboard) collect() (domain.RawAttributes, error) {
	raw := make(domain.RawAttributes, domain.FeatureCount)
	for _, group := range service.InputGroups {
		fmt.Fprintf(d.out, "\n%s\n", group.Title)
		for _, attr := range group.Attributes {
			var (
				value any
				err   error
			)
			if domain.IsCategorical(attr) {
				value, err = d.askCategory(attr)
			} else {
				value, err = d.askNumber(attr, service.InputBounds[attr])
			}
			if err != nil {
				return nil, err
			}
			raw[attr] = value
		}
	}
	return raw, nil
}

func (d *dashboard) askNumber(attr string, b service.Bound) (float64, error) {
	for {
		fmt.Fprintf(d.out, "  %s [%s-%s] (%s): ", attr, formatNumber(b.Min), formatNumber(b.Max), formatNumber(b.Default))
		line, err := d.readLine()
		if err != nil {
			return 0, err
		}
		if line == "" {
			return b.Default, nil
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			fmt.Fprintf(d.out, "  %q is not a number\n", line)
			continue
		}
		if !b.Contains(v) {
			fmt.Fprintf(d.out, "  %s must be between %s and %s\n", attr, formatNumber(b.Min), formatNumber(b.Max))
			continue
		}
		return v, nil
	}
}

func (d *dashboard) askCategory(attr string) (string, error) {
	labels := d.schema.Encodings.Labels(attr)
	if len(labels) == 0 {
		return "", fmt.Errorf("model has no labels for %s", attr)
	}
	for {
		fmt.Fprintf(d.out, "  %s:", attr)
		for i, label := range labels {
			fmt.Fprintf(d.out, "  %d) %s", i+1, label)
		}
		fmt.Fprintf(d.out, "\n  choice (%s): ", labels[0])

		line, err := d.readLine()
		if err != nil {
			return "", err
		}
		if line == "" {
			return labels[0], nil
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(labels) {
			return labels[n-1], nil
		}
		for _, label := range labels {
			if strings.EqualFold(label, line) {
				return label, nil
			}
		}
		fmt.Fprintf(d.out, "  choose 1-%d\n", len(labels))
	}
}

// showPayment prints the repayment the applicant would face. Dashboard
// inputs are always float64.
func (d *dashboard) showPayment(raw domain.RawAttributes) {
	amount, _ := raw[domain.AttrLoanAmount].(float64)
	rate, _ := raw[domain.AttrInterestRate].(float64)
	months, _ := raw[domain.AttrLoanDuration].(float64)
	est, err := service.EstimatePayment(amount, rate, int(months))
	if err != nil {
		return
	}
	fmt.Fprintf(d.out, "Estimated monthly payment: %.2f over %d months (total interest %.2f)\n",
		est.MonthlyPayment, int(months), est.TotalInterest)
}

func (d *dashboard) confirm(question string) (bool, error) {
	fmt.Fprintf(d.out, "\n%s [y/N]: ", question)
	line, err := d.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// readLine returns the trimmed next line. A final line without a newline
// is still returned; io.EOF only comes back when nothing was read.
func (d *dashboard) readLine() (string, error) {
	line, err := d.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
