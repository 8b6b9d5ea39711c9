package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"car-mzansi-connect/internal/finance/application"
	"car-mzansi-connect/internal/finance/consent"
	"car-mzansi-connect/internal/finance/gateway"
	"car-mzansi-connect/internal/finance/wizard"
	"car-mzansi-connect/internal/marketplace/listings"
	"car-mzansi-connect/internal/models"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// AnswersFile is the YAML document read by apply.
type AnswersFile struct {
	ListingID string            `yaml:"listingId"`
	Applicant Applicant         `yaml:"applicant"`
	Answers   map[string]string `yaml:"answers"`
	Consent   map[string]bool   `yaml:"consent"`
}

// Applicant stands in for the signed-in user. An empty email submits anonymously,
// which stops the wizard at the sign-in step.
type Applicant struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Phone string `yaml:"phone"`
}

var applyFlags struct {
	delay time.Duration
	fail  bool
}

var applyCmd = &cobra.Command{
	Use:   "apply <answers.yaml>",
	Short: "Run a finance application through the wizard from a YAML answers file",
	Args:  cobra.ExactArgs(1),
	RunE:  runApply,
}

func init() {
	applyCmd.Flags().DurationVar(&applyFlags.delay, "delay", 2*time.Second, "simulated submission delay")
	applyCmd.Flags().BoolVar(&applyFlags.fail, "fail", false, "make the simulated submission fail")
}

func loadAnswers(path string) (*AnswersFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var af AnswersFile
	if err := yaml.Unmarshal(raw, &af); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if af.ListingID == "" {
		return nil, fmt.Errorf("%s: listingId is required", path)
	}
	return &af, nil
}

func runApply(cmd *cobra.Command, args []string) error {
	af, err := loadAnswers(args[0])
	if err != nil {
		return err
	}
	log := cliLogger()
	gw := gateway.NewSimulated(applyFlags.delay, applyFlags.fail, log)
	return apply(cmd.Context(), cmd.OutOrStdout(), af, gw)
}

func apply(ctx context.Context, out io.Writer, af *AnswersFile, gw wizard.SubmissionGateway) error {
	listing, err := listings.NewSample(now()).Get(ctx, af.ListingID)
	if err != nil {
		return fmt.Errorf("listing %s: %w", af.ListingID, err)
	}

	var user models.User
	if af.Applicant.Email != "" {
		user = models.User{ID: uuid.NewString(), Name: af.Applicant.Name, Email: af.Applicant.Email, Phone: af.Applicant.Phone}
	}
	session := wizard.SessionFunc(func(context.Context) (models.User, bool) {
		return user, user.ID != ""
	})
	notifier := wizard.NotifierFunc(func(n wizard.Notification) {
		fmt.Fprintf(out, "[%s] %s: %s\n", n.Kind, n.Title, n.Description)
	})

	w := wizard.New(session, gw, wizard.WithNotifier(notifier), wizard.WithLogger(cliLogger()))
	if err := w.OpenListing(ctx, listing); err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	fmt.Fprintf(out, "Applying for finance on the %s (%s) from %s\n",
		listing.Car.Title(), listings.FormatRand(listing.Car.Price), listing.Dealership.Name)

	if w.Snapshot().Stage == wizard.StageAuth {
		return wizard.ErrAuthRequired
	}

	for name, value := range af.Answers {
		if err := w.UpdateField(application.Field(name), value); err != nil {
			return fmt.Errorf("answer %q: %w", name, err)
		}
	}

	for w.Snapshot().Stage == wizard.StageForm {
		step := w.Snapshot().Step
		if err := w.Advance(); err != nil {
			var verr *application.ValidationError
			if stderrors.As(err, &verr) {
				printFieldErrors(out, verr)
			}
			return err
		}
		fmt.Fprintf(out, "Step %d (%s) complete\n", step, step)
	}

	flags := make([]string, 0, len(af.Consent))
	for flag := range af.Consent {
		flags = append(flags, flag)
	}
	sort.Strings(flags)
	for _, flag := range flags {
		if err := w.SetConsent(consent.Flag(flag), af.Consent[flag]); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "Submitting application...")
	receipt, err := w.Accept(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Reference: %s\n", receipt.Reference)
	return w.Dismiss()
}

func printFieldErrors(out io.Writer, verr *application.ValidationError) {
	for _, f := range verr.FieldNames() {
		fmt.Fprintf(out, "  %s: %s\n", f, verr.Fields[f].Message)
	}
}
