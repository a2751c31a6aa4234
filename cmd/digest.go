package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/JerryLinyx/newsdigest/digest"
	"github.com/spf13/cobra"
)

var (
	flagTo      []string
	flagDryRun  bool
	flagTimeout time.Duration
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Aggregate today's news and send it as an email digest",
	RunE:  runDigest,
}

func init() {
	digestCmd.Flags().StringSliceVar(&flagTo, "to", nil, "recipient addresses (default email.recipients, then the sender)")
	digestCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "print the rendered HTML instead of sending")
	digestCmd.Flags().DurationVar(&flagTimeout, "timeout", 5*time.Minute, "overall deadline for the run")
}

func runDigest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !flagDryRun {
		if err := cfg.RequireEmail(); err != nil {
			return err
		}
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	if flagDryRun {
		d, err := a.digestService(nil).Render(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), d.HTML)
		return nil
	}

	notifiers, err := a.notifiers(flagTo)
	if err != nil {
		return err
	}
	report, err := a.digestService(notifiers).Run(ctx, "email")
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Failed to send digest: %v\n", err)
		return err
	}
	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, report *digest.Report) {
	out := cmd.OutOrStdout()
	for _, name := range report.Delivered {
		if name == "email" {
			fmt.Fprintln(out, "Email sent successfully!")
		} else {
			fmt.Fprintf(out, "Digest delivered via %s\n", name)
		}
	}
	for name, err := range report.FailedMessages() {
		fmt.Fprintf(out, "Failed to send digest via %s: %s\n", name, err)
	}
}
