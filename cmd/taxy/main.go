package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/taxy/internal/common"
	"github.com/noah-isme/taxy/internal/obs"
	"github.com/noah-isme/taxy/internal/tax"
)

type rootOptions struct {
	regimesFile string
	logLevel    string
	logFormat   string
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "taxy",
		Short:        "Progressive income tax calculator",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&opts.regimesFile, "regimes-file", os.Getenv("TAX_REGIMES_FILE"), "YAML file with additional tax regimes")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "console", "log format (json|console)")

	root.AddCommand(newComputeCmd(opts), newRegimesCmd(opts))
	return root
}

func newComputeCmd(opts *rootOptions) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "compute <regime> <amount>",
		Short: "Compute the payable tax for an income",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := opts.service(cmd)
			if err != nil {
				return err
			}
			income, err := tax.ParseIncome(args[1])
			if err != nil {
				return userError(err)
			}
			report, err := service.Calculate(cmd.Context(), args[0], income)
			if err != nil {
				return userError(err)
			}
			if verbose {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			return writeJSON(cmd.OutOrStdout(), report.Summary())
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the slab-by-slab breakdown")
	return cmd
}

func newRegimesCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "regimes",
		Short: "List the available tax regimes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, err := opts.service(cmd)
			if err != nil {
				return err
			}
			regimes := service.Regimes()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), regimes)
			}
			names := make([]string, 0, len(regimes))
			for _, r := range regimes {
				names = append(names, r.Name())
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print regimes with their slabs as JSON")
	return cmd
}

func (o *rootOptions) service(cmd *cobra.Command) (*tax.Service, error) {
	logger := obs.NewLoggerTo(cmd.ErrOrStderr(), o.logFormat, o.logLevel)
	registry := tax.DefaultRegistry()
	if o.regimesFile != "" {
		extra, err := tax.LoadRegimesFile(o.regimesFile)
		if err != nil {
			return nil, fmt.Errorf("load regimes %s: %w", o.regimesFile, err)
		}
		registry = registry.Merge(extra...)
		logger.Debug().Str("file", o.regimesFile).Strs("regimes", registry.Names()).Msg("regimes loaded")
	}
	logger.Debug().Str("command", cmd.Name()).Msg("running")
	return tax.NewService(tax.ServiceConfig{Registry: registry}), nil
}

func userError(err error) error {
	if appErr, ok := common.AsAppError(err); ok && appErr.Message != "" {
		return errors.New(appErr.Message)
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(payload))
	return err
}
