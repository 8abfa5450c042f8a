package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/pkg/spoolverb"
	"github.com/spf13/cobra"
)

func NewVerbCommand() *cobra.Command {
	verbCmd := &cobra.Command{
		Use:   "verb",
		Short: "Encode and decode SPOOL verbs",
	}
	verbCmd.AddCommand(newVerbDecodeCommand(), newVerbEncodeCommand())
	return verbCmd
}

func newVerbDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "decode <verb>",
		Short:   "Decode a verb, E.g. `ASCRIBESPOOL01LOAN1/150101150131`",
		Args:    cobra.ExactArgs(1),
		Example: "spool verb decode ASCRIBESPOOL01TRANSFER1",
		RunE: func(cmd *cobra.Command, args []string) error {
			verb, err := spoolverb.NewCodec("").Decode([]byte(args[0]))
			if err != nil {
				return errors.WithStack(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "meta:    %s\nversion: %s\naction:  %s\n", verb.Meta, verb.Version, verb.Action)
			switch {
			case verb.Action == spoolverb.ActionEditions:
				fmt.Fprintf(out, "editions: %d\n", verb.NumEditions)
			case verb.Action.HasEdition():
				fmt.Fprintf(out, "edition: %d\n", verb.EditionNumber)
			}
			if verb.Action == spoolverb.ActionLoan {
				start, end, err := verb.LoanWindow()
				if err != nil {
					return errors.WithStack(err)
				}
				fmt.Fprintf(out, "loan:    %s - %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
			}
			return nil
		},
	}
}

type verbEncodeCmdOptions struct {
	Version     string
	Edition     int
	NumEditions int
	LoanStart   string
	LoanEnd     string
}

func newVerbEncodeCommand() *cobra.Command {
	opts := &verbEncodeCmdOptions{}

	cmd := &cobra.Command{
		Use:     "encode <action>",
		Short:   "Encode a verb",
		Args:    cobra.ExactArgs(1),
		Example: "spool verb encode loan --edition 1 --loan-start 150101 --loan-end 150131",
		RunE: func(cmd *cobra.Command, args []string) error {
			action, ok := spoolverb.ParseAction(args[0])
			if !ok {
				return errors.Wrapf(errs.Unsupported, "unknown action %q", args[0])
			}
			payload, err := spoolverb.NewCodec(opts.Version).Encode(spoolverb.Verb{
				Action:        action,
				EditionNumber: opts.Edition,
				NumEditions:   opts.NumEditions,
				LoanStart:     opts.LoanStart,
				LoanEnd:       opts.LoanEnd,
			})
			if err != nil {
				return errors.WithStack(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Version, "version", spoolverb.DefaultVersion, "Protocol version")
	flags.IntVar(&opts.Edition, "edition", 0, "Edition number")
	flags.IntVar(&opts.NumEditions, "editions", 0, "Number of editions, for EDITIONS")
	flags.StringVar(&opts.LoanStart, "loan-start", "", "First day of the loan as YYMMDD, for LOAN")
	flags.StringVar(&opts.LoanEnd, "loan-end", "", "Last day of the loan as YYMMDD, for LOAN")

	return cmd
}
