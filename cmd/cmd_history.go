package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/davecgh/go-spew/spew"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/internal/config"
	"github.com/gaze-network/spool-explorer/modules/spool"
	"github.com/gaze-network/spool-explorer/pkg/spoolverb"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

type historyCmdOptions struct {
	Format    string
	Edition   int
	StripLoan bool
	Owner     bool
	AsOf      string
}

func NewHistoryCommand() *cobra.Command {
	opts := &historyCmdOptions{}

	cmd := &cobra.Command{
		Use:   "history <content-hash>",
		Short: "Show the provenance history of a piece",
		Long:  "Show the provenance history of a piece. The content hash is the piece address or the hex encoded hash160 of its content.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return historyHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Format, "format", "table", `Output format: "table" | "json" | "raw"`)
	flags.IntVar(&opts.Edition, "edition", -1, "Show the chain of a single edition instead of the whole tree")
	flags.BoolVar(&opts.StripLoan, "strip-loan", false, "Drop the trailing loans of the chain, requires --edition")
	flags.BoolVar(&opts.Owner, "owner", false, "Show the current owner of the edition, requires --edition")
	flags.StringVar(&opts.AsOf, "as-of", "", "Ignore events after this time, E.g. `2015-10-21T16:29:03 UTC`, requires --edition")
	flags.Int("max-transactions", spool.DefaultMaxTransactions, "Maximum number of transactions fetched for the piece")
	flags.Bool("fail-on-truncation", false, "Fail instead of warning when --max-transactions is reached")

	config.BindPFlag("spool.max_transactions", flags.Lookup("max-transactions"))
	config.BindPFlag("spool.fail_on_truncation", flags.Lookup("fail-on-truncation"))

	return cmd
}

func historyHandler(opts *historyCmdOptions, cmd *cobra.Command, args []string) error {
	format := strings.ToLower(opts.Format)
	switch format {
	case "table", "json", "raw":
	default:
		return errors.Wrapf(errs.Unsupported, "%q output format is not supported", opts.Format)
	}
	if opts.Edition < 0 && (opts.StripLoan || opts.Owner || opts.AsOf != "") {
		return errors.Wrap(errs.InvalidArgument, "--strip-loan, --owner and --as-of require --edition")
	}
	var asOf time.Time
	if opts.AsOf != "" {
		t, err := spoolverb.ParseLedgerTime(opts.AsOf)
		if err != nil {
			return errors.Wrap(err, "invalid --as-of")
		}
		asOf = t
	}

	conf := config.Load()
	injector := newInjector(cmd.Context(), conf)
	defer injector.Shutdown()

	explorer, err := do.Invoke[*spool.Explorer](injector)
	if err != nil {
		return errors.Wrap(err, "can't init SPOOL explorer")
	}

	tree, err := explorer.History(cmd.Context(), args[0])
	if err != nil {
		return errors.WithStack(err)
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.Owner:
		var owner spool.Event
		if asOf.IsZero() {
			owner, err = spool.CurrentOwner(tree, opts.Edition)
		} else {
			owner, err = spool.OwnerAt(tree, opts.Edition, asOf)
		}
		if err != nil {
			return errors.WithStack(err)
		}
		return printEvents(out, format, fmt.Sprintf("owner of edition %d", opts.Edition), owner)
	case opts.Edition >= 0:
		chain := spool.Chain(tree, opts.Edition)
		if !asOf.IsZero() {
			chain = spool.Until(chain, asOf)
		}
		if opts.StripLoan {
			chain = spool.StripLoan(chain)
		}
		return printEvents(out, format, fmt.Sprintf("chain of edition %d", opts.Edition), chain...)
	}

	switch format {
	case "json":
		return writeJSON(out, tree)
	case "raw":
		spew.Fdump(out, tree)
		return nil
	}
	return errors.WithStack(tree.Dump(out))
}

func printEvents(w io.Writer, format string, title string, events ...spool.Event) error {
	switch format {
	case "json":
		return writeJSON(w, events)
	case "raw":
		spew.Fdump(w, events)
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("%s", title)
	tw.AppendHeader(table.Row{"time", "height", "action", "from", "to", "txid"})
	for _, event := range events {
		tw.AppendRow(table.Row{
			spoolverb.FormatLedgerTime(event.Timestamp),
			event.BlockHeight,
			event.Action,
			event.FromAddress,
			event.ToAddress,
			event.TxHash.String(),
		})
	}
	tw.Render()
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.WithStack(enc.Encode(v))
}
