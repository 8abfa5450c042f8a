package cmd

import (
	"fmt"

	"github.com/gaze-network/spool-explorer/pkg/spoolverb"
	"github.com/spf13/cobra"
)

const Version = "v0.1.0"

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show SPOOL explorer version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			codec := spoolverb.NewCodec("")
			fmt.Fprintf(cmd.OutOrStdout(), "spool-explorer %s (%s%s)\n", Version, codec.Meta(), codec.Version())
			return nil
		},
	}
}
