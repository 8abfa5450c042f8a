package cmd

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/internal/config"
	"github.com/gaze-network/spool-explorer/pkg/btcutils"
	"github.com/spf13/cobra"
)

func NewHashCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <file>",
		Short: "Print the content hash and the address a file is registered under",
		Args:  cobra.ExactArgs(1),
		RunE:  hashHandler,
	}
}

func hashHandler(cmd *cobra.Command, args []string) error {
	conf := config.Load()
	if !conf.Network.IsSupported() {
		return errors.Wrapf(errs.Unsupported, "%q network is not supported", conf.Network.String())
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrapf(err, "can't read %s", args[0])
	}
	address, err := btcutils.ContentAddress(content, conf.Network.ChainParams())
	if err != nil {
		return errors.WithStack(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "hash160: %s\naddress: %s\n", hex.EncodeToString(btcutil.Hash160(content)), address.EncodeAddress())
	return nil
}
