package btcutils

import (
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
)

// ContentAddress derives the P2PKH address that references a piece of content on chain.
// The address commits to hash160(content), so anyone holding the file can find its history.
func ContentAddress(content []byte, net *chaincfg.Params) (btcutil.Address, error) {
	addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(content), net)
	if err != nil {
		return nil, errors.Wrap(err, "can't create content address")
	}
	return addr, nil
}

// ResolveContentAddress resolves a content hash to the address transactions reference it by.
//
// The hash is either an address of the given network, used as is,
// or a hex encoded hash160 that is turned into a P2PKH address.
func ResolveContentAddress(hash string, net *chaincfg.Params) (btcutil.Address, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "empty content hash")
	}

	if addr, err := btcutil.DecodeAddress(hash, net); err == nil {
		if !addr.IsForNet(net) {
			return nil, errors.Wrapf(errs.InvalidArgument, "address %s is not for network %s", hash, net.Name)
		}
		return addr, nil
	}

	if len(hash) == 2*20 {
		if digest, err := hex.DecodeString(hash); err == nil {
			addr, err := btcutil.NewAddressPubKeyHash(digest, net)
			if err != nil {
				return nil, errors.Wrap(err, "can't create content address")
			}
			return addr, nil
		}
	}

	return nil, errors.Wrapf(errs.InvalidArgument, "%q is neither an address nor a hash160", hash)
}
