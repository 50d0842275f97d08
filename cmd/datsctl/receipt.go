package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethaccount/dats/src/app"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var (
	receiptWait bool
	receiptCmd  = &cobra.Command{
		Use:   "receipt <userOpHash>",
		Short: "Look up the receipt of a submitted user operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := parseUserOpHash(args[0])
			if err != nil {
				return err
			}

			return withApplication(func(ctx context.Context, application *app.Application) error {
				bundler := application.Bundler()
				if receiptWait {
					config := application.Config()
					receipt, err := bundler.WaitForUserOperationReceipt(ctx, hash, config.ReceiptPollInterval, config.ReceiptTimeout)
					if err != nil {
						return err
					}
					return printJSON(cmd, receipt)
				}

				receipt, err := bundler.GetUserOperationReceipt(ctx, hash)
				if err != nil {
					return err
				}
				if receipt == nil {
					return fmt.Errorf("user operation %s is not mined yet", hash.Hex())
				}
				return printJSON(cmd, receipt)
			})
		},
	}
)

func parseUserOpHash(s string) (common.Hash, error) {
	raw, err := hexutil.Decode(s)
	if err != nil || len(raw) != common.HashLength {
		return common.Hash{}, errors.New("user operation hash must be 32 bytes of 0x-prefixed hex")
	}
	return common.BytesToHash(raw), nil
}

func init() {
	receiptCmd.Flags().BoolVar(&receiptWait, "wait", false, "poll until the receipt is available or RECEIPT_TIMEOUT elapses")
	rootCmd.AddCommand(receiptCmd)
}
