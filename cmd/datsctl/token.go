package main

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethaccount/dats/src/app"
	"github.com/ethaccount/dats/src/calldata"
	"github.com/ethaccount/dats/src/service"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// WETH/UNI 0.05% pool, wrapping 0.01 ETH.
const (
	defaultSwapTokenIn      = "0xB4FBF271143F4FBf7B91A5ded31805e42b2208d6"
	defaultSwapTokenOut     = "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984"
	defaultSwapAmountIn     = "10000000000000000"
	defaultSwapAmountOutMin = "0x01d25c41266b9eb4"
)

const maxUint256 = "0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"

var (
	mintTo     string
	mintAmount string
	mintCmd    = &cobra.Command{
		Use:   "mint",
		Short: "Mint test tokens of TOKEN_ADDRESS to the smart account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount("amount", mintAmount)
			if err != nil {
				return err
			}
			var to *common.Address
			if mintTo != "" {
				if !common.IsHexAddress(mintTo) {
					return fmt.Errorf("invalid --to %q", mintTo)
				}
				addr := common.HexToAddress(mintTo)
				to = &addr
			}

			return withApplication(func(ctx context.Context, application *app.Application) error {
				token := application.Config().TokenAddress
				return runOperation(ctx, cmd, application, "mint", func(account *service.Account) ([]byte, error) {
					recipient := account.Sender
					if to != nil {
						recipient = *to
					}
					return calldata.MintCall(token, recipient, amount)
				})
			})
		},
	}

	approveSpender string
	approveAmount  string
	approveCmd     = &cobra.Command{
		Use:   "approve",
		Short: "Approve a spender, by default the ERC20 paymaster, for TOKEN_ADDRESS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spender, amount, err := approveParamsFromFlags()
			if err != nil {
				return err
			}
			return withApplication(func(ctx context.Context, application *app.Application) error {
				config := application.Config()
				if spender == nil {
					spender = &config.ERC20PaymasterAddress
				}
				return runOperation(ctx, cmd, application, "approve", func(*service.Account) ([]byte, error) {
					return calldata.ApproveCall(config.TokenAddress, *spender, amount)
				})
			})
		},
	}

	swapTokenIn      string
	swapTokenOut     string
	swapFee          uint32
	swapAmountIn     string
	swapAmountOutMin string
	swapDeadline     time.Duration
	swapDeadlineAt   int64
	swapCmd          = &cobra.Command{
		Use:   "swap",
		Short: "Wrap ETH and swap it through a single V3 pool of the universal router",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := swapParamsFromFlags(time.Now())
			if err != nil {
				return err
			}
			return withApplication(func(ctx context.Context, application *app.Application) error {
				params.Router = application.Config().RouterAddress
				return runOperation(ctx, cmd, application, "swap", func(*service.Account) ([]byte, error) {
					return calldata.SwapCall(params)
				})
			})
		},
	}
)

func swapParamsFromFlags(now time.Time) (calldata.SwapParams, error) {
	for name, value := range map[string]string{"token-in": swapTokenIn, "token-out": swapTokenOut} {
		if !common.IsHexAddress(value) {
			return calldata.SwapParams{}, fmt.Errorf("invalid --%s %q", name, value)
		}
	}
	amountIn, err := parseAmount("amount-in", swapAmountIn)
	if err != nil {
		return calldata.SwapParams{}, err
	}
	amountOutMin, err := parseAmount("amount-out-min", swapAmountOutMin)
	if err != nil {
		return calldata.SwapParams{}, err
	}
	deadline := big.NewInt(now.Add(swapDeadline).Unix())
	if swapDeadlineAt > 0 {
		deadline = big.NewInt(swapDeadlineAt)
	} else if swapDeadline <= 0 {
		return calldata.SwapParams{}, fmt.Errorf("--deadline must be positive")
	}

	return calldata.SwapParams{
		TokenIn:      common.HexToAddress(swapTokenIn),
		TokenOut:     common.HexToAddress(swapTokenOut),
		Fee:          swapFee,
		AmountIn:     amountIn,
		AmountOutMin: amountOutMin,
		Deadline:     deadline,
	}, nil
}

// approveParamsFromFlags returns a nil spender when --spender is unset.
func approveParamsFromFlags() (*common.Address, *big.Int, error) {
	amount, err := parseAmount("amount", approveAmount)
	if err != nil {
		return nil, nil, err
	}
	if approveSpender == "" {
		return nil, amount, nil
	}
	if !common.IsHexAddress(approveSpender) {
		return nil, nil, fmt.Errorf("invalid --spender %q", approveSpender)
	}
	spender := common.HexToAddress(approveSpender)
	return &spender, amount, nil
}

func parseAmount(flag, value string) (*big.Int, error) {
	amount, err := calldata.ParseUint256(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return amount, nil
}

func init() {
	mintCmd.Flags().StringVar(&mintTo, "to", "", "recipient, defaults to the smart account")
	mintCmd.Flags().StringVar(&mintAmount, "amount", calldata.DefaultMintAmount.String(), "amount in base units")
	rootCmd.AddCommand(mintCmd)

	approveCmd.Flags().StringVar(&approveSpender, "spender", "", "spender, defaults to ERC20_PAYMASTER_ADDRESS")
	approveCmd.Flags().StringVar(&approveAmount, "amount", maxUint256, "allowance in base units")
	rootCmd.AddCommand(approveCmd)

	swapCmd.Flags().StringVar(&swapTokenIn, "token-in", defaultSwapTokenIn, "wrapped native token the ETH is wrapped into")
	swapCmd.Flags().StringVar(&swapTokenOut, "token-out", defaultSwapTokenOut, "token bought")
	swapCmd.Flags().Uint32Var(&swapFee, "fee", 500, "pool fee in hundredths of a bip")
	swapCmd.Flags().StringVar(&swapAmountIn, "amount-in", defaultSwapAmountIn, "wei wrapped and swapped")
	swapCmd.Flags().StringVar(&swapAmountOutMin, "amount-out-min", defaultSwapAmountOutMin, "minimum output in base units")
	swapCmd.Flags().DurationVar(&swapDeadline, "deadline", 20*time.Minute, "deadline relative to now")
	swapCmd.Flags().Int64Var(&swapDeadlineAt, "deadline-at", 0, "absolute unix deadline, overrides --deadline")
	rootCmd.AddCommand(swapCmd)
}
