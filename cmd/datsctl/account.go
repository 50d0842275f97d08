package main

import (
	"context"
	"math/big"

	"github.com/ethaccount/dats/src/app"
	"github.com/ethaccount/dats/src/calldata"
	"github.com/ethaccount/dats/src/service"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

type addressOutput struct {
	Owner           string `json:"owner"`
	Salt            string `json:"salt"`
	Sender          string `json:"sender"`
	Nonce           string `json:"nonce"`
	DeploymentState string `json:"deploymentState"`
	InitCode        string `json:"initCode"`
}

var (
	addressCmd = &cobra.Command{
		Use:   "address",
		Short: "Print the owner, its counterfactual account and whether it is deployed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(func(ctx context.Context, application *app.Application) error {
				account, err := application.Execution.Account(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, addressOutput{
					Owner:           account.Owner.Hex(),
					Salt:            account.Salt.String(),
					Sender:          account.Sender.Hex(),
					Nonce:           account.Nonce.String(),
					DeploymentState: account.State.String(),
					InitCode:        hexutil.Encode(account.InitCode),
				})
			})
		},
	}

	deployEmail string
	deploySalt  string
	deployCmd   = &cobra.Command{
		Use:   "deploy",
		Short: "Call the factory's createAccount(owner, salt) from the smart account",
		Long: `deploy sends factory.createAccount(owner, salt) through the smart account.
The salt is derived from --email when given, otherwise taken from --salt, otherwise the
configured account salt is used. The first operation of a fresh account also deploys the
account itself through its initCode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			salt, err := deploySaltFromFlags()
			if err != nil {
				return err
			}
			return submit(cmd, "deploy", func(account *service.Account) ([]byte, error) {
				// initCode starts with the factory address
				factory := common.BytesToAddress(account.InitCode[:common.AddressLength])
				if salt == nil {
					return calldata.CreateAccountCall(factory, account.Owner, account.Salt)
				}
				return calldata.CreateAccountCall(factory, account.Owner, salt)
			})
		},
	}
)

// deploySaltFromFlags returns nil when neither flag is set.
func deploySaltFromFlags() (*big.Int, error) {
	if deployEmail != "" {
		return calldata.EmailSalt(deployEmail)
	}
	if deploySalt != "" {
		return calldata.ParseSalt(deploySalt)
	}
	return nil, nil
}

func init() {
	rootCmd.AddCommand(addressCmd)

	deployCmd.Flags().StringVar(&deployEmail, "email", "", "derive the salt from this email address")
	deployCmd.Flags().StringVar(&deploySalt, "salt", "", "salt as a decimal or 0x-prefixed integer")
	rootCmd.AddCommand(deployCmd)
}
