package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/ethaccount/dats/src/app"
	"github.com/ethaccount/dats/src/calldata"
	"github.com/ethaccount/dats/src/service"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	datsCmd = &cobra.Command{
		Use:   "dats",
		Short: "Save and read settings of the DATS contract",
	}

	ddosApprove      bool
	ddosTrafficScale uint8
	saveDDosCmd      = &cobra.Command{
		Use:   "save-ddos",
		Short: "saveDDos(bool,uint8)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitDATS(cmd, "save-ddos", func(dats common.Address) ([]byte, error) {
				return calldata.SaveDDos(dats, ddosApprove, ddosTrafficScale)
			})
		},
	}

	superComputerApprove bool
	superComputerCPU     uint8
	saveSuperComputerCmd = &cobra.Command{
		Use:   "save-supercomputer",
		Short: "saveSuperComputer(bool,uint8)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitDATS(cmd, "save-supercomputer", func(dats common.Address) ([]byte, error) {
				return calldata.SaveSuperComputer(dats, superComputerApprove, superComputerCPU)
			})
		},
	}

	cyberSecurity        calldata.CyberSecurityInput
	saveCyberSecurityCmd = &cobra.Command{
		Use:   "save-cybersecurity",
		Short: "saveCyberSecurity(bool,bool,bool,bool,bool)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitDATS(cmd, "save-cybersecurity", func(dats common.Address) ([]byte, error) {
				return calldata.SaveCyberSecurity(dats, cyberSecurity)
			})
		},
	}

	vulnerability        calldata.VulnerabilityInput
	saveVulnerabilityCmd = &cobra.Command{
		Use:   "save-vulnerability",
		Short: "saveVulnerability(bool,bool,bool,bool,bool,bool)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitDATS(cmd, "save-vulnerability", func(dats common.Address) ([]byte, error) {
				return calldata.SaveVulnerability(dats, vulnerability)
			})
		},
	}

	attackPrevention  bool
	saveBlockchainCmd = &cobra.Command{
		Use:   "save-blockchain",
		Short: "saveBlockchain(bool)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitDATS(cmd, "save-blockchain", func(dats common.Address) ([]byte, error) {
				return calldata.SaveBlockchain(dats, attackPrevention)
			})
		},
	}

	getCmd = &cobra.Command{
		Use:   "get <method> [args...]",
		Short: "Call a DATS view method from the smart account",
		Long: `get runs a DATS view method as an eth_call from the smart account address, which is
the msg.sender the contract keys settings by. Arguments are given in declaration order,
e.g. "datsctl dats get getDDosByUser 0x70997970C51812dc3A010C7d01b50e0d17dc79C8".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := calldata.Lookup(calldata.ContractDATS, args[0])
			if err != nil {
				return err
			}
			if !m.View {
				return fmt.Errorf("%s is not a view method, use the matching save command", m.Name)
			}
			values, err := m.ParseArgs(args[1:])
			if err != nil {
				return err
			}

			return withApplication(func(ctx context.Context, application *app.Application) error {
				account, err := application.Execution.Account(ctx)
				if err != nil {
					return err
				}
				result, err := application.Settings.Read(ctx, account.Sender, m, values...)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}

	methodsContract string
	methodsCmd      = &cobra.Command{
		Use:   "methods",
		Short: "List the contract method table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			methods := calldata.ByContract(methodsContract)
			if methodsContract == "all" {
				methods = calldata.Methods
			} else if len(methods) == 0 {
				return fmt.Errorf("unknown contract %q (known: %v)", methodsContract, calldata.Contracts())
			}
			return writeMethodTable(cmd, methods)
		},
	}
)

// submitDATS resolves the DATS address from the configuration before building the calldata.
func submitDATS(cmd *cobra.Command, action string, build func(dats common.Address) ([]byte, error)) error {
	return withApplication(func(ctx context.Context, application *app.Application) error {
		dats := application.Config().DATSAddress
		return runOperation(ctx, cmd, application, action, func(*service.Account) ([]byte, error) {
			return build(dats)
		})
	})
}

func writeMethodTable(cmd *cobra.Command, methods []*calldata.Method) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CONTRACT\tSELECTOR\tSIGNATURE\tVIEW\tOUTPUTS")
	for _, m := range methods {
		outputs := lo.Ternary(len(m.Outputs) == 0, "-", m.OutputSignature())
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", m.Contract, m.SelectorHex(), m.Signature(), m.View, outputs)
	}
	return w.Flush()
}

func init() {
	saveDDosCmd.Flags().BoolVar(&ddosApprove, "approve", true, "isApprove")
	saveDDosCmd.Flags().Uint8Var(&ddosTrafficScale, "traffic-scale", 5, "trafficScale")

	saveSuperComputerCmd.Flags().BoolVar(&superComputerApprove, "approve", true, "isApprove")
	saveSuperComputerCmd.Flags().Uint8Var(&superComputerCPU, "cpu", 4, "cpuValue")

	saveCyberSecurityCmd.Flags().BoolVar(&cyberSecurity.IsApprove, "approve", true, "isApprove")
	saveCyberSecurityCmd.Flags().BoolVar(&cyberSecurity.WebSecurity, "web", false, "webSecurity")
	saveCyberSecurityCmd.Flags().BoolVar(&cyberSecurity.ServerSecurity, "server", false, "serverSecurity")
	saveCyberSecurityCmd.Flags().BoolVar(&cyberSecurity.RansomwareResearch, "ransomware", false, "ransomwareResearch")
	saveCyberSecurityCmd.Flags().BoolVar(&cyberSecurity.MalwareResearch, "malware", false, "malwareResearch")

	saveVulnerabilityCmd.Flags().BoolVar(&vulnerability.IsApprove, "approve", true, "isApprove")
	saveVulnerabilityCmd.Flags().BoolVar(&vulnerability.WebPenetration, "web", false, "webPenetration")
	saveVulnerabilityCmd.Flags().BoolVar(&vulnerability.ServerPenetration, "server", false, "serverPenetration")
	saveVulnerabilityCmd.Flags().BoolVar(&vulnerability.ScadaPenetration, "scada", false, "scadaPenetration")
	saveVulnerabilityCmd.Flags().BoolVar(&vulnerability.BlockchainPenetration, "blockchain", false, "blockchainPenetration")
	saveVulnerabilityCmd.Flags().BoolVar(&vulnerability.ContractPenetration, "contract", false, "contractPenetration")

	saveBlockchainCmd.Flags().BoolVar(&attackPrevention, "approve", true, "approveAttackPrevention")

	methodsCmd.Flags().StringVar(&methodsContract, "contract", calldata.ContractDATS, `contract to list, or "all"`)

	datsCmd.AddCommand(saveDDosCmd, saveSuperComputerCmd, saveCyberSecurityCmd, saveVulnerabilityCmd, saveBlockchainCmd, getCmd, methodsCmd)
	rootCmd.AddCommand(datsCmd)
}
