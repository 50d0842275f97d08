package app

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Chain is a network the bundler service is known to serve. Name doubles as the
// hosted bundler's chain slug.
type Chain struct {
	Name   string
	ID     *big.Int
	RPCURL string
}

var chains = map[string]Chain{
	"sepolia": {
		Name:   "sepolia",
		ID:     big.NewInt(11155111),
		RPCURL: "https://rpc.sepolia.org",
	},
	"scroll-sepolia-testnet": {
		Name:   "scroll-sepolia-testnet",
		ID:     big.NewInt(534351),
		RPCURL: "https://sepolia-rpc.scroll.io/",
	},
}

func LookupChain(name string) (Chain, error) {
	chain, ok := chains[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Chain{}, fmt.Errorf("unsupported chain %q (supported: %s)", name, strings.Join(SupportedChains(), ", "))
	}
	return chain, nil
}

func SupportedChains() []string {
	names := lo.Keys(chains)
	sort.Strings(names)
	return names
}

// BundlerURL is the hosted v1 endpoint serving eth_* and pimlico_* bundler methods.
func (c Chain) BundlerURL(apiKey string) string {
	return fmt.Sprintf("https://api.pimlico.io/v1/%s/rpc?apikey=%s", c.Name, apiKey)
}

// PaymasterURL is the hosted v2 endpoint serving pm_sponsorUserOperation.
func (c Chain) PaymasterURL(apiKey string) string {
	return fmt.Sprintf("https://api.pimlico.io/v2/%s/rpc?apikey=%s", c.Name, apiKey)
}
