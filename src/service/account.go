package service

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethaccount/dats/src/calldata"
	"github.com/ethaccount/dats/src/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

// Account is a smart account resolved against the chain.
type Account struct {
	Owner    common.Address
	Salt     *big.Int
	Sender   common.Address
	InitCode []byte
	Nonce    *big.Int
	State    domain.DeploymentState
}

// OperationInitCode is the initCode the next operation must carry: the factory call while the
// account is not deployed, empty afterwards.
func (a *Account) OperationInitCode() []byte {
	if a.State.NeedsInitCode() {
		return a.InitCode
	}
	return []byte{}
}

type AccountService struct {
	blockchain *BlockchainService
	factory    common.Address
}

func NewAccountService(blockchain *BlockchainService, factory common.Address) *AccountService {
	return &AccountService{
		blockchain: blockchain,
		factory:    factory,
	}
}

// logger wraps the execution context with component info
func (s *AccountService) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("service", "account").Logger()
	return &l
}

func (s *AccountService) Factory() common.Address {
	return s.factory
}

// Resolve derives the counterfactual sender of (owner, salt) and its deployment state.
func (s *AccountService) Resolve(ctx context.Context, owner common.Address, salt *big.Int) (*Account, error) {
	initCode, err := calldata.InitCode(s.factory, owner, salt)
	if err != nil {
		return nil, domain.NewError(domain.ErrorCodeParameterInvalid, err)
	}

	sender, err := s.blockchain.GetSenderAddress(ctx, initCode)
	if err != nil {
		return nil, err
	}

	nonce, err := s.blockchain.GetNonce(ctx, sender)
	if err != nil {
		return nil, err
	}

	account := &Account{
		Owner:    owner,
		Salt:     new(big.Int).Set(salt),
		Sender:   sender,
		InitCode: initCode,
		Nonce:    nonce,
		State:    domain.DeploymentStateFromNonce(nonce),
	}

	s.logger(ctx).Info().
		Str("owner", owner.Hex()).
		Str("salt", salt.String()).
		Str("sender", sender.Hex()).
		Str("nonce", nonce.String()).
		Str("state", account.State.String()).
		Msg("resolved smart account")

	return account, nil
}

// RequireTokenBalance fails with a precondition error when account holds less than minBalance of token.
func (s *AccountService) RequireTokenBalance(ctx context.Context, token, account common.Address, minBalance *big.Int) error {
	balance, err := s.blockchain.BalanceOf(ctx, token, account)
	if err != nil {
		return err
	}

	s.logger(ctx).Debug().
		Str("token", token.Hex()).
		Str("account", account.Hex()).
		Str("balance", balance.String()).
		Msg("checked token balance")

	if balance.Cmp(minBalance) < 0 {
		return domain.NewError(domain.ErrorCodePreconditionFailed,
			fmt.Errorf("insufficient token balance for %s: %s, required at least %s",
				account.Hex(),
				balance.String(),
				minBalance.String()),
			domain.WithMsg("insufficient token balance"))
	}
	return nil
}
