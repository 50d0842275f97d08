package service

import (
	"context"
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethaccount/dats/src/calldata"
	"github.com/ethaccount/dats/src/domain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// SettingsService reads DATS settings. The contract keys records by msg.sender, so every call
// is made from the smart account address. Nothing is cached.
type SettingsService struct {
	blockchain *BlockchainService
	dats       common.Address
}

func NewSettingsService(blockchain *BlockchainService, dats common.Address) *SettingsService {
	return &SettingsService{
		blockchain: blockchain,
		dats:       dats,
	}
}

// Call runs any DATS view method and returns its raw decoded outputs.
func (s *SettingsService) Call(ctx context.Context, account common.Address, m *calldata.Method, args ...interface{}) ([]interface{}, error) {
	if m.Contract != calldata.ContractDATS || !m.View {
		return nil, domain.NewError(domain.ErrorCodeParameterInvalid,
			fmt.Errorf("%s is not a DATS view method", m.Signature()))
	}
	return s.blockchain.CallView(ctx, account, s.dats, m, args...)
}

// Read runs a DATS view method and decodes its outputs into the matching domain settings
// record, list of records or count.
func (s *SettingsService) Read(ctx context.Context, account common.Address, m *calldata.Method, args ...interface{}) (interface{}, error) {
	if m.Contract != calldata.ContractDATS || !m.View {
		return nil, domain.NewError(domain.ErrorCodeParameterInvalid,
			fmt.Errorf("%s is not a DATS view method", m.Signature()))
	}
	if len(args) != len(m.Inputs) {
		return nil, domain.NewError(domain.ErrorCodeParameterInvalid,
			fmt.Errorf("%s takes %d arguments, got %d", m.Signature(), len(m.Inputs), len(args)))
	}
	read, ok := settingsReaders[m]
	if !ok {
		return nil, domain.NewError(domain.ErrorCodeInternalProcess,
			fmt.Errorf("no settings decoder for %s", m.Signature()))
	}
	return read(ctx, s, account, args)
}

type settingsReader func(ctx context.Context, s *SettingsService, account common.Address, args []interface{}) (interface{}, error)

var settingsReaders = map[*calldata.Method]settingsReader{
	calldata.DATSGetDDos: func(ctx context.Context, s *SettingsService, account common.Address, _ []interface{}) (interface{}, error) {
		return s.GetDDos(ctx, account)
	},
	calldata.DATSGetDDosByUser: func(ctx context.Context, s *SettingsService, account common.Address, args []interface{}) (interface{}, error) {
		user, err := userArg(args)
		if err != nil {
			return nil, err
		}
		return s.GetDDosByUser(ctx, account, user)
	},
	calldata.DATSGetAllUserDDosSettings: func(ctx context.Context, s *SettingsService, account common.Address, _ []interface{}) (interface{}, error) {
		return s.GetAllUserDDosSettings(ctx, account)
	},
	calldata.DATSGetSuperComputer: func(ctx context.Context, s *SettingsService, account common.Address, _ []interface{}) (interface{}, error) {
		return s.GetSuperComputer(ctx, account)
	},
	calldata.DATSGetSuperComputerByUser: func(ctx context.Context, s *SettingsService, account common.Address, args []interface{}) (interface{}, error) {
		user, err := userArg(args)
		if err != nil {
			return nil, err
		}
		return s.GetSuperComputerByUser(ctx, account, user)
	},
	calldata.DATSGetAllUserSuperComputerSettings: func(ctx context.Context, s *SettingsService, account common.Address, _ []interface{}) (interface{}, error) {
		return s.GetAllUserSuperComputerSettings(ctx, account)
	},
	calldata.DATSGetCyberSecurity: func(ctx context.Context, s *SettingsService, account common.Address, _ []interface{}) (interface{}, error) {
		return s.GetCyberSecurity(ctx, account)
	},
	calldata.DATSGetAllUserCyberSecuritySettings: func(ctx context.Context, s *SettingsService, account common.Address, _ []interface{}) (interface{}, error) {
		return s.GetAllUserCyberSecuritySettings(ctx, account)
	},
	calldata.DATSGetVulnerability: func(ctx context.Context, s *SettingsService, account common.Address, _ []interface{}) (interface{}, error) {
		return s.GetVulnerability(ctx, account)
	},
	calldata.DATSGetAllUserVulnerabilitySettings: func(ctx context.Context, s *SettingsService, account common.Address, _ []interface{}) (interface{}, error) {
		return s.GetAllUserVulnerabilitySettings(ctx, account)
	},
	calldata.DATSGetBlockchain: func(ctx context.Context, s *SettingsService, account common.Address, _ []interface{}) (interface{}, error) {
		return s.GetBlockchain(ctx, account)
	},
	calldata.DATSGetAllUserBlockchainSettings: func(ctx context.Context, s *SettingsService, account common.Address, _ []interface{}) (interface{}, error) {
		return s.GetAllUserBlockchainSettings(ctx, account)
	},
	calldata.DATSGetDDosCount:          countReader(calldata.DATSGetDDosCount),
	calldata.DATSGetSuperComputerCount: countReader(calldata.DATSGetSuperComputerCount),
	calldata.DATSGetCyberSecurityCount: countReader(calldata.DATSGetCyberSecurityCount),
	calldata.DATSGetVulnerabilityCount: countReader(calldata.DATSGetVulnerabilityCount),
	calldata.DATSGetBlockchainCount:    countReader(calldata.DATSGetBlockchainCount),
}

func countReader(m *calldata.Method) settingsReader {
	return func(ctx context.Context, s *SettingsService, account common.Address, _ []interface{}) (interface{}, error) {
		return s.Count(ctx, account, m)
	}
}

func userArg(args []interface{}) (common.Address, error) {
	if len(args) != 1 {
		return common.Address{}, domain.NewError(domain.ErrorCodeParameterInvalid,
			fmt.Errorf("expected one user address, got %d arguments", len(args)))
	}
	user, ok := args[0].(common.Address)
	if !ok {
		return common.Address{}, domain.NewError(domain.ErrorCodeParameterInvalid,
			fmt.Errorf("expected a user address, got %T", args[0]))
	}
	return user, nil
}

func (s *SettingsService) GetDDos(ctx context.Context, account common.Address) (*domain.DDoSSetting, error) {
	values, err := s.Call(ctx, account, calldata.DATSGetDDos)
	if err != nil {
		return nil, err
	}
	return decodeRecord[domain.DDoSSetting](values)
}

func (s *SettingsService) GetDDosByUser(ctx context.Context, account, user common.Address) (*domain.DDoSSetting, error) {
	values, err := s.Call(ctx, account, calldata.DATSGetDDosByUser, user)
	if err != nil {
		return nil, err
	}
	return decodeRecord[domain.DDoSSetting](values)
}

func (s *SettingsService) GetAllUserDDosSettings(ctx context.Context, account common.Address) ([]domain.DDoSSetting, error) {
	values, err := s.Call(ctx, account, calldata.DATSGetAllUserDDosSettings)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.DDoSSetting](values)
}

func (s *SettingsService) GetSuperComputer(ctx context.Context, account common.Address) (*domain.SuperComputerSetting, error) {
	values, err := s.Call(ctx, account, calldata.DATSGetSuperComputer)
	if err != nil {
		return nil, err
	}
	return decodeRecord[domain.SuperComputerSetting](values)
}

func (s *SettingsService) GetSuperComputerByUser(ctx context.Context, account, user common.Address) (*domain.SuperComputerSetting, error) {
	values, err := s.Call(ctx, account, calldata.DATSGetSuperComputerByUser, user)
	if err != nil {
		return nil, err
	}
	return decodeRecord[domain.SuperComputerSetting](values)
}

func (s *SettingsService) GetAllUserSuperComputerSettings(ctx context.Context, account common.Address) ([]domain.SuperComputerSetting, error) {
	values, err := s.Call(ctx, account, calldata.DATSGetAllUserSuperComputerSettings)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.SuperComputerSetting](values)
}

func (s *SettingsService) GetCyberSecurity(ctx context.Context, account common.Address) (*domain.CyberSecuritySetting, error) {
	values, err := s.Call(ctx, account, calldata.DATSGetCyberSecurity)
	if err != nil {
		return nil, err
	}
	return decodeRecord[domain.CyberSecuritySetting](values)
}

func (s *SettingsService) GetAllUserCyberSecuritySettings(ctx context.Context, account common.Address) ([]domain.CyberSecuritySetting, error) {
	values, err := s.Call(ctx, account, calldata.DATSGetAllUserCyberSecuritySettings)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.CyberSecuritySetting](values)
}

func (s *SettingsService) GetVulnerability(ctx context.Context, account common.Address) (*domain.VulnerabilitySetting, error) {
	values, err := s.Call(ctx, account, calldata.DATSGetVulnerability)
	if err != nil {
		return nil, err
	}
	return decodeRecord[domain.VulnerabilitySetting](values)
}

func (s *SettingsService) GetAllUserVulnerabilitySettings(ctx context.Context, account common.Address) ([]domain.VulnerabilitySetting, error) {
	values, err := s.Call(ctx, account, calldata.DATSGetAllUserVulnerabilitySettings)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.VulnerabilitySetting](values)
}

func (s *SettingsService) GetBlockchain(ctx context.Context, account common.Address) (*domain.BlockchainSetting, error) {
	values, err := s.Call(ctx, account, calldata.DATSGetBlockchain)
	if err != nil {
		return nil, err
	}
	return decodeRecord[domain.BlockchainSetting](values)
}

func (s *SettingsService) GetAllUserBlockchainSettings(ctx context.Context, account common.Address) ([]domain.BlockchainSetting, error) {
	values, err := s.Call(ctx, account, calldata.DATSGetAllUserBlockchainSettings)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.BlockchainSetting](values)
}

// Count calls one of the get*Count methods.
func (s *SettingsService) Count(ctx context.Context, account common.Address, m *calldata.Method) (*big.Int, error) {
	values, err := s.Call(ctx, account, m)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, domain.NewError(domain.ErrorCodeParameterInvalid, fmt.Errorf("%s is not a count method", m.Signature()))
	}
	count, ok := values[0].(*big.Int)
	if !ok {
		return nil, domain.NewError(domain.ErrorCodeParameterInvalid, fmt.Errorf("%s is not a count method", m.Signature()))
	}
	return count, nil
}

// decodeRecord copies flattened outputs (id, user, flags...) into a settings record. The
// record's fields follow the output order.
func decodeRecord[T any](values []interface{}) (*T, error) {
	var setting T
	record := reflect.ValueOf(&setting).Elem()
	if record.NumField() != len(values) {
		return nil, domain.NewError(domain.ErrorCodeRemoteProcess,
			fmt.Errorf("got %d values for a %d field record", len(values), record.NumField()))
	}
	for i, value := range values {
		field := record.Field(i)
		v := reflect.ValueOf(value)
		if !v.IsValid() || !v.Type().AssignableTo(field.Type()) {
			return nil, domain.NewError(domain.ErrorCodeRemoteProcess,
				fmt.Errorf("unexpected type %T for %s", value, record.Type().Field(i).Name))
		}
		field.Set(v)
	}
	return &setting, nil
}

// decodeList copies a decoded tuple[] output into a slice of settings records.
func decodeList[T any](values []interface{}) (settings []T, err error) {
	if len(values) != 1 {
		return nil, domain.NewError(domain.ErrorCodeRemoteProcess,
			fmt.Errorf("expected a single list output, got %d values", len(values)))
	}

	// abi.ConvertType panics when the shapes do not line up.
	defer func() {
		if r := recover(); r != nil {
			settings = nil
			err = domain.NewError(domain.ErrorCodeRemoteProcess, fmt.Errorf("unexpected settings layout: %v", r))
		}
	}()

	abi.ConvertType(values[0], &settings)
	return settings, nil
}
