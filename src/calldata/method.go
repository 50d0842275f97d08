package calldata

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Param is one ABI argument. Components are only used by tuple types.
type Param struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Components []Param `json:"components,omitempty"`
}

// Method is a single entry of a contract method table. Outputs are only used to decode
// results; they are never checked when encoding.
type Method struct {
	Contract string  `json:"contract"`
	Name     string  `json:"name"`
	Inputs   []Param `json:"inputs"`
	Outputs  []Param `json:"outputs"`
	View     bool    `json:"view"`

	abi abi.Method
}

// NewMethod resolves the parameter types and builds the ABI method.
func NewMethod(contract, name string, view bool, inputs, outputs []Param) (*Method, error) {
	in, err := toArguments(inputs)
	if err != nil {
		return nil, fmt.Errorf("method %s: invalid inputs: %w", name, err)
	}
	out, err := toArguments(outputs)
	if err != nil {
		return nil, fmt.Errorf("method %s: invalid outputs: %w", name, err)
	}

	mutability := "nonpayable"
	if view {
		mutability = "view"
	}

	return &Method{
		Contract: contract,
		Name:     name,
		Inputs:   inputs,
		Outputs:  outputs,
		View:     view,
		abi:      abi.NewMethod(name, name, abi.Function, mutability, false, false, in, out),
	}, nil
}

// MustMethod is NewMethod for static tables.
func MustMethod(contract, name string, view bool, inputs, outputs []Param) *Method {
	m, err := NewMethod(contract, name, view, inputs, outputs)
	if err != nil {
		panic(err)
	}
	return m
}

// Signature is the canonical signature, e.g. saveDDos(bool,uint8).
func (m *Method) Signature() string {
	return m.abi.Sig
}

func (m *Method) Selector() []byte {
	return m.abi.ID
}

func (m *Method) SelectorHex() string {
	return hexutil.Encode(m.abi.ID)
}

// Encode packs args behind the selector. Arguments must already have the Go types the ABI
// package expects (*big.Int for uint256, uint8 for uint8, common.Address, ...). *big.Int values
// wider than their declared type are rejected.
func (m *Method) Encode(args ...interface{}) ([]byte, error) {
	if err := m.checkIntegerArgs(args); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", m.Signature(), err)
	}
	packed, err := m.abi.Inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", m.Signature(), err)
	}
	return append(append([]byte{}, m.abi.ID...), packed...), nil
}

// DecodeInputs checks the selector and unpacks the call arguments.
func (m *Method) DecodeInputs(data []byte) ([]interface{}, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("calldata too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[:4], m.abi.ID) {
		return nil, fmt.Errorf("selector mismatch: got %s, want %s for %s",
			hexutil.Encode(data[:4]), m.SelectorHex(), m.Signature())
	}
	values, err := m.abi.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s inputs: %w", m.Signature(), err)
	}
	return values, nil
}

// DecodeOutputs unpacks return data using the declared outputs.
func (m *Method) DecodeOutputs(data []byte) ([]interface{}, error) {
	values, err := m.abi.Outputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s outputs: %w", m.Signature(), err)
	}
	return values, nil
}

// EncodeOutputs packs return values, the inverse of DecodeOutputs. Nodes and fakes that
// answer eth_call use it.
func (m *Method) EncodeOutputs(values ...interface{}) ([]byte, error) {
	packed, err := m.abi.Outputs.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s outputs: %w", m.Signature(), err)
	}
	return packed, nil
}

// OutputSignature renders the output types, e.g. (uint256,address,bool,uint8).
func (m *Method) OutputSignature() string {
	types := make([]string, len(m.abi.Outputs))
	for i, out := range m.abi.Outputs {
		types[i] = out.Type.String()
	}
	return "(" + strings.Join(types, ",") + ")"
}

func toArguments(params []Param) (abi.Arguments, error) {
	args := make(abi.Arguments, 0, len(params))
	for _, p := range params {
		typ, err := abi.NewType(p.Type, "", toMarshaling(p.Components))
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", p.Type, p.Name, err)
		}
		args = append(args, abi.Argument{Name: p.Name, Type: typ})
	}
	return args, nil
}

func toMarshaling(params []Param) []abi.ArgumentMarshaling {
	if len(params) == 0 {
		return nil
	}
	out := make([]abi.ArgumentMarshaling, len(params))
	for i, p := range params {
		out[i] = abi.ArgumentMarshaling{
			Name:       p.Name,
			Type:       p.Type,
			Components: toMarshaling(p.Components),
		}
	}
	return out
}
