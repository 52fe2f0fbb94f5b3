package contract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// MoodAddress is the mood contract deployment on Sepolia.
const MoodAddress = "0x60305Bc9d50Ecd64fC19974a43249c6BDDe3FBfC"

// Method names of the mood contract.
const (
	MethodGetMood = "getMood"
	MethodSetMood = "setMood"
)

// MoodABI is the two-method interface of the deployed contract.
const MoodABI = `[
  {
    "inputs": [{"internalType": "string", "name": "_mood", "type": "string"}],
    "name": "setMood",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "getMood",
    "outputs": [{"internalType": "string", "name": "", "type": "string"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

// ErrUnknownSelector is returned when calldata does not target a mood method.
var ErrUnknownSelector = errors.New("calldata does not match a mood method")

// Mood binds the fixed mood contract: its address and its ABI. It only packs
// and unpacks; sending is left to the wallet provider.
type Mood struct {
	address common.Address
	abi     abi.ABI
	entries []ABIEntry
}

// NewMood parses the mood ABI and binds it to MoodAddress.
func NewMood() (*Mood, error) {
	parsed, err := abi.JSON(strings.NewReader(MoodABI))
	if err != nil {
		return nil, fmt.Errorf("parsing mood ABI: %w", err)
	}
	entries, err := parseEntries(MoodABI)
	if err != nil {
		return nil, err
	}
	return &Mood{
		address: common.HexToAddress(MoodAddress),
		abi:     parsed,
		entries: entries,
	}, nil
}

// Address returns the contract address.
func (m *Mood) Address() common.Address {
	return m.address
}

// Methods returns the contract's ABI entries in declaration order.
func (m *Mood) Methods() []ABIEntry {
	out := make([]ABIEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// PackGetMood builds calldata for getMood().
func (m *Mood) PackGetMood() ([]byte, error) {
	data, err := m.abi.Pack(MethodGetMood)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", MethodGetMood, err)
	}
	return data, nil
}

// UnpackGetMood decodes the return data of getMood().
func (m *Mood) UnpackGetMood(data []byte) (string, error) {
	out, err := m.abi.Unpack(MethodGetMood, data)
	if err != nil {
		return "", fmt.Errorf("unpacking %s: %w", MethodGetMood, err)
	}
	if len(out) != 1 {
		return "", fmt.Errorf("unpacking %s: expected 1 value, got %d", MethodGetMood, len(out))
	}
	mood, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("unpacking %s: unexpected type %T", MethodGetMood, out[0])
	}
	return mood, nil
}

// PackSetMood builds calldata for setMood(string).
func (m *Mood) PackSetMood(mood string) ([]byte, error) {
	data, err := m.abi.Pack(MethodSetMood, mood)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", MethodSetMood, err)
	}
	return data, nil
}

// PackGetMoodResult encodes a value the way getMood() returns it.
func (m *Mood) PackGetMoodResult(mood string) ([]byte, error) {
	data, err := m.abi.Methods[MethodGetMood].Outputs.Pack(mood)
	if err != nil {
		return nil, fmt.Errorf("packing %s result: %w", MethodGetMood, err)
	}
	return data, nil
}

// MethodOf returns the mood method a calldata blob targets.
func (m *Mood) MethodOf(data []byte) (string, error) {
	if len(data) < 4 {
		return "", ErrUnknownSelector
	}
	method, err := m.abi.MethodById(data[:4])
	if err != nil {
		return "", ErrUnknownSelector
	}
	return method.Name, nil
}

// UnpackSetMood decodes the argument of setMood calldata.
func (m *Mood) UnpackSetMood(data []byte) (string, error) {
	name, err := m.MethodOf(data)
	if err != nil {
		return "", err
	}
	if name != MethodSetMood {
		return "", fmt.Errorf("%w: got %s", ErrUnknownSelector, name)
	}
	args, err := m.abi.Methods[MethodSetMood].Inputs.Unpack(data[4:])
	if err != nil {
		return "", fmt.Errorf("unpacking %s input: %w", MethodSetMood, err)
	}
	mood, ok := args[0].(string)
	if !ok {
		return "", fmt.Errorf("unpacking %s input: unexpected type %T", MethodSetMood, args[0])
	}
	return mood, nil
}
