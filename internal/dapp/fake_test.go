package dapp

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Mohsinsiddi/w3mood/internal/contract"
	"github.com/Mohsinsiddi/w3mood/internal/provider"
)

var testAccount = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

// fakeWallet is an in-memory wallet in front of an in-memory mood contract.
type fakeWallet struct {
	mu sync.Mutex

	selected  common.Address
	chainID   string
	accounts  []common.Address
	switchErr error
	callErr   error
	sendErr   error
	rawResult []byte // overrides the encoded mood when set
	reverted  bool

	mood     string
	switched []string
	calls    int
	sent     []provider.TxRequest
	receipts map[common.Hash]*types.Receipt
	polls    int
	minedAt  int // receipt appears on this poll
}

func newFakeWallet() *fakeWallet {
	return &fakeWallet{
		selected: testAccount,
		chainID:  TargetChainID,
		accounts: []common.Address{testAccount},
		receipts: make(map[common.Hash]*types.Receipt),
	}
}

func (f *fakeWallet) SelectedAddress(context.Context) (common.Address, error) {
	return f.selected, nil
}

func (f *fakeWallet) ChainID(context.Context) (string, error) {
	return f.chainID, nil
}

func (f *fakeWallet) SwitchChain(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.switched = append(f.switched, id)
	return f.switchErr
}

func (f *fakeWallet) RequestAddresses(context.Context) ([]common.Address, error) {
	return f.accounts, nil
}

func (f *fakeWallet) Call(_ context.Context, msg ethereum.CallMsg) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.callErr != nil {
		return nil, f.callErr
	}
	m, err := contract.NewMood()
	if err != nil {
		return nil, err
	}
	if msg.To == nil || *msg.To != m.Address() {
		return nil, nil
	}
	if f.rawResult != nil {
		return f.rawResult, nil
	}
	return m.PackGetMoodResult(f.mood)
}

func (f *fakeWallet) SendTransaction(_ context.Context, tx provider.TxRequest) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	m, err := contract.NewMood()
	if err != nil {
		return common.Hash{}, err
	}
	mood, err := m.UnpackSetMood(tx.Data)
	if err != nil {
		return common.Hash{}, err
	}
	f.sent = append(f.sent, tx)
	hash := crypto.Keccak256Hash(tx.Data, []byte{byte(len(f.sent))})

	status := types.ReceiptStatusSuccessful
	if f.reverted {
		status = types.ReceiptStatusFailed
	} else {
		f.mood = mood
	}
	f.receipts[hash] = &types.Receipt{TxHash: hash, Status: status}
	return hash, nil
}

func (f *fakeWallet) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.polls < f.minedAt {
		return nil, ethereum.NotFound
	}
	r, ok := f.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

func (f *fakeWallet) Close() {}

func (f *fakeWallet) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

var errUserRejected = errors.New("user rejected the request")

// recorder is a Display that keeps every update.
type recorder struct {
	mu       sync.Mutex
	statuses []string
	errs     []string
	results  []string
}

func (r *recorder) Status(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, msg)
}

func (r *recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, msg)
}

func (r *recorder) Result(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, msg)
}

func last(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1]
}
