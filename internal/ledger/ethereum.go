package ledger

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/wfunc/tictactoe-game/internal/config"
	apperrors "github.com/wfunc/tictactoe-game/internal/errors"
	"github.com/wfunc/tictactoe-game/internal/logger"
)

// playerStatsABI 链上战绩合约接口
// updateStats按增量累加，getStatsByPlayerId返回(playerId, wins, draws, losses)。
const playerStatsABI = `[
	{
		"inputs": [{"internalType": "uint256", "name": "playerId", "type": "uint256"}],
		"name": "registerPlayer",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "uint256", "name": "playerId", "type": "uint256"},
			{"internalType": "uint256", "name": "wins", "type": "uint256"},
			{"internalType": "uint256", "name": "draws", "type": "uint256"},
			{"internalType": "uint256", "name": "losses", "type": "uint256"}
		],
		"name": "updateStats",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "uint256", "name": "playerId", "type": "uint256"}],
		"name": "getStatsByPlayerId",
		"outputs": [
			{"internalType": "uint256", "name": "", "type": "uint256"},
			{"internalType": "uint256", "name": "", "type": "uint256"},
			{"internalType": "uint256", "name": "", "type": "uint256"},
			{"internalType": "uint256", "name": "", "type": "uint256"}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`

// EthereumLedger 以太坊链上账本
// 每次结算发一笔updateStats交易并等待上链，读取走view调用不耗gas。
type EthereumLedger struct {
	client      *ethclient.Client
	contract    *bind.BoundContract
	auth        *bind.TransactOpts
	callTimeout time.Duration
	sendTimeout time.Duration
	log         *zap.Logger
}

// NewEthereumLedger 连接RPC节点并绑定战绩合约
func NewEthereumLedger(cfg *config.LedgerConfig) (*EthereumLedger, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrLedgerConnect, "RPC节点连接失败")
	}

	parsed, err := abi.JSON(strings.NewReader(playerStatsABI))
	if err != nil {
		client.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrLedgerConnect, "合约ABI解析失败")
	}

	address := common.HexToAddress(cfg.ContractAddress)
	contract := bind.NewBoundContract(address, parsed, client, client, client)

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		client.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrLedgerConnect, "私钥解析失败")
	}

	auth, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(cfg.ChainID))
	if err != nil {
		client.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrLedgerConnect, "交易签名器创建失败")
	}

	callTimeout := cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	sendTimeout := cfg.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 60 * time.Second
	}

	return &EthereumLedger{
		client:      client,
		contract:    contract,
		auth:        auth,
		callTimeout: callTimeout,
		sendTimeout: sendTimeout,
		log:         logger.GetModuleLogger("ledger"),
	}, nil
}

// RecordOutcome 发送updateStats交易并等待上链
func (l *EthereumLedger) RecordOutcome(ctx context.Context, playerID uint, delta Delta) error {
	if delta.IsZero() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, l.sendTimeout)
	defer cancel()

	opts := *l.auth
	opts.Context = ctx

	tx, err := l.contract.Transact(&opts, "updateStats",
		new(big.Int).SetUint64(uint64(playerID)),
		new(big.Int).SetUint64(delta.Wins),
		new(big.Int).SetUint64(delta.Draws),
		new(big.Int).SetUint64(delta.Losses))
	if err != nil {
		logger.LogLedgerOperation("updateStats", playerID, "", err)
		return apperrors.Wrap(err, apperrors.ErrLedgerWrite)
	}

	receipt, err := bind.WaitMined(ctx, l.client, tx)
	if err != nil {
		logger.LogLedgerOperation("updateStats", playerID, tx.Hash().Hex(), err)
		return apperrors.Wrap(err, apperrors.ErrLedgerWrite, "等待交易上链失败")
	}
	if receipt.Status == 0 {
		err = apperrors.Newf(apperrors.ErrLedgerWrite, "交易被回滚: %s", tx.Hash().Hex())
		logger.LogLedgerOperation("updateStats", playerID, tx.Hash().Hex(), err)
		return err
	}

	logger.LogLedgerOperation("updateStats", playerID, tx.Hash().Hex(), nil)
	return nil
}

// ReadStats 读取链上战绩
func (l *EthereumLedger) ReadStats(ctx context.Context, playerID uint) (*Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, l.callTimeout)
	defer cancel()

	var out []interface{}
	err := l.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getStatsByPlayerId",
		new(big.Int).SetUint64(uint64(playerID)))
	if err != nil {
		logger.LogLedgerOperation("getStatsByPlayerId", playerID, "", err)
		return nil, apperrors.Wrap(err, apperrors.ErrLedgerRead)
	}
	if len(out) != 4 {
		return nil, apperrors.Newf(apperrors.ErrLedgerRead, "合约返回值数量异常: %d", len(out))
	}

	wins, ok1 := out[1].(*big.Int)
	draws, ok2 := out[2].(*big.Int)
	losses, ok3 := out[3].(*big.Int)
	if !ok1 || !ok2 || !ok3 {
		return nil, apperrors.New(apperrors.ErrLedgerRead, "合约返回值类型异常")
	}

	return &Stats{
		Wins:   wins.Uint64(),
		Draws:  draws.Uint64(),
		Losses: losses.Uint64(),
	}, nil
}

// RegisterPlayer 在链上登记玩家（首次结算前可选调用）
func (l *EthereumLedger) RegisterPlayer(ctx context.Context, playerID uint) error {
	ctx, cancel := context.WithTimeout(ctx, l.sendTimeout)
	defer cancel()

	opts := *l.auth
	opts.Context = ctx

	tx, err := l.contract.Transact(&opts, "registerPlayer",
		new(big.Int).SetUint64(uint64(playerID)))
	if err != nil {
		logger.LogLedgerOperation("registerPlayer", playerID, "", err)
		return apperrors.Wrap(err, apperrors.ErrLedgerWrite)
	}

	if _, err := bind.WaitMined(ctx, l.client, tx); err != nil {
		logger.LogLedgerOperation("registerPlayer", playerID, tx.Hash().Hex(), err)
		return apperrors.Wrap(err, apperrors.ErrLedgerWrite, "等待交易上链失败")
	}

	logger.LogLedgerOperation("registerPlayer", playerID, tx.Hash().Hex(), nil)
	return nil
}

// Close 关闭RPC连接
func (l *EthereumLedger) Close() error {
	l.client.Close()
	return nil
}
