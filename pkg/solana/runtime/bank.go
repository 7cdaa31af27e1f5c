package runtime

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-vault/pkg/cache"
	"github.com/code-payments/code-vault/pkg/data/account"
	"github.com/code-payments/code-vault/pkg/database/query"
	"github.com/code-payments/code-vault/pkg/metrics"
	"github.com/code-payments/code-vault/pkg/solana"
	compute_budget "github.com/code-payments/code-vault/pkg/solana/computebudget"
	"github.com/code-payments/code-vault/pkg/solana/system"
)

const (
	metricsStructName = "runtime.bank"

	transactionProcessedMetricName = "Bank.TransactionProcessed"
	transactionFailedMetricName    = "Bank.TransactionFailed"
	transactionDurationMetricName  = "Bank.TransactionDuration"
	transactionFailedEventName     = "BankTransactionFailed"

	// Blockhashes older than this many slots are rejected.
	maxRecentBlockhashes = 150
)

var (
	ErrAccountInUse            = errors.New("account in use")
	ErrProgramAlreadyExists    = errors.New("program already registered")
	ErrInvalidProgramId        = errors.New("invalid program id")
	ErrProgramAccountImmutable = errors.New("program accounts cannot be modified")
)

// Bank executes transactions against the ledger state held in an account
// store.
type Bank struct {
	log   *logrus.Entry
	conf  *conf
	store account.Store

	programsMu sync.RWMutex
	programs   map[string]Program

	locks       *accountLocks
	statusCache cache.Cache[solana.Signature, uint64]

	stateMu     sync.RWMutex
	slot        uint64
	blockhashes []solana.Blockhash
}

// NewBank returns a bank at slot 0 with only the builtin system and compute
// budget programs registered.
func NewBank(store account.Store, configProvider ConfigProvider) *Bank {
	conf := configProvider()

	statusCacheSize := conf.statusCacheSize.Get(context.Background())
	if statusCacheSize > math.MaxInt32 {
		statusCacheSize = math.MaxInt32
	}

	b := &Bank{
		log:         logrus.StandardLogger().WithField("type", "solana/runtime/bank"),
		conf:        conf,
		store:       store,
		programs:    make(map[string]Program),
		locks:       newAccountLocks(),
		statusCache: cache.NewCache[solana.Signature, uint64](int(statusCacheSize)),
		blockhashes: []solana.Blockhash{sha256.Sum256([]byte("genesis"))},
	}
	b.programs[string(system.SystemAccount)] = systemProgram{}
	b.programs[string(compute_budget.ProgramKey)] = computeBudgetProgram{}

	return b
}

// RegisterProgram makes a program invocable under id.
func (b *Bank) RegisterProgram(id ed25519.PublicKey, program Program) error {
	if len(id) != ed25519.PublicKeySize || program == nil {
		return ErrInvalidProgramId
	}

	b.programsMu.Lock()
	defer b.programsMu.Unlock()

	if _, ok := b.programs[string(id)]; ok {
		return ErrProgramAlreadyExists
	}
	b.programs[string(id)] = program

	b.log.WithField("program", base58.Encode(id)).Debug("registered program")
	return nil
}

func (b *Bank) program(id ed25519.PublicKey) (Program, bool) {
	b.programsMu.RLock()
	defer b.programsMu.RUnlock()

	program, ok := b.programs[string(id)]
	return program, ok
}

func (b *Bank) isProgram(id ed25519.PublicKey) bool {
	_, ok := b.program(id)
	return ok
}

// Slot returns the current slot.
func (b *Bank) Slot() uint64 {
	b.stateMu.RLock()
	defer b.stateMu.RUnlock()
	return b.slot
}

// LatestBlockhash returns the blockhash transactions should currently
// reference.
func (b *Bank) LatestBlockhash() solana.Blockhash {
	b.stateMu.RLock()
	defer b.stateMu.RUnlock()
	return b.blockhashes[len(b.blockhashes)-1]
}

// AdvanceSlot moves to the next slot and derives its blockhash from the
// previous one.
func (b *Bank) AdvanceSlot() (uint64, solana.Blockhash) {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()

	b.slot++

	var slot [8]byte
	binary.LittleEndian.PutUint64(slot[:], b.slot)

	h := sha256.New()
	prev := b.blockhashes[len(b.blockhashes)-1]
	h.Write(prev[:])
	h.Write(slot[:])

	var next solana.Blockhash
	copy(next[:], h.Sum(nil))

	b.blockhashes = append(b.blockhashes, next)
	if len(b.blockhashes) > maxRecentBlockhashes {
		b.blockhashes = b.blockhashes[len(b.blockhashes)-maxRecentBlockhashes:]
	}

	return b.slot, next
}

func (b *Bank) isRecentBlockhash(bh solana.Blockhash) bool {
	b.stateMu.RLock()
	defer b.stateMu.RUnlock()

	for _, recent := range b.blockhashes {
		if recent == bh {
			return true
		}
	}
	return false
}

// GetAccount returns the current state of an account.
//
// Returns ErrAccountNotFound if the account has never been written.
func (b *Bank) GetAccount(ctx context.Context, key ed25519.PublicKey) (*Account, error) {
	if b.isProgram(key) {
		snapshot := newProgramAccount(key).snapshot()
		return &snapshot, nil
	}

	record, err := b.store.Get(ctx, base58.Encode(key))
	if err != nil {
		return nil, err
	}

	loaded, err := fromRecord(record)
	if err != nil {
		return nil, err
	}

	snapshot := loaded.snapshot()
	return &snapshot, nil
}

// GetBalance returns the lamports held by an account, which is zero for
// accounts that have never been written.
func (b *Bank) GetBalance(ctx context.Context, key ed25519.PublicKey) (uint64, error) {
	acct, err := b.GetAccount(ctx, key)
	if err == ErrAccountNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return acct.Lamports, nil
}

// GetProgramAccounts pages through the stored accounts owned by program.
func (b *Bank) GetProgramAccounts(ctx context.Context, program ed25519.PublicKey, opts ...query.Option) ([]*Account, error) {
	req, err := query.DefaultPaginationHandler(opts...)
	if err != nil {
		return nil, err
	}

	records, err := b.store.GetAllByOwner(ctx, base58.Encode(program), req.Cursor, req.Limit, req.SortBy)
	if err == ErrAccountNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	res := make([]*Account, len(records))
	for i, record := range records {
		loaded, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		snapshot := loaded.snapshot()
		res[i] = &snapshot
	}
	return res, nil
}

// Airdrop credits lamports to an account outside of any transaction.
func (b *Bank) Airdrop(ctx context.Context, key ed25519.PublicKey, lamports uint64) error {
	log := b.log.WithFields(logrus.Fields{
		"method":   "Airdrop",
		"account":  base58.Encode(key),
		"lamports": lamports,
	})

	if len(key) != ed25519.PublicKeySize {
		return errors.New("invalid account key")
	}
	if b.isProgram(key) {
		return ErrProgramAccountImmutable
	}

	writable := []ed25519.PublicKey{key}
	if !b.locks.tryLock(writable, nil) {
		return ErrAccountInUse
	}
	defer b.locks.unlock(writable, nil)

	loaded, err := b.loadAccount(ctx, key)
	if err != nil {
		log.WithError(err).Warn("failure loading account")
		return err
	}

	if loaded.lamports > math.MaxUint64-lamports {
		return ErrLamportOverflow
	}
	loaded.lamports += lamports

	if err := b.store.Save(ctx, loaded.toRecord(b.Slot())); err != nil {
		log.WithError(err).Warn("failure saving account")
		return err
	}

	log.Debug("airdropped lamports")
	return nil
}

func (b *Bank) loadAccount(ctx context.Context, key ed25519.PublicKey) (*ledgerAccount, error) {
	if b.isProgram(key) {
		return newProgramAccount(key), nil
	}

	record, err := b.store.Get(ctx, base58.Encode(key))
	if err == ErrAccountNotFound {
		return newSystemAccount(key), nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to load account %s", base58.Encode(key))
	}

	return fromRecord(record)
}

// ProcessTransaction executes and commits a signed transaction. Transaction
// level failures are reported in the result. The returned error is reserved
// for failures of the bank itself, in which case nothing was committed.
func (b *Bank) ProcessTransaction(ctx context.Context, txn solana.Transaction) (*Result, error) {
	return b.process(ctx, "ProcessTransaction", txn, true)
}

// SimulateTransaction executes a transaction without committing it. Signatures
// are not verified and the transaction may have been processed before.
func (b *Bank) SimulateTransaction(ctx context.Context, txn solana.Transaction) (*Result, error) {
	return b.process(ctx, "SimulateTransaction", txn, false)
}

func (b *Bank) process(ctx context.Context, method string, txn solana.Transaction, commit bool) (*Result, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, method)
	defer tracer.End()

	start := time.Now()

	result := &Result{
		Slot: b.Slot(),
	}
	if len(txn.Signatures) > 0 {
		result.Signature = txn.Signatures[0]
	}

	log := b.log.WithFields(logrus.Fields{
		"method":    method,
		"signature": base58.Encode(result.Signature[:]),
		"slot":      result.Slot,
	})

	txErr, err := b.execute(ctx, txn, commit, result)
	if err != nil {
		log.WithError(err).Warn("failure executing transaction")
		tracer.OnError(err)
		return nil, err
	}
	result.Err = txErr

	if !commit {
		return result, nil
	}

	metrics.RecordDuration(ctx, transactionDurationMetricName, time.Since(start))
	metrics.RecordCount(ctx, transactionProcessedMetricName, 1)

	if txErr != nil {
		metrics.RecordCount(ctx, transactionFailedMetricName, 1)
		metrics.RecordEvent(ctx, transactionFailedEventName, map[string]interface{}{
			"signature": base58.Encode(result.Signature[:]),
			"error":     txErr.Error(),
		})

		log.WithError(txErr).Debug("transaction failed")
		return result, nil
	}

	log.WithFields(logrus.Fields{
		"fee":           result.Fee,
		"compute_units": result.ComputeUnitsConsumed,
	}).Debug("transaction processed")
	return result, nil
}

func (b *Bank) execute(ctx context.Context, txn solana.Transaction, commit bool, result *Result) (*solana.TransactionError, error) {
	msg := txn.Message

	if txErr := sanitize(txn); txErr != nil {
		return txErr, nil
	}

	if !b.isRecentBlockhash(msg.RecentBlockhash) {
		return solana.NewTransactionError(solana.TransactionErrorBlockhashNotFound), nil
	}

	if commit {
		if err := txn.VerifySignatures(); err != nil {
			return solana.NewTransactionError(solana.TransactionErrorSignatureFailure), nil
		}
	}

	for _, ix := range msg.Instructions {
		if !b.isProgram(msg.Accounts[ix.ProgramIndex]) {
			return solana.NewTransactionError(solana.TransactionErrorProgramAccountNotFound), nil
		}
	}

	writableKeys, readonlyKeys := b.lockSets(msg)
	if !b.locks.tryLock(writableKeys, readonlyKeys) {
		return solana.NewTransactionError(solana.TransactionErrorAccountInUse), nil
	}
	defer b.locks.unlock(writableKeys, readonlyKeys)

	// Checked under the fee payer's lock, so a signature can only commit once
	if commit && b.statusCache.Contains(txn.Signatures[0]) {
		return solana.NewTransactionError(solana.TransactionErrorDuplicateSignature), nil
	}

	accounts := make([]*ledgerAccount, len(msg.Accounts))
	loaded := make([]accountState, len(msg.Accounts))
	for i, key := range msg.Accounts {
		a, err := b.loadAccount(ctx, key)
		if err != nil {
			return nil, err
		}
		accounts[i] = a
		loaded[i] = a.save()
	}

	payer := accounts[0]
	fee := b.conf.lamportsPerSignature.Get(ctx) * uint64(len(txn.Signatures))
	if payer.recordId == 0 && payer.lamports == 0 {
		return solana.NewTransactionError(solana.TransactionErrorAccountNotFound), nil
	}
	if payer.executable || !bytes.Equal(payer.owner, system.SystemAccount) || len(payer.data) > 0 {
		return solana.NewTransactionError(solana.TransactionErrorInvalidAccountForFee), nil
	}
	if payer.lamports < fee {
		return solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForFee), nil
	}
	payer.lamports -= fee

	computeUnitLimit, txErr := requestedComputeUnitLimit(msg, b.conf.computeUnitLimit.Get(ctx))
	if txErr != nil {
		return txErr, nil
	}

	ic := newInvokeContext(b.program, computeUnitLimit, int(b.conf.maxInvokeDepth.Get(ctx)))
	for i, ix := range msg.Instructions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f := &frame{program: msg.Accounts[ix.ProgramIndex]}
		for _, index := range ix.Accounts {
			f.add(accounts[index], msg.IsSigner(int(index)), b.isWritable(msg, int(index)))
		}

		err := ic.execute(f, ix.Data)
		result.Logs = ic.logs
		result.ComputeUnitsConsumed = ic.meter.consumed
		if err != nil {
			return solana.TransactionErrorFromInstructionError(i, err), nil
		}
	}

	if !commit {
		result.Fee = fee
		return nil, nil
	}

	slot := b.Slot()

	var records []*account.Record
	for i, a := range accounts {
		if a.executable || a.equals(loaded[i]) {
			continue
		}
		records = append(records, a.toRecord(slot))
	}

	if err := b.store.Save(ctx, records...); err != nil {
		return nil, errors.Wrap(err, "failed to save accounts")
	}

	if err := b.statusCache.Insert(txn.Signatures[0], slot, 1); err != nil && err != cache.ErrKeyExists {
		return nil, errors.Wrap(err, "failed to record signature")
	}

	result.Fee = fee
	return nil, nil
}

// isWritable demotes program accounts, which are never writable by a
// transaction.
func (b *Bank) isWritable(msg solana.Message, index int) bool {
	return msg.IsWritable(index) && !b.isProgram(msg.Accounts[index])
}

func (b *Bank) lockSets(msg solana.Message) (writable, readonly []ed25519.PublicKey) {
	for i, key := range msg.Accounts {
		if b.isWritable(msg, i) {
			writable = append(writable, key)
		} else {
			readonly = append(readonly, key)
		}
	}
	return writable, readonly
}

func sanitize(txn solana.Transaction) *solana.TransactionError {
	msg := txn.Message
	header := msg.Header

	if header.NumSignatures == 0 {
		return solana.NewTransactionError(solana.TransactionErrorMissingSignatureForFee)
	}

	if len(txn.Signatures) != int(header.NumSignatures) ||
		header.NumReadonlySigned >= header.NumSignatures ||
		int(header.NumSignatures)+int(header.NumReadOnly) > len(msg.Accounts) {
		return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}

	for i := range msg.Accounts {
		if len(msg.Accounts[i]) != ed25519.PublicKeySize {
			return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
		}

		for j := i + 1; j < len(msg.Accounts); j++ {
			if bytes.Equal(msg.Accounts[i], msg.Accounts[j]) {
				return solana.NewTransactionError(solana.TransactionErrorAccountLoadedTwice)
			}
		}
	}

	for _, ix := range msg.Instructions {
		// The fee payer can never be a program
		if ix.ProgramIndex == 0 || int(ix.ProgramIndex) >= len(msg.Accounts) {
			return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
		}

		for _, index := range ix.Accounts {
			if int(index) >= len(msg.Accounts) {
				return solana.NewTransactionError(solana.TransactionErrorInvalidAccountIndex)
			}
		}
	}

	return nil
}
