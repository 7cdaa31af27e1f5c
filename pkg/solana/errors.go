package solana

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// TransactionErrorKey is the string key of a transaction level failure.
//
// Source: https://github.com/solana-labs/solana/blob/fc2bf2d3b669d1c6655ae48b0a05f470938f3676/sdk/src/transaction/mod.rs#L37
type TransactionErrorKey string

const (
	TransactionErrorAccountInUse            TransactionErrorKey = "AccountInUse"            // An account is already being processed in another transaction in a way that does not support parallelism
	TransactionErrorAccountLoadedTwice      TransactionErrorKey = "AccountLoadedTwice"      // A `Pubkey` appears twice in the transaction's `account_keys`
	TransactionErrorAccountNotFound         TransactionErrorKey = "AccountNotFound"         // Attempt to debit an account but found no record of a prior credit.
	TransactionErrorProgramAccountNotFound  TransactionErrorKey = "ProgramAccountNotFound"  // Attempt to load a program that does not exist
	TransactionErrorInsufficientFundsForFee TransactionErrorKey = "InsufficientFundsForFee" // The fee payer does not have sufficient balance to pay the fee
	TransactionErrorInvalidAccountForFee    TransactionErrorKey = "InvalidAccountForFee"    // This account may not be used to pay transaction fees
	TransactionErrorDuplicateSignature      TransactionErrorKey = "DuplicateSignature"      // The bank has seen this transaction before
	TransactionErrorBlockhashNotFound       TransactionErrorKey = "BlockhashNotFound"       // The bank has not seen the given `recent_blockhash` or it has expired
	TransactionErrorInstructionError        TransactionErrorKey = "InstructionError"        // An error occurred while processing an instruction
	TransactionErrorMissingSignatureForFee  TransactionErrorKey = "MissingSignatureForFee"  // Transaction requires a fee but has no signature present
	TransactionErrorInvalidAccountIndex     TransactionErrorKey = "InvalidAccountIndex"     // Transaction contains an invalid account reference
	TransactionErrorSignatureFailure        TransactionErrorKey = "SignatureFailure"        // Transaction did not pass signature verification
	TransactionErrorSanitizeFailure         TransactionErrorKey = "SanitizeFailure"         // Transaction failed to sanitize accounts offsets correctly
	TransactionErrorInvalidProgramForExec   TransactionErrorKey = "InvalidProgramForExecution"
	TransactionErrorDuplicateInstruction    TransactionErrorKey = "DuplicateInstruction"    // Transaction contains a duplicate compute budget instruction
)

// InstructionErrorKey is the string key of a builtin instruction failure.
//
// Source: https://github.com/solana-labs/solana/blob/4e2754341514cd181ae3f373cc2548bd22e918b8/sdk/program/src/instruction.rs#L23
type InstructionErrorKey string

const (
	InstructionErrorGenericError                InstructionErrorKey = "GenericError"
	InstructionErrorInvalidArgument             InstructionErrorKey = "InvalidArgument"
	InstructionErrorInvalidInstructionData      InstructionErrorKey = "InvalidInstructionData"
	InstructionErrorInvalidAccountData          InstructionErrorKey = "InvalidAccountData"
	InstructionErrorInsufficientFunds           InstructionErrorKey = "InsufficientFunds"
	InstructionErrorIncorrectProgramID          InstructionErrorKey = "IncorrectProgramId"
	InstructionErrorMissingRequiredSignature    InstructionErrorKey = "MissingRequiredSignature"
	InstructionErrorUnbalancedInstruction       InstructionErrorKey = "UnbalancedInstruction"
	InstructionErrorModifiedProgramID           InstructionErrorKey = "ModifiedProgramId"
	InstructionErrorExternalAccountLamportSpend InstructionErrorKey = "ExternalAccountLamportSpend"
	InstructionErrorReadonlyLamportChange       InstructionErrorKey = "ReadonlyLamportChange"
	InstructionErrorNotEnoughAccountKeys        InstructionErrorKey = "NotEnoughAccountKeys"
	InstructionErrorAccountNotExecutable        InstructionErrorKey = "AccountNotExecutable"
	InstructionErrorAccountBorrowFailed         InstructionErrorKey = "AccountBorrowFailed"
	InstructionErrorCustom                      InstructionErrorKey = "Custom"
	InstructionErrorUnsupportedProgramID        InstructionErrorKey = "UnsupportedProgramId"
	InstructionErrorCallDepth                   InstructionErrorKey = "CallDepth"
	InstructionErrorMissingAccount              InstructionErrorKey = "MissingAccount"
	InstructionErrorReentrancyNotAllowed        InstructionErrorKey = "ReentrancyNotAllowed"
	InstructionErrorMaxSeedLengthExceeded       InstructionErrorKey = "MaxSeedLengthExceeded"
	InstructionErrorInvalidSeeds                InstructionErrorKey = "InvalidSeeds"
	InstructionErrorPrivilegeEscalation         InstructionErrorKey = "PrivilegeEscalation"
	InstructionErrorComputationalBudgetExceeded InstructionErrorKey = "ComputationalBudgetExceeded"
	InstructionErrorProgramFailedToComplete     InstructionErrorKey = "ProgramFailedToComplete"
	InstructionErrorArithmeticOverflow          InstructionErrorKey = "ArithmeticOverflow"
)

// Error lets builtin keys be returned directly from program handlers.
func (k InstructionErrorKey) Error() string {
	return string(k)
}

// CustomError is the numerical error returned by a non-system program.
type CustomError uint32

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: 0x%x", uint32(c))
}

// Code returns the numeric program error code.
func (c CustomError) Code() uint32 {
	return uint32(c)
}

// ProgramError is implemented by program specific error enums, which surface
// to the transaction as a CustomError with the same code.
type ProgramError interface {
	error
	Code() uint32
}

// InstructionError indicates an instruction returned an error in a transaction.
type InstructionError struct {
	Index int
	Err   error
}

func (i InstructionError) Error() string {
	return fmt.Sprintf("Error processing Instruction %d: %v", i.Index, i.Err)
}

func (i InstructionError) Unwrap() error {
	return i.Err
}

func (i InstructionError) ErrorKey() InstructionErrorKey {
	if i.Err == nil {
		return ""
	}

	if i.CustomError() != nil {
		return InstructionErrorCustom
	}

	var key InstructionErrorKey
	if errors.As(i.Err, &key) {
		return key
	}

	return InstructionErrorGenericError
}

func (i InstructionError) CustomError() *CustomError {
	var pe ProgramError
	if errors.As(i.Err, &pe) {
		ce := CustomError(pe.Code())
		return &ce
	}

	return nil
}

// JSONString renders the error the way the Solana RPC reports it, for example
// `[0, {"Custom": 3}]`.
func (i InstructionError) JSONString() string {
	if ce := i.CustomError(); ce != nil {
		return fmt.Sprintf(`[%d, {"%s": %d}]`, i.Index, InstructionErrorCustom, uint32(*ce))
	}

	return fmt.Sprintf(`[%d, "%s"]`, i.Index, i.ErrorKey())
}

// TransactionError describes why a transaction was rejected or failed.
type TransactionError struct {
	key              TransactionErrorKey
	instructionError *InstructionError
}

// NewTransactionError returns a transaction error without instruction details.
func NewTransactionError(key TransactionErrorKey) *TransactionError {
	return &TransactionError{key: key}
}

// TransactionErrorFromInstructionError wraps err, raised by the instruction at
// index, as a transaction error.
func TransactionErrorFromInstructionError(index int, err error) *TransactionError {
	return &TransactionError{
		key: TransactionErrorInstructionError,
		instructionError: &InstructionError{
			Index: index,
			Err:   err,
		},
	}
}

func (t TransactionError) Error() string {
	if t.instructionError != nil {
		return t.instructionError.Error()
	}

	return string(t.key)
}

func (t TransactionError) Unwrap() error {
	if t.instructionError == nil {
		return nil
	}
	return *t.instructionError
}

func (t TransactionError) ErrorKey() TransactionErrorKey {
	return t.key
}

func (t TransactionError) InstructionError() *InstructionError {
	return t.instructionError
}

func (t TransactionError) MarshalJSON() ([]byte, error) {
	if t.instructionError == nil {
		return json.Marshal(string(t.key))
	}

	return []byte(fmt.Sprintf(`{"%s": %s}`, t.key, t.instructionError.JSONString())), nil
}
