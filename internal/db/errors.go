package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
	ErrInvalidQuery  = errors.New("db: invalid query")
)

// Op names used for error context. Valkey/Redis ops match command names.
const (
	OpCreateIndex      = "FT.CREATE"
	OpIndexInfo        = "FT.INFO"
	OpSearch           = "FT.SEARCH"
	OpHSet             = "HSET"
	OpGet              = "GET"
	OpSet              = "SET"
	OpIncrBy           = "INCRBY"
	OpExpire           = "EXPIRE"
	OpQuery            = "query"
	OpUpsert           = "upsert"
	OpCreateCollection = "create_collection"
	OpRPC              = "rpc"
	OpPing             = "ping"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
