package query

import (
	"errors"
)

var (
	ErrQueryNotSupported = errors.New("the requested query option is not supported")
)

type SupportedOptions byte

const (
	CanLimitResults  SupportedOptions = 0x01
	CanSortBy        SupportedOptions = 0x01 << 1
	CanQueryByCursor SupportedOptions = 0x01 << 2
)

type QueryOptions struct {
	Supported SupportedOptions

	SortBy Ordering
	Limit  uint64
	Cursor Cursor
}

type Option func(*QueryOptions) error

func (qo *QueryOptions) check(cap SupportedOptions) bool {
	return qo.Supported&cap != cap
}

func (qo *QueryOptions) Apply(opts ...Option) error {
	for _, o := range opts {
		err := o(qo)
		if err != nil {
			return err
		}
	}
	return nil
}

func WithDirection(val Ordering) Option {
	return func(qo *QueryOptions) error {
		if qo.check(CanSortBy) {
			return ErrQueryNotSupported
		}
		if !val.Valid() {
			return ErrQueryNotSupported
		}
		qo.SortBy = val
		return nil
	}
}

func WithLimit(val uint64) Option {
	return func(qo *QueryOptions) error {
		if qo.check(CanLimitResults) {
			return ErrQueryNotSupported
		}
		qo.Limit = val
		return nil
	}
}

func WithCursor(val Cursor) Option {
	return func(qo *QueryOptions) error {
		if qo.check(CanQueryByCursor) {
			return ErrQueryNotSupported
		}
		if err := val.Validate(); err != nil {
			return err
		}
		qo.Cursor = val
		return nil
	}
}
