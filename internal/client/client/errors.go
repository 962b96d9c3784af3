package client

import "github.com/dmitrijs2005/nutrisync/internal/common"

var (
	ErrUnavailable     = common.ErrUnavailable
	ErrUnauthorized    = common.ErrUnauthorized
	ErrNotFound        = common.ErrNotFound
	ErrInvalidArgument = common.ErrInvalidArgument
)
