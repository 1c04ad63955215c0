package client

import (
	"fmt"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
)

var (
	ErrUnavailable  = fmt.Errorf("%w: server unavailable", common.ErrRemoteSync)
	ErrUnauthorized = fmt.Errorf("%w: unauthorized", common.ErrRemoteSync)
)
