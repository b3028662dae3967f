package core

import (
	"time"

	retry "github.com/avast/retry-go"
)

// MaxIter bounds the number of attempts the driver makes per handshake
// phase. Exceeding it in phase III is fatal to the handshake; in phases I
// and II it means the final attempt's error is returned to the caller.
const MaxIter uint = 10

var (
	rtyAtt = retry.Attempts(MaxIter)
	rtyDel = retry.Delay(time.Millisecond * 750)
	rtyErr = retry.LastErrorOnly(true)
)
