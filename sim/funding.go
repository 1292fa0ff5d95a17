package sim

import (
	"github.com/rustyeddy/trendsim/exchange"
	"github.com/rustyeddy/trendsim/logger"
)

// chargeFundingLocked debits funding from every open long at the current
// mark price. Shorts are exempt: a deliberately one-sided model that
// penalizes buy-and-hold longs instead of crediting the other side.
func (e *Engine) chargeFundingLocked() {
	for symbol, pos := range e.positions {
		if pos.side != exchange.Long {
			continue
		}
		fee := pos.contracts * e.markPrice * e.cfg.FundingRate
		e.balance -= fee
		logger.Debugf("sim: funding %s long %.6f contracts, charged %.6f", symbol, pos.contracts, fee)
	}
}
