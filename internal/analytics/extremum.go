package analytics

import "backtest-results-api/internal/domain"

// Gain is the best closed position of a direction.
type Gain struct {
	MaxGain           int64   `json:"maxGain"`
	MaxGainPercentage float64 `json:"maxGainPercentage"`
}

// Loss is the worst closed position of a direction.
// A zero Loss means no position closed below its entry balance.
type Loss struct {
	MaxLoss           int64   `json:"maxLoss"`
	MaxLossPercentage float64 `json:"maxLossPercentage"`
}

type balanceDelta struct {
	absolute   float64
	percentage float64
}

// balanceDeltas returns the balance change of every closed position whose
// entry balance is nonzero.
func balanceDeltas(dir domain.Direction, trades []*domain.TradeRecord) []balanceDelta {
	pairs := pairPositions(dir, trades)
	out := make([]balanceDelta, 0, len(pairs))
	for _, p := range pairs {
		entry := p.entry.Balance
		if entry == 0 {
			continue
		}
		delta := p.exit.Balance - entry
		out = append(out, balanceDelta{
			absolute:   delta,
			percentage: delta / entry * 100,
		})
	}
	return out
}

// MaxGain returns the largest balance increase over a closed position.
// The baseline is zero, so a series with only losing positions reports 0.
// When two positions tie, the later one is reported.
func MaxGain(openType, closeType domain.TradeType, trades []*domain.TradeRecord) Gain {
	var best balanceDelta
	for _, d := range balanceDeltas(domain.Direction{Open: openType, Close: closeType}, trades) {
		if d.absolute >= best.absolute {
			best = d
		}
	}
	return Gain{
		MaxGain:           int64(roundHalfUp(best.absolute)),
		MaxGainPercentage: roundHalfUp2(best.percentage),
	}
}

// MaxLoss returns the largest balance decrease over a closed position.
// Only negative changes count; with none, the zero Loss is returned.
// When two positions tie, the later one is reported.
func MaxLoss(openType, closeType domain.TradeType, trades []*domain.TradeRecord) Loss {
	var (
		worst balanceDelta
		found bool
	)
	for _, d := range balanceDeltas(domain.Direction{Open: openType, Close: closeType}, trades) {
		if d.absolute >= 0 {
			continue
		}
		if !found || d.absolute <= worst.absolute {
			worst = d
			found = true
		}
	}
	if !found {
		return Loss{}
	}
	return Loss{
		MaxLoss:           int64(roundHalfUp(worst.absolute)),
		MaxLossPercentage: roundHalfUp2(worst.percentage),
	}
}

// BestGain picks the larger of two gains by MaxGain. Ties keep a.
func BestGain(a, b Gain) Gain {
	if a.MaxGain >= b.MaxGain {
		return a
	}
	return b
}

// WorstLoss picks the deeper of two losses by MaxLoss. Ties keep a.
func WorstLoss(a, b Loss) Loss {
	if a.MaxLoss <= b.MaxLoss {
		return a
	}
	return b
}

// MaxGainAcross computes MaxGain per direction and keeps the best one,
// preferring earlier directions on ties.
func MaxGainAcross(dirs []domain.Direction, trades []*domain.TradeRecord) Gain {
	var best Gain
	for i, d := range dirs {
		g := MaxGain(d.Open, d.Close, trades)
		if i == 0 {
			best = g
			continue
		}
		best = BestGain(best, g)
	}
	return best
}

// MaxLossAcross computes MaxLoss per direction and keeps the deepest one,
// preferring earlier directions on ties.
func MaxLossAcross(dirs []domain.Direction, trades []*domain.TradeRecord) Loss {
	var worst Loss
	for i, d := range dirs {
		l := MaxLoss(d.Open, d.Close, trades)
		if i == 0 {
			worst = l
			continue
		}
		worst = WorstLoss(worst, l)
	}
	return worst
}
