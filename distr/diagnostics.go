package distr

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ResidentCountImbalance gathers every rank's resident count to root and
// returns the mean and sample standard deviation, used by load-balance
// diagnostics (spec §8 S6: "per-rank counts converge to even +/- 5%").
// Non-root callers get zeros.
func (d *Distributor) ResidentCountImbalance(root int) (mean, stddev float64) {
	counts := d.transport.GatherUint64(uint64(d.residentCount), root)
	if counts == nil {
		return 0, 0
	}
	values := make([]float64, len(counts))
	for i, c := range counts {
		values[i] = float64(c)
	}
	mean, variance := stat.MeanVariance(values, nil)
	return mean, math.Sqrt(variance)
}
