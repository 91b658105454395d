package scoring

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/abhisek/ieltsprep/internal/question"
)

// BandRow maps every percentage at or above MinPercentage to Band.
type BandRow struct {
	MinPercentage float64
	Band          float64
}

// BandTable converts percentages to IELTS bands. Rows are ordered by
// descending MinPercentage and the last row should cover 0.
type BandTable []BandRow

// Band returns the band for pct: the band of the first row whose threshold
// pct reaches, or 0 when none does.
func (t BandTable) Band(pct float64) float64 {
	for _, row := range t {
		if pct >= row.MinPercentage {
			return row.Band
		}
	}
	return 0
}

// Validate checks that thresholds strictly descend, bands never increase
// as thresholds drop, and every band is on the 0-9 half-band scale.
func (t BandTable) Validate() error {
	if len(t) == 0 {
		return errors.New("band table is empty")
	}
	for i, row := range t {
		if row.Band < 0 || row.Band > 9 || math.Mod(row.Band*2, 1) != 0 {
			return fmt.Errorf("row %d: band %.2f not on the 0-9 half-band scale", i, row.Band)
		}
		if row.MinPercentage < 0 || row.MinPercentage > 100 {
			return fmt.Errorf("row %d: threshold %.2f outside 0-100", i, row.MinPercentage)
		}
		if i == 0 {
			continue
		}
		prev := t[i-1]
		if row.MinPercentage >= prev.MinPercentage {
			return fmt.Errorf("row %d: thresholds must strictly descend (%.2f after %.2f)", i, row.MinPercentage, prev.MinPercentage)
		}
		if row.Band > prev.Band {
			return fmt.Errorf("row %d: band %.1f exceeds band %.1f at a higher threshold", i, row.Band, prev.Band)
		}
	}
	return nil
}

// fromRaw builds a percentage table from the published raw-score
// conversion, where each pair is (minimum correct out of 40, band).
func fromRaw(pairs [][2]float64) BandTable {
	t := make(BandTable, 0, len(pairs))
	for _, p := range pairs {
		t = append(t, BandRow{MinPercentage: p[0] * 100 / 40, Band: p[1]})
	}
	return t
}

// Academic reading raw-score conversion.
var readingTable = fromRaw([][2]float64{
	{39, 9}, {37, 8.5}, {35, 8}, {33, 7.5}, {30, 7}, {27, 6.5}, {23, 6},
	{19, 5.5}, {15, 5}, {13, 4.5}, {10, 4}, {8, 3.5}, {6, 3}, {4, 2.5},
	{2, 2}, {1, 1}, {0, 0},
})

// Listening raw-score conversion.
var listeningTable = fromRaw([][2]float64{
	{39, 9}, {37, 8.5}, {35, 8}, {32, 7.5}, {30, 7}, {26, 6.5}, {23, 6},
	{18, 5.5}, {16, 5}, {13, 4.5}, {10, 4}, {8, 3.5}, {6, 3}, {4, 2.5},
	{2, 2}, {1, 1}, {0, 0},
})

// DefaultBandTable returns a copy of the built-in table for kind.
func DefaultBandTable(kind question.Kind) BandTable {
	if kind == question.KindListening {
		return slices.Clone(listeningTable)
	}
	return slices.Clone(readingTable)
}

// Percentage returns 100*correct/total, or 0 when total is 0.
func Percentage(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(correct) / float64(total)
}

// CalculateBandScore maps a raw score to a band using the default table for kind.
func CalculateBandScore(correct, total int, kind question.Kind) float64 {
	return DefaultBandTable(kind).Band(Percentage(correct, total))
}

// RoundHalfBand rounds a mean band to the nearest half band, with .25 and
// .75 rounding up.
func RoundHalfBand(v float64) float64 {
	return math.Floor(v*2+0.5) / 2
}
