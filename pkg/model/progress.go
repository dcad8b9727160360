package model

// Progress is emitted while a transfer is running. BytesTotal is zero when
// the server did not announce a length, in which case Fraction stays zero.
type Progress struct {
	BytesDone  int64
	BytesTotal int64
	Fraction   float64
}

// ProgressFunc receives progress reports. It is called from the goroutine
// performing the transfer.
type ProgressFunc func(Progress)

// NewProgress computes the fraction for the given counters.
func NewProgress(done, total int64) Progress {
	p := Progress{BytesDone: done, BytesTotal: total}
	if total > 0 {
		p.Fraction = float64(done) / float64(total)
		if p.Fraction > 1 {
			p.Fraction = 1
		}
	}
	return p
}
