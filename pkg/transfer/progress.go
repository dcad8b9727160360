package transfer

import (
	"context"
	"io"

	"github.com/cperrin88/cavern/pkg/model"
)

type progressWriter struct {
	w          io.Writer
	done       int64
	total      int64
	onProgress model.ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.done += int64(n)
	if n > 0 {
		p.report()
	}
	return n, err
}

func (p *progressWriter) report() {
	if p.onProgress != nil {
		p.onProgress(model.NewProgress(p.done, p.total))
	}
}

type contextReader struct {
	r   io.Reader
	ctx context.Context
}

func (cr *contextReader) Read(b []byte) (int, error) {
	select {
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	default:
		return cr.r.Read(b)
	}
}
