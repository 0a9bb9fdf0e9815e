package export

import (
	"bytes"
	"io"
	"math"
	"net/http"
)

const downloadChunkSize = 32 * 1024

// ProgressFunc receives byte-level progress while a response body is
// consumed. determinate is false when the server did not advertise a
// total; no percentage is fabricated in that case and percent is -1.
type ProgressFunc func(received, total int64, percent int, determinate bool)

// Downloader consumes a streamable HTTP response incrementally,
// concatenating chunks in arrival order into the final byte blob.
type Downloader struct {
	ChunkSize  int
	OnProgress ProgressFunc
}

// Download reads resp.Body to completion. The reported percentage is
// capped at 99: the final 100 belongs to the caller, after the artifact
// is fully assembled and handed to the save step. A read failing
// mid-stream yields a StreamError carrying the bytes received so far.
func (d *Downloader) Download(resp *http.Response) ([]byte, error) {
	chunkSize := d.ChunkSize
	if chunkSize <= 0 {
		chunkSize = downloadChunkSize
	}

	total := resp.ContentLength
	determinate := total > 0

	var body bytes.Buffer
	var received int64
	buf := make([]byte, chunkSize)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			received += int64(n)
			body.Write(buf[:n])
			d.report(received, total, determinate)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &StreamError{BytesReceived: received, Err: err}
		}
	}
	return body.Bytes(), nil
}

func (d *Downloader) report(received, total int64, determinate bool) {
	if d.OnProgress == nil {
		return
	}
	if !determinate {
		d.OnProgress(received, 0, -1, false)
		return
	}
	pct := int(math.Round(float64(received) / float64(total) * 100))
	if pct > 99 {
		pct = 99
	}
	d.OnProgress(received, total, pct, true)
}
