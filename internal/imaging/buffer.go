package imaging

import (
	"sync/atomic"

	"github.com/valyala/bytebufferpool"
)

// scratchPool holds the buffers a request payload is staged in while it is
// decoded. Buffers are returned to the pool as soon as decoding finishes, so
// the decoded Raster never aliases pooled memory.
var scratchPool bytebufferpool.Pool

// buffersInUse counts scratch buffers that have been acquired but not yet
// released.
var buffersInUse atomic.Int64

func acquireScratch() *bytebufferpool.ByteBuffer {
	buffersInUse.Add(1)
	return scratchPool.Get()
}

func releaseScratch(buf *bytebufferpool.ByteBuffer) {
	scratchPool.Put(buf)
	buffersInUse.Add(-1)
}

// BuffersInUse reports how many decode scratch buffers are currently held.
// A non-zero value between requests indicates a leak.
func BuffersInUse() int64 {
	return buffersInUse.Load()
}
