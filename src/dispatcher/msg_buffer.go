package dispatcher

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hkaab/elevator.manager/src/types"
)

// cmdBuffer is the inbound FIFO shared by every producer and drained by the tick.
//   - stamps each command with a monotonic sequence id and its receive time
//   - never blocks producers on a running tick, it has its own lock
type cmdBuffer struct {
	mtx     sync.Mutex
	pending []types.Command
	counter atomic.Uint64
}

func (b *cmdBuffer) push(payload types.CmdPayload, now time.Time) types.Command {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	cmd := types.Command{
		Seq:        b.counter.Add(1),
		ReceivedAt: now,
		Payload:    payload,
	}
	b.pending = append(b.pending, cmd)
	return cmd
}

// drain hands over everything queued so far, oldest first.
func (b *cmdBuffer) drain() []types.Command {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	cmds := b.pending
	b.pending = nil
	return cmds
}

func (b *cmdBuffer) len() int {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return len(b.pending)
}
