//go:build darwin || linux

// Package shm provides POSIX shared memory regions used to hand sensor data
// from sensord to its consumers: a ring buffer for accelerometer samples and
// a snapshot region for slow-changing values such as the lid angle.
package shm

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/sys/unix"
)

// Layout constants.
const (
	RingCap    = 8000
	RingEntry  = 12 // 3x int32: x, y, z
	RingHeader = 16 // [0..3] write_idx u32, [4..11] total u64, [12..15] restarts u32
	RingSize   = RingHeader + RingCap*RingEntry
	SnapHeader = 8 // [0..3] update_count u32, [4..7] pad

	AccelScale = 65536.0 // Q16 raw -> g

	NameAccel = "shakelock_accel"
	NameLid   = "shakelock_lid"

	LidSize = SnapHeader + 4
)

// Sample holds a 3-axis reading in g.
type Sample struct {
	X, Y, Z float64
}

// ToQ16 converts a value in g to the ring's fixed-point representation.
func ToQ16(g float64) int32 {
	return int32(math.Round(g * AccelScale))
}

type segment struct {
	buf  []byte
	name string
	fd   int
}

// createSegment opens name read-write, creating it if needed. An existing
// segment of the right size is reused so readers that still map it keep
// seeing new data; existed reports that case.
func createSegment(name string, size int) (seg segment, existed bool, err error) {
	fd, err := shmOpen(name, unix.O_CREAT|unix.O_RDWR, 0o600)
	if err != nil {
		return segment{}, false, fmt.Errorf("shm_open %s: %w", name, err)
	}
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		unix.Close(fd)
		return segment{}, false, fmt.Errorf("fstat %s: %w", name, err)
	}
	existed = st.Size == int64(size)
	if !existed && st.Size != 0 {
		// Darwin cannot resize an existing object; replace it.
		unix.Close(fd)
		_ = shmUnlink(name)
		if fd, err = shmOpen(name, unix.O_CREAT|unix.O_RDWR, 0o600); err != nil {
			return segment{}, false, fmt.Errorf("shm_open %s: %w", name, err)
		}
	}
	if !existed {
		if err := unix.Ftruncate(fd, int64(size)); err != nil {
			unix.Close(fd)
			return segment{}, false, fmt.Errorf("ftruncate %s: %w", name, err)
		}
	}
	buf, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return segment{}, false, fmt.Errorf("mmap %s: %w", name, err)
	}
	if !existed {
		clear(buf)
	}
	return segment{buf: buf, name: name, fd: fd}, existed, nil
}

func openSegment(name string, size int) (segment, error) {
	fd, err := shmOpen(name, unix.O_RDONLY, 0)
	if err != nil {
		return segment{}, fmt.Errorf("shm_open %s: %w", name, err)
	}
	buf, err := unix.Mmap(fd, 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return segment{}, fmt.Errorf("mmap %s: %w", name, err)
	}
	return segment{buf: buf, name: name, fd: fd}, nil
}

// Close unmaps and closes the region. It does not unlink it. Closing twice
// is a no-op.
func (s *segment) Close() error {
	if s.buf == nil {
		return nil
	}
	if err := unix.Munmap(s.buf); err != nil {
		return err
	}
	s.buf = nil
	return unix.Close(s.fd)
}

// Unlink removes the named region.
func (s *segment) Unlink() error {
	return shmUnlink(s.name)
}

// RingBuffer is a shared memory ring of Q16 accelerometer samples.
type RingBuffer struct {
	segment
}

// CreateRing creates a writable ring, or takes over the ring left by a
// previous writer: its restart counter is bumped and its write position
// reset in place, which tells attached cursors to start over.
func CreateRing(name string) (*RingBuffer, error) {
	seg, existed, err := createSegment(name, RingSize)
	if err != nil {
		return nil, err
	}
	r := &RingBuffer{seg}
	if existed {
		binary.LittleEndian.PutUint32(r.buf[12:16], r.Restarts()+1)
		clear(r.buf[0:12])
	}
	return r, nil
}

// OpenRing maps an existing ring read-only.
func OpenRing(name string) (*RingBuffer, error) {
	seg, err := openSegment(name, RingSize)
	if err != nil {
		return nil, err
	}
	return &RingBuffer{seg}, nil
}

// WriteSample appends a raw Q16 sample.
func (r *RingBuffer) WriteSample(x, y, z int32) {
	idx := binary.LittleEndian.Uint32(r.buf[0:4])
	off := RingHeader + int(idx)*RingEntry

	binary.LittleEndian.PutUint32(r.buf[off:], uint32(x))
	binary.LittleEndian.PutUint32(r.buf[off+4:], uint32(y))
	binary.LittleEndian.PutUint32(r.buf[off+8:], uint32(z))

	binary.LittleEndian.PutUint32(r.buf[0:4], (idx+1)%RingCap)
	total := binary.LittleEndian.Uint64(r.buf[4:12])
	binary.LittleEndian.PutUint64(r.buf[4:12], total+1)
}

// Total returns the number of samples ever written.
func (r *RingBuffer) Total() uint64 {
	return binary.LittleEndian.Uint64(r.buf[4:12])
}

// Restarts returns how many times a writer has taken over the ring.
func (r *RingBuffer) Restarts() uint32 {
	return binary.LittleEndian.Uint32(r.buf[12:16])
}

// ReadNew returns samples written since lastTotal, oldest first, and the
// new total. At most RingCap samples are returned.
func (r *RingBuffer) ReadNew(lastTotal uint64) ([]Sample, uint64) {
	total := r.Total()
	n := int64(total) - int64(lastTotal)
	if n <= 0 {
		return nil, total
	}
	n = min(n, RingCap)

	idx := binary.LittleEndian.Uint32(r.buf[0:4])
	start := (int64(idx) - n + RingCap) % RingCap
	samples := make([]Sample, n)
	for i := range n {
		off := RingHeader + int((start+i)%RingCap)*RingEntry
		samples[i] = Sample{
			X: float64(int32(binary.LittleEndian.Uint32(r.buf[off:]))) / AccelScale,
			Y: float64(int32(binary.LittleEndian.Uint32(r.buf[off+4:]))) / AccelScale,
			Z: float64(int32(binary.LittleEndian.Uint32(r.buf[off+8:]))) / AccelScale,
		}
	}
	return samples, total
}

// Cursor tracks a reader's position in a RingBuffer.
type Cursor struct {
	ring     *RingBuffer
	total    uint64
	restarts uint32
	dropped  uint64
}

// NewCursor returns a cursor positioned at the ring's current end, so only
// samples written afterwards are returned.
func NewCursor(r *RingBuffer) *Cursor {
	return &Cursor{ring: r, total: r.Total(), restarts: r.Restarts()}
}

// Next returns the samples written since the previous call. When a new
// writer has taken over the ring the cursor starts again from its first
// sample.
func (c *Cursor) Next() []Sample {
	if rs := c.ring.Restarts(); rs != c.restarts {
		c.restarts = rs
		c.total = 0
	}
	total := c.ring.Total()
	if total < c.total {
		c.total = 0
	}
	if n := total - c.total; n > RingCap {
		c.dropped += n - RingCap
	}
	samples, t := c.ring.ReadNew(c.total)
	c.total = t
	return samples
}

// Dropped returns how many samples were overwritten before they were read.
func (c *Cursor) Dropped() uint64 {
	return c.dropped
}

// Snapshot is a shared memory region holding only the latest value.
type Snapshot struct {
	segment
}

// CreateSnapshot creates a writable snapshot region, reusing one left by a
// previous writer.
func CreateSnapshot(name string, size int) (*Snapshot, error) {
	seg, _, err := createSegment(name, size)
	if err != nil {
		return nil, err
	}
	return &Snapshot{seg}, nil
}

// OpenSnapshot maps an existing snapshot region read-only.
func OpenSnapshot(name string, size int) (*Snapshot, error) {
	seg, err := openSegment(name, size)
	if err != nil {
		return nil, err
	}
	return &Snapshot{seg}, nil
}

// WriteFloat32 stores v and bumps the update counter.
func (s *Snapshot) WriteFloat32(v float32) {
	binary.LittleEndian.PutUint32(s.buf[SnapHeader:], math.Float32bits(v))
	cnt := binary.LittleEndian.Uint32(s.buf[0:4])
	binary.LittleEndian.PutUint32(s.buf[0:4], cnt+1)
}

// ReadFloat32 returns the stored value if the counter moved past lastCount.
func (s *Snapshot) ReadFloat32(lastCount uint32) (float32, uint32, bool) {
	cnt := binary.LittleEndian.Uint32(s.buf[0:4])
	if cnt == lastCount {
		return 0, cnt, false
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(s.buf[SnapHeader:])), cnt, true
}
