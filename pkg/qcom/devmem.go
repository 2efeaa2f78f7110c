// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qcom

import (
	"fmt"
	"os"
	"time"
	"unsafe"

	"github.com/jmhodges/clock"
	"golang.org/x/sys/unix"
)

// DevMem is the Hardware backed by /dev/mem. Each access maps the
// containing page, touches the register and unmaps again. That is slow
// but the sequences are short and run once per core.
type DevMem struct {
	mf    *os.File
	clk   clock.Clock
	mpidr uint32
}

// OpenDevMem opens the platform registers through /dev/mem. mpidr is
// the affinity value of the calling CPU, passed in by the caller
// because the register itself cannot be read from a user process.
func OpenDevMem(mpidr uint32) (*DevMem, error) {
	f, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("Failed to open /dev/mem: %v", err)
	}
	return &DevMem{mf: f, clk: clock.New(), mpidr: mpidr}, nil
}

// pageSpan splits a register address into the page to map and the
// offset of the register inside it.
func pageSpan(addr uint32) (int64, uintptr) {
	ps := uintptr(unix.Getpagesize())
	page := uintptr(addr) & ^(ps - 1)
	return int64(page), uintptr(addr) - page
}

func (m *DevMem) MustRead32(addr uint32) uint32 {
	page, offset := pageSpan(addr)
	mem, err := unix.Mmap(int(m.mf.Fd()), page, unix.Getpagesize(), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		panic(err)
	}
	v := *(*uint32)(unsafe.Pointer(&mem[offset]))
	if err := unix.Munmap(mem); err != nil {
		panic(err)
	}
	return v
}

func (m *DevMem) MustWrite32(addr uint32, val uint32) {
	page, offset := pageSpan(addr)
	mem, err := unix.Mmap(int(m.mf.Fd()), page, unix.Getpagesize(), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		panic(err)
	}
	*(*uint32)(unsafe.Pointer(&mem[offset])) = val
	if err := unix.Munmap(mem); err != nil {
		panic(err)
	}
}

// Barrier needs no instruction here. O_SYNC gives an uncached device
// mapping and every access tears its mapping down before the next one
// starts, so stores reach the hardware in program order.
func (m *DevMem) Barrier() {
}

func (m *DevMem) Delay(us uint32) {
	m.clk.Sleep(time.Duration(us) * time.Microsecond)
}

// EnterCritical does nothing: a user process cannot mask interrupts.
// The sequence delays are minimums, so stretching a step by a
// scheduler preemption is harmless, it only wastes time.
func (m *DevMem) EnterCritical() {
}

func (m *DevMem) ExitCritical() {
}

func (m *DevMem) CurrentMPIDR() uint32 {
	return m.mpidr
}

func (m *DevMem) Close() {
	m.mf.Close()
}
