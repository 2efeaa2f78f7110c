// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qcom

// Trace is a Hardware that logs every access instead of touching the
// platform, for walking a sequence on a development host. Reads return
// zero, so status guarded steps take their power-on path and show up
// in full.
type Trace struct {
	mpidr uint32
}

// OpenTrace returns a tracing Hardware that reports mpidr as the
// calling CPU.
func OpenTrace(mpidr uint32) *Trace {
	return &Trace{mpidr: mpidr}
}

func (t *Trace) MustRead32(addr uint32) uint32 {
	log.Infof("read32 %#08x -> 0x0", addr)
	return 0
}

func (t *Trace) MustWrite32(addr uint32, val uint32) {
	log.Infof("write32 %#08x <- %#08x", addr, val)
}

func (t *Trace) Barrier() {
	log.Infof("barrier")
}

func (t *Trace) Delay(us uint32) {
	log.Infof("delay %dus", us)
}

func (t *Trace) EnterCritical() {
	log.Debugf("enter critical section")
}

func (t *Trace) ExitCritical() {
	log.Debugf("exit critical section")
}

func (t *Trace) CurrentMPIDR() uint32 {
	return t.mpidr
}

func (t *Trace) Close() {
}
