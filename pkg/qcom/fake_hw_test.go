// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qcom

import (
	"encoding/binary"
	"fmt"
	"testing"
)

const (
	opWrite32 = iota
	opRead32
	opBarrier
	opDelay
	opEnterCritical
	opExitCritical
)

type op struct {
	kind    int
	address uint32
	data    uint32
	us      uint32
}

func opstr(o *op) string {
	switch o.kind {
	case opWrite32:
		return fmt.Sprintf("{write @ %08x = %08x}", o.address, o.data)
	case opRead32:
		return fmt.Sprintf("{read @ %08x -> %08x}", o.address, o.data)
	case opBarrier:
		return "{barrier}"
	case opDelay:
		return fmt.Sprintf("{delay %dus}", o.us)
	case opEnterCritical:
		return "{enter critical}"
	case opExitCritical:
		return "{exit critical}"
	}
	return "{unknown}"
}

type fakeHW struct {
	t     *testing.T
	ops   []op
	mpidr uint32
}

func fakeHardware(t *testing.T) *fakeHW {
	return &fakeHW{t: t, ops: make([]op, 0)}
}

func (m *fakeHW) next(got string) (op, bool) {
	if len(m.ops) == 0 {
		m.t.Errorf("Expected no more hardware access, got %s", got)
		return op{}, false
	}
	o := m.ops[0]
	m.ops = m.ops[1:]
	return o, true
}

func (m *fakeHW) MustRead32(a uint32) uint32 {
	o, ok := m.next(fmt.Sprintf("read on %08x", a))
	if !ok {
		return 0
	}
	if o.kind != opRead32 || o.address != a {
		m.t.Errorf("Expected %s, got read on %08x", opstr(&o), a)
	}
	return o.data
}

func (m *fakeHW) MustWrite32(a uint32, d uint32) {
	o, ok := m.next(fmt.Sprintf("write of %08x on %08x", d, a))
	if !ok {
		return
	}
	if o.kind != opWrite32 || o.address != a || o.data != d {
		m.t.Errorf("Expected %s, got write of %08x on %08x", opstr(&o), d, a)
	}
}

func (m *fakeHW) Barrier() {
	o, ok := m.next("barrier")
	if !ok {
		return
	}
	if o.kind != opBarrier {
		m.t.Errorf("Expected %s, got barrier", opstr(&o))
	}
}

func (m *fakeHW) Delay(us uint32) {
	o, ok := m.next(fmt.Sprintf("delay of %dus", us))
	if !ok {
		return
	}
	if o.kind != opDelay || o.us != us {
		m.t.Errorf("Expected %s, got delay of %dus", opstr(&o), us)
	}
}

func (m *fakeHW) EnterCritical() {
	o, ok := m.next("enter critical")
	if !ok {
		return
	}
	if o.kind != opEnterCritical {
		m.t.Errorf("Expected %s, got enter critical", opstr(&o))
	}
}

func (m *fakeHW) ExitCritical() {
	o, ok := m.next("exit critical")
	if !ok {
		return
	}
	if o.kind != opExitCritical {
		m.t.Errorf("Expected %s, got exit critical", opstr(&o))
	}
}

func (m *fakeHW) CurrentMPIDR() uint32 {
	return m.mpidr
}

func (m *fakeHW) Close() {
}

func (m *fakeHW) ExpectWrite32(a uint32, d uint32) {
	m.ops = append(m.ops, op{kind: opWrite32, address: a, data: d})
}

func (m *fakeHW) FakeRead32(a uint32, d uint32) {
	m.ops = append(m.ops, op{kind: opRead32, address: a, data: d})
}

func (m *fakeHW) ExpectBarrier() {
	m.ops = append(m.ops, op{kind: opBarrier})
}

func (m *fakeHW) ExpectDelay(us uint32) {
	m.ops = append(m.ops, op{kind: opDelay, us: us})
}

func (m *fakeHW) ExpectEnterCritical() {
	m.ops = append(m.ops, op{kind: opEnterCritical})
}

func (m *fakeHW) ExpectExitCritical() {
	m.ops = append(m.ops, op{kind: opExitCritical})
}

func (m *fakeHW) done() {
	if len(m.ops) != 0 {
		m.t.Errorf("%d expected hardware accesses never happened, next %s", len(m.ops), opstr(&m.ops[0]))
	}
}

func cells(vals ...uint32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint32(b[4*i:], v)
	}
	return b
}
