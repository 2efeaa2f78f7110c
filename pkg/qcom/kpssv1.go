// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qcom

import (
	"fmt"

	"github.com/u-root/u-root/pkg/dt"
	"github.com/usbarmory/tamago/bits"
)

// CPU_PWR_CTL bit positions, shared by both KPSS generations.
const (
	clampBit      = 0
	l2dtSlpBit    = 3
	coreRstBit    = 4
	corePorRstBit = 5
	corePwrdUpBit = 7
	pllClampBit   = 8
)

// KpssV1 powers on Krait cores of the first KPSS generation. Every
// core has its own SAW that supplies the CPU rail, referenced by the
// qcom,saw phandle on the core node.
type KpssV1 struct {
	hw Hardware
	r  Resolver
}

// NewKpssV1 returns the first generation KPSS power sequencer.
func NewKpssV1(hw Hardware, r Resolver) *KpssV1 {
	return &KpssV1{hw: hw, r: r}
}

// BringUp turns on the core's rail through its SAW and walks the Krait
// reset sequence. Without a SAW block there is no way to power the
// rail, so the core fails instead of running a partial sequence.
func (s *KpssV1) BringUp(cpu *dt.Node, acc uint32) error {
	saw, ok := s.r.RegAddr(cpu, "qcom,saw", 0)
	if !ok || saw == 0 {
		return fmt.Errorf("Cannot find SAW block of %s", cpu.Name)
	}

	hw := s.hw
	hw.EnterCritical()
	defer hw.ExitCritical()

	// Turn on the CPU rail.
	hw.MustWrite32(saw+sawVctl, 0xA4)
	hw.Barrier()
	hw.Delay(512)

	var val uint32
	bits.Set(&val, pllClampBit)
	bits.Set(&val, l2dtSlpBit)
	bits.Set(&val, clampBit)
	hw.MustWrite32(acc+cpuPwrCtl, val)

	bits.Clear(&val, l2dtSlpBit)
	hw.MustWrite32(acc+cpuPwrCtl, val)
	hw.Barrier()
	// The datasheet asks for 300ns here.
	hw.Delay(1)

	bits.Set(&val, corePorRstBit)
	hw.MustWrite32(acc+cpuPwrCtl, val)
	hw.Barrier()
	hw.Delay(2)

	bits.Clear(&val, clampBit)
	hw.MustWrite32(acc+cpuPwrCtl, val)
	hw.Barrier()
	hw.Delay(2)

	bits.Clear(&val, corePorRstBit)
	hw.MustWrite32(acc+cpuPwrCtl, val)
	hw.Barrier()
	hw.Delay(100)

	bits.Set(&val, corePwrdUpBit)
	hw.MustWrite32(acc+cpuPwrCtl, val)
	hw.Barrier()

	return nil
}
