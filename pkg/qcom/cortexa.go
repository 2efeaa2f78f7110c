// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qcom

import (
	"github.com/u-root/u-root/pkg/dt"
)

// CortexA powers on application cores on the msm8916 generation, where
// each core sits behind its own ACC block and the shared L2 is kept
// powered by the primary boot stage.
type CortexA struct {
	hw Hardware
	r  Resolver
}

// NewCortexA returns the generic Cortex-A power sequencer.
func NewCortexA(hw Hardware, r Resolver) *CortexA {
	return &CortexA{hw: hw, r: r}
}

// BringUp releases one core from reset. The core's clock phandle leads
// to the APCS cluster block; it is looked up only to confirm the
// cluster is described, the L2 side of that block needs no programming
// here.
func (s *CortexA) BringUp(cpu *dt.Node, acc uint32) error {
	if apcs, ok := s.r.RegAddr(cpu, "clocks", 0); ok {
		log.Debugf("APCS block of %s @ %#08x", cpu.Name, apcs)
	}

	hw := s.hw
	hw.EnterCritical()
	defer hw.ExitCritical()

	// Assert reset on the core while the power is brought up.
	hw.MustWrite32(acc+cpuPwrCtl, 0x00000033)
	hw.Barrier()

	// Program the head switch skew to 16 XO clock cycles.
	hw.MustWrite32(acc+apcPwrGateCtl, 0x10000001)
	hw.Barrier()
	hw.Delay(2)

	// De-assert coremem clamp.
	hw.MustWrite32(acc+cpuPwrCtl, 0x00000031)
	hw.Barrier()

	// Close coremem array gdhs.
	hw.MustWrite32(acc+cpuPwrCtl, 0x00000039)
	hw.Barrier()
	hw.Delay(2)

	// De-assert core clamp.
	hw.MustWrite32(acc+cpuPwrCtl, 0x00020038)
	hw.Barrier()
	hw.Delay(2)

	// De-assert core reset.
	hw.MustWrite32(acc+cpuPwrCtl, 0x00020008)
	hw.Barrier()

	// Assert PWRDUP.
	hw.MustWrite32(acc+cpuPwrCtl, 0x00020088)
	hw.Barrier()

	return nil
}
