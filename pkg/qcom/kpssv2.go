// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qcom

import (
	"fmt"

	"github.com/u-root/u-root/pkg/dt"
	"github.com/usbarmory/tamago/bits"
)

// APC_PWR_GATE_CTL fields.
const (
	bhsEnBit       = 0
	bhsSegShift    = 1
	ldoBypShift    = 8
	ldoPwrDwnShift = 16
	bhsCntShift    = 24
)

// KpssV2 powers on Krait cores of the second KPSS generation. The
// rail comes up through the per-core block head switch; the shared SAW
// hangs off the L2 cache node, not the core node.
type KpssV2 struct {
	hw Hardware
	r  Resolver
}

// NewKpssV2 returns the second generation KPSS power sequencer.
func NewKpssV2(hw Hardware, r Resolver) *KpssV2 {
	return &KpssV2{hw: hw, r: r}
}

// BringUp closes the core's head switch, raises the cluster phase
// count through the L2 SAW and walks the reset sequence. The SAW is
// found via next-level-cache and then qcom,saw on the cache node.
func (s *KpssV2) BringUp(cpu *dt.Node, acc uint32) error {
	cache, ok := s.r.Phandle(cpu, "next-level-cache")
	if !ok {
		return fmt.Errorf("Cannot find next-level-cache of %s", cpu.Name)
	}
	l2saw, ok := s.r.RegAddr(cache, "qcom,saw", 0)
	if !ok || l2saw == 0 {
		return fmt.Errorf("Cannot find SAW block of %s", cache.Name)
	}

	hw := s.hw
	hw.EnterCritical()
	defer hw.ExitCritical()

	// Turn on the BHS, turn off the LDO bypass and power down the
	// LDO.
	var gate uint32
	bits.SetN(&gate, bhsCntShift, 0xFF, 64)
	bits.SetN(&gate, ldoPwrDwnShift, 0x3F, 0x3F)
	bits.Set(&gate, bhsEnBit)
	hw.MustWrite32(acc+apcPwrGateCtl, gate)
	hw.Barrier()
	// Wait for the BHS to settle.
	hw.Delay(1)

	// Turn on the BHS segments.
	bits.SetN(&gate, bhsSegShift, 0x3F, 0x3F)
	hw.MustWrite32(acc+apcPwrGateCtl, gate)
	hw.Barrier()
	hw.Delay(1)

	// Turn on the bypass so the BHS supplies power from here on.
	bits.SetN(&gate, ldoBypShift, 0x3F, 0x3F)
	hw.MustWrite32(acc+apcPwrGateCtl, gate)

	// Enable max phases.
	hw.MustWrite32(l2saw+saw2Vctl, 0x10003)
	hw.Barrier()
	hw.Delay(50)

	var val uint32
	bits.Set(&val, corePorRstBit)
	bits.Set(&val, clampBit)
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

	bits.Set(&val, corePwrdUpBit)
	hw.MustWrite32(acc+cpuPwrCtl, val)
	hw.Barrier()

	return nil
}
