// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qcom

import (
	"fmt"

	"github.com/u-root/u-root/pkg/dt"
	"github.com/usbarmory/tamago/bits"
)

// Offsets into the L2 cache clock controller block.
const (
	l2PwrCtlOverride = 0x0c
	l2PwrCtl         = 0x14
	l2VregCtl        = 0x1c
	l1RstDis         = 0x284
)

// L2_PWR_CTL handshake status bits. Either one set means the cluster
// cache is already up.
const (
	l2HsStsBit    = 9
	l2HsStsAltBit = 28
)

// Settle time in microseconds after programming the cluster supply
// regulator.
const regulatorSettleTime = 2000

// MSM8994 powers on cores grouped into clusters behind a shared L2.
// The first core of a cluster additionally has to bring up the cluster
// voltage rail and the L2 cache before its own sequence can run.
type MSM8994 struct {
	hw Hardware
	r  Resolver
}

// NewMSM8994 returns the msm8994 cluster power sequencer.
func NewMSM8994(hw Hardware, r Resolver) *MSM8994 {
	return &MSM8994{hw: hw, r: r}
}

// turnOnRail programs the cluster supply regulator through the SPM
// voltage control registers. vctl1 is a second, optional block; when
// present it carries the Q2S channel control.
func (s *MSM8994) turnOnRail(vctl0, vctl1, vctlVal uint32) {
	hw := s.hw

	if vctl1 != 0 {
		// Take the Q2S channel out of SPM legacy mode and ignore
		// channel requests while the rail comes up.
		hw.MustWrite32(vctl1, 0x2)
		hw.Barrier()
	}

	// Request the supply voltage. Only the low byte selects the level.
	hw.MustWrite32(vctl0+l2VregCtl, vctlVal&0xFF)
	hw.Barrier()
	hw.Delay(regulatorSettleTime)

	// Enable the regulator output.
	hw.MustWrite32(vctl0+l2VregCtl, 0x30080)
	hw.Barrier()
	hw.Delay(regulatorSettleTime)
}

// powerOnL2 brings up one cluster's L2 cache. The boot cluster's cache
// is already up from the primary boot stage, so the handshake status in
// the controller decides whether anything is done. The answer comes
// from the hardware on every call, no state is kept here.
func (s *MSM8994) powerOnL2(l2ccc, vctl0, vctl1, vctlVal uint32) error {
	hw := s.hw

	status := hw.MustRead32(l2ccc + l2PwrCtl)
	if bits.Get(&status, l2HsStsBit, 1) == 1 || bits.Get(&status, l2HsStsAltBit, 1) == 1 {
		return nil
	}

	if vctl0 == 0 {
		return fmt.Errorf("No voltage control block for L2 cache @ %#08x", l2ccc)
	}
	s.turnOnRail(vctl0, vctl1, vctlVal)

	log.Infof("Powering on L2 cache @ %#08x", l2ccc)

	hw.EnterCritical()
	defer hw.ExitCritical()

	// Let the hardware invalidate L1 on power up.
	hw.MustWrite32(l2ccc+l1RstDis, 0x00000000)
	hw.Barrier()

	// Hold PRESETDBGn asserted over the whole sequence.
	hw.MustWrite32(l2ccc+l2PwrCtlOverride, 0x00400000)
	hw.Barrier()

	// Close the L2/SCU logic GDHS and power the cache up.
	hw.MustWrite32(l2ccc+l2PwrCtl, 0x00029716)
	hw.Barrier()
	hw.Delay(8)

	// Release the L2/SCU memory clamp.
	hw.MustWrite32(l2ccc+l2PwrCtl, 0x00023716)
	hw.Barrier()

	// Wake the L2/SCU RAMs by releasing their sleep signals.
	hw.MustWrite32(l2ccc+l2PwrCtl, 0x0002371E)
	hw.Barrier()
	hw.Delay(8)

	// Un-gate the clock. The RAMs wake sequentially, two XO cycles
	// apart.
	hw.MustWrite32(l2ccc+l2PwrCtl, 0x0002371C)
	hw.Barrier()
	hw.Delay(4)

	// Release the L2/SCU logic clamp.
	hw.MustWrite32(l2ccc+l2PwrCtl, 0x0002361C)
	hw.Barrier()
	hw.Delay(2)

	// Release the L2/SCU logic reset.
	hw.MustWrite32(l2ccc+l2PwrCtl, 0x00022218)
	hw.Barrier()
	hw.Delay(4)

	// Turn on the PMIC APC.
	hw.MustWrite32(l2ccc+l2PwrCtl, 0x10022218)
	hw.Barrier()

	// Release PRESETDBGn.
	hw.MustWrite32(l2ccc+l2PwrCtlOverride, 0x00000000)
	hw.Barrier()

	return nil
}

// BringUp walks from the core node to its cluster blocks and powers
// them bottom up. The cache node hangs off next-level-cache, its power
// domain node carries the L2 clock controller in reg, the voltage rail
// blocks behind qcom,vctl-node and the requested level in
// qcom,vctl-val.
func (s *MSM8994) BringUp(cpu *dt.Node, acc uint32) error {
	cache, ok := s.r.Phandle(cpu, "next-level-cache")
	if !ok {
		return fmt.Errorf("Cannot find next-level-cache of %s", cpu.Name)
	}
	pd, ok := s.r.Phandle(cache, "power-domain")
	if !ok {
		return fmt.Errorf("Cannot find power-domain of %s", cache.Name)
	}

	l2ccc, _ := s.r.CellValue(pd, "reg", 0)
	vctl0, _ := s.r.RegAddr(pd, "qcom,vctl-node", 0)
	vctl1, _ := s.r.RegAddr(pd, "qcom,vctl-node", 1)
	vctlVal, _ := s.r.CellValue(pd, "qcom,vctl-val", 0)

	if l2ccc != 0 {
		if err := s.powerOnL2(l2ccc, vctl0, vctl1, vctlVal); err != nil {
			return err
		}
	}

	hw := s.hw
	hw.EnterCritical()
	defer hw.ExitCritical()

	// Close the first few head switch segments.
	hw.MustWrite32(acc+apcPwrGateCtl, 0x00000001)
	hw.Barrier()
	hw.Delay(1)

	// Close the rest.
	hw.MustWrite32(acc+apcPwrGateCtl, 0x00000003)
	hw.Barrier()
	hw.Delay(1)

	// Release the coremem clamp, asserted out of reset.
	hw.MustWrite32(acc+cpuPwrCtl, 0x00000079)
	hw.Barrier()
	hw.Delay(2)

	// Close the coremem array GDHS.
	hw.MustWrite32(acc+cpuPwrCtl, 0x0000007D)
	hw.Barrier()
	hw.Delay(2)

	// Release the core clamp.
	hw.MustWrite32(acc+cpuPwrCtl, 0x0000003D)
	hw.Barrier()

	hw.MustWrite32(acc+cpuPwrCtl, 0x0000003C)
	hw.Barrier()
	hw.Delay(1)

	// Release the core reset.
	hw.MustWrite32(acc+cpuPwrCtl, 0x0000000C)
	hw.Barrier()

	// Assert PWRDUP.
	hw.MustWrite32(acc+cpuPwrCtl, 0x0000008C)
	hw.Barrier()

	return nil
}
