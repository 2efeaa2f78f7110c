// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package qcom implements the power-on sequences that release secondary
// CPU cores from reset on Qualcomm SoCs. Each SoC generation wires its
// cores to a different power block, so the sequence is picked once per
// platform and reused for every core on it.
package qcom

import (
	"fmt"

	"github.com/u-root/u-root/pkg/dt"

	"github.com/pevik/lk2nd/pkg/logger"
)

var log = logger.LogContainer.GetSimpleLogger()

// Hardware is the register access layer the sequences run against.
// Implementations exist for /dev/mem and for a write trace; tests use
// a scripted fake.
type Hardware interface {
	// MustRead32 returns the register at the given physical address.
	MustRead32(addr uint32) uint32
	// MustWrite32 stores val to the register at the given physical
	// address.
	MustWrite32(addr uint32, val uint32)
	// Barrier orders the preceding stores before any later access.
	// Every sequence step that changes power state is followed by one
	// so the hardware observes the steps in program order.
	Barrier()
	// Delay waits for at least us microseconds. The sequence delays
	// are datasheet minimums, waiting longer is always safe.
	Delay(us uint32)
	// EnterCritical and ExitCritical bracket the timing sensitive part
	// of a sequence so it cannot be interrupted halfway.
	EnterCritical()
	ExitCritical()
	// CurrentMPIDR returns the affinity bits of the calling CPU.
	CurrentMPIDR() uint32
	Close()
}

// Resolver looks up register blocks in the platform's devicetree.
// *fdt.Tree satisfies it.
type Resolver interface {
	CellValue(node *dt.Node, name string, index int) (uint32, bool)
	Phandle(node *dt.Node, prop string) (*dt.Node, bool)
	RegAddr(node *dt.Node, prop string, index int) (uint32, bool)
}

// PowerSequencer runs the power-on sequence for one core. The acc
// argument is the base of the core's power control block, already
// resolved by the caller; anything else the sequence needs (SAW, L2
// cache controller, voltage rail) is resolved from the core's
// devicetree node because its location differs per variant.
type PowerSequencer interface {
	BringUp(cpu *dt.Node, acc uint32) error
}

// Offsets into the per-core ACC block, common to all variants.
const (
	cpuPwrCtl     = 0x04
	apcPwrGateCtl = 0x14
)

// Offsets into the SAW power controller blocks.
const (
	sawVctl  = 0x14
	saw2Vctl = 0x1c
)

// Sequencer names accepted by For. They mirror the downstream
// enable-method naming for the respective SoC generations.
const (
	MethodCortexA = "cortex-a"
	MethodMSM8994 = "cortex-a-msm8994"
	MethodKpssV1  = "kpss-v1"
	MethodKpssV2  = "kpss-v2"
)

// For returns the power sequencer registered under the given method
// name.
func For(method string, hw Hardware, r Resolver) (PowerSequencer, error) {
	switch method {
	case MethodCortexA:
		return NewCortexA(hw, r), nil
	case MethodMSM8994:
		return NewMSM8994(hw, r), nil
	case MethodKpssV1:
		return NewKpssV1(hw, r), nil
	case MethodKpssV2:
		return NewKpssV2(hw, r), nil
	}
	return nil, fmt.Errorf("Unknown CPU boot method %q", method)
}
