// Copyright 2022 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scm builds the secure monitor boot calls that announce where
// secondary cores jump once their power sequence releases them.
package scm

import (
	"github.com/pevik/lk2nd/pkg/logger"
)

var log = logger.LogContainer.GetSimpleLogger()

const (
	// SvcBoot is the boot service owning the set-address commands.
	SvcBoot uint32 = 0x1

	// BootSetAddr is the legacy single-call command.
	BootSetAddr uint32 = 0x01
	// BootSetAddrMC is the multi-core command on v8-capable monitors.
	BootSetAddrMC uint32 = 0x11

	// Legacy flag set: every core, cold boot.
	bootFlagColdAll uint32 = 1<<0 | 1<<3 | 1<<5

	mcFlagAArch64  uint32 = 1 << 0
	mcFlagColdBoot uint32 = 1 << 1
	mcFlagWarmBoot uint32 = 1 << 2

	// Affinity mask selecting all cores in the multi-core call.
	allCpus = ^uint32(0)
)

// Caller is the secure monitor transport provided by the boot
// environment. ArmV8 reports whether the monitor understands the v8
// calling convention required by the multi-core command.
type Caller interface {
	ArmV8() bool
	Call(svc, cmd uint32, args []uint32) error
	CallAtomic(svc, cmd, arg0, arg1 uint32) error
}

// SetBootAddr announces the physical entry address all non-primary cores
// jump to on release. The multi-core call addresses every core at once
// through four all-ones affinity masks; monitors without v8 support get
// the legacy call with its fixed cold-boot-all flag set.
//
// The transport's verdict is returned as is. A failure here is fatal for
// bring-up of all secondary cores and is never retried.
func SetBootAddr(c Caller, addr uint32, arm64 bool) error {
	if c.ArmV8() {
		flags := mcFlagColdBoot
		if arm64 {
			flags |= mcFlagAArch64
		}
		return c.Call(SvcBoot, BootSetAddrMC, []uint32{
			addr, allCpus, allCpus, allCpus, allCpus, flags,
		})
	}

	log.Infof("Falling back to legacy boot address call")
	return c.CallAtomic(SvcBoot, BootSetAddr, bootFlagColdAll, addr)
}
