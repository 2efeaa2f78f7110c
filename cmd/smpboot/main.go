// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// smpboot powers on the secondary CPU cores described by a devicetree.
// By default it only traces the register writes it would do; -run makes
// it touch the hardware through /dev/mem.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/pevik/lk2nd/config"
	"github.com/pevik/lk2nd/pkg/fdt"
	"github.com/pevik/lk2nd/pkg/logger"
	"github.com/pevik/lk2nd/pkg/qcom"
	"github.com/pevik/lk2nd/pkg/smp"
)

var log = logger.LogContainer.GetSimpleLogger()

var (
	dtbPath = flag.String("dtb", config.DefaultConfig.Smp.DTBPath, "Devicetree blob describing the CPU cores")
	entry   = flag.Uint64("entry", uint64(config.DefaultConfig.Smp.EntryAddr), "Physical address the secondary cores start at")
	aarch64 = flag.Bool("aarch64", config.DefaultConfig.Smp.AArch64, "Announce a 64-bit entry point")
	method  = flag.String("method", config.DefaultConfig.Smp.Method, "CPU boot method (cortex-a, cortex-a-msm8994, kpss-v1, kpss-v2)")
	self    = flag.Uint64("self", 0, "MPIDR affinity value of the CPU running this command")
	run     = flag.Bool("run", false, "Touch the hardware through /dev/mem instead of tracing")
)

// traceCaller logs the secure monitor calls instead of issuing them.
// A user process has no path to the secure monitor, the call printed
// here is the one the boot stage has to make.
type traceCaller struct{}

func (traceCaller) ArmV8() bool {
	return true
}

func (traceCaller) Call(svc, cmd uint32, args []uint32) error {
	log.Infof("scm call svc %#x cmd %#x args %x", svc, cmd, args)
	return nil
}

func (traceCaller) CallAtomic(svc, cmd, arg0, arg1 uint32) error {
	log.Infof("scm atomic call svc %#x cmd %#x args %#x %#x", svc, cmd, arg0, arg1)
	return nil
}

// checkFlags rejects values the 32 bit register world cannot express.
// The flags parse as 64 bit numbers, anything wider than a register
// would be silently truncated on the way to the monitor.
func checkFlags(entry, self uint64) error {
	if entry == 0 {
		return fmt.Errorf("No entry address for the secondary cores, use -entry")
	}
	if entry > math.MaxUint32 {
		return fmt.Errorf("Entry address %#x does not fit in 32 bits", entry)
	}
	if self > math.MaxUint32 {
		return fmt.Errorf("MPIDR %#x does not fit in 32 bits", self)
	}
	return nil
}

func main() {
	flag.Parse()

	if err := checkFlags(*entry, *self); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	tree, err := fdt.Load(*dtbPath)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	var hw qcom.Hardware
	if *run {
		hw, err = qcom.OpenDevMem(uint32(*self))
		if err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
	} else {
		hw = qcom.OpenTrace(uint32(*self))
	}
	defer hw.Close()

	seq, err := qcom.For(*method, hw, tree)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	res, err := smp.New(tree, hw, seq).BootAll(traceCaller{}, uint32(*entry), *aarch64)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	failed := false
	for _, r := range res {
		log.Infof("CPU%x: %v", r.MPIDR, r.Status)
		if r.Err != nil {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
