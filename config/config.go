// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"github.com/pevik/lk2nd/pkg/qcom"
)

type Version struct {
	Version string
	GitHash string
}

type Smp struct {
	Method    string
	DTBPath   string
	EntryAddr uint32
	AArch64   bool
}

type Config struct {
	Smp     Smp
	Version Version
}

var DefaultConfig = &Config{
	// The philosophy behind the boot configuration is that the
	// environment this runs in has nothing to load a configuration
	// from: no rootfs worth trusting, often not even a writable /tmp.
	// So the defaults are compiled in and the command line overrides
	// them per invocation.
	Smp: Smp{
		// The msm8916 generation is by far the most common target, so
		// its sequence is the default. Everything else must be asked
		// for explicitly, running the wrong sequence can lock up the
		// power controller.
		Method: qcom.MethodCortexA,

		// The kernel re-exports the devicetree it booted with here.
		DTBPath: "/sys/firmware/fdt",

		// There is no safe default for the entry address. Zero makes
		// the caller pick one, the secure monitor would happily point
		// all secondary cores into the void.
		EntryAddr: 0,

		AArch64: false,
	},

	Version: Version{
		Version: gitVersion,
		GitHash: gitHash,
	},
}
