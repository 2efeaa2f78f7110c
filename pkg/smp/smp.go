// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package smp boots the secondary CPU cores listed in the devicetree.
// The entry address is announced to the secure monitor once, then every
// core is powered on through the platform's sequencer. Cores fail
// independently, one dead core does not keep the others down.
package smp

import (
	"fmt"

	"github.com/u-root/u-root/pkg/dt"

	"github.com/pevik/lk2nd/pkg/fdt"
	"github.com/pevik/lk2nd/pkg/logger"
	"github.com/pevik/lk2nd/pkg/qcom"
	"github.com/pevik/lk2nd/pkg/scm"
)

var log = logger.LogContainer.GetSimpleLogger()

// Only the affinity bits of MPIDR identify a core. The devicetree reg
// values carry nothing else, the live register does.
const affMask = 0xffffff

// Status is the outcome of one core's bring-up attempt.
type Status int

const (
	// Booted means the whole power sequence ran to the end.
	Booted Status = iota
	// Skipped means the core is the one running this code.
	Skipped
	// ResolutionFailed means the core's devicetree node did not yield
	// the required register blocks.
	ResolutionFailed
	// SequenceFailed means the power sequence stopped halfway.
	SequenceFailed
)

func (s Status) String() string {
	switch s {
	case Booted:
		return "booted"
	case Skipped:
		return "skipped"
	case ResolutionFailed:
		return "resolution failed"
	case SequenceFailed:
		return "sequence failed"
	}
	return fmt.Sprintf("status %d", int(s))
}

// Result describes what happened to one core.
type Result struct {
	Node   *dt.Node
	MPIDR  uint32
	Status Status
	Err    error
}

// Booter powers on the secondary cores of one platform.
type Booter struct {
	tree *fdt.Tree
	hw   qcom.Hardware
	seq  qcom.PowerSequencer
}

// New returns a Booter that resolves cores from tree and brings them
// up through seq on hw.
func New(tree *fdt.Tree, hw qcom.Hardware, seq qcom.PowerSequencer) *Booter {
	return &Booter{tree: tree, hw: hw, seq: seq}
}

// Boot powers on the core described by node. The first reg cell on a
// cpu node is the core's MPIDR affinity value.
func (b *Booter) Boot(node *dt.Node) Result {
	mpidr, ok := b.tree.CellValue(node, "reg", 0)
	if !ok {
		return Result{Node: node, Status: ResolutionFailed,
			Err: fmt.Errorf("No reg property on %s", node.Name)}
	}

	if mpidr&affMask == b.hw.CurrentMPIDR()&affMask {
		log.Infof("Skipping boot of current CPU (%x)", mpidr)
		return Result{Node: node, MPIDR: mpidr, Status: Skipped}
	}

	acc, ok := b.tree.RegAddr(node, "qcom,acc", 0)
	if !ok || acc == 0 {
		return Result{Node: node, MPIDR: mpidr, Status: ResolutionFailed,
			Err: fmt.Errorf("Cannot find ACC block of %s", node.Name)}
	}

	log.Infof("Booting CPU%x @ %#08x", mpidr, acc)

	if err := b.seq.BringUp(node, acc); err != nil {
		return Result{Node: node, MPIDR: mpidr, Status: SequenceFailed, Err: err}
	}

	// Give the core some time to boot.
	b.hw.Delay(100)

	return Result{Node: node, MPIDR: mpidr, Status: Booted}
}

// BootAll announces the entry address and powers on every core under
// /cpus. A failed announcement aborts before anything is powered, a
// failed core only marks its own result.
func (b *Booter) BootAll(c scm.Caller, entry uint32, arm64 bool) ([]Result, error) {
	cpus, ok := b.tree.Cpus()
	if !ok {
		return nil, fmt.Errorf("No cpus node in the devicetree")
	}

	if err := scm.SetBootAddr(c, entry, arm64); err != nil {
		return nil, fmt.Errorf("Failed to announce boot address: %v", err)
	}

	res := make([]Result, 0, len(cpus))
	booted := 0
	for _, cpu := range cpus {
		r := b.Boot(cpu)
		if r.Err != nil {
			log.Errorf("CPU node %s: %v", cpu.Name, r.Err)
		}
		if r.Status == Booted {
			booted++
		}
		res = append(res, r)
	}
	log.Infof("Booted %d of %d CPU cores", booted, len(res))
	return res, nil
}
