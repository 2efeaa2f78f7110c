// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fdt resolves the register blocks the CPU bring-up path needs
// from a parsed flattened devicetree.
//
// The devicetree itself is borrowed, read-only state owned by the boot
// environment. This package only reads named properties, follows phandle
// references and extracts address cells from reg properties. A missing
// or undersized property is a recoverable absence reported through the
// ok result, never a fault: the caller decides per register block
// whether absence is fatal for the platform variant at hand.
package fdt

import (
	"bytes"
	"encoding/binary"

	"github.com/u-root/u-root/pkg/dt"

	"github.com/pevik/lk2nd/pkg/logger"
)

var log = logger.LogContainer.GetSimpleLogger()

// Tree wraps the root node of a parsed devicetree.
type Tree struct {
	root *dt.Node
}

// New returns a Tree over a parsed flattened devicetree.
func New(f *dt.FDT) *Tree {
	return &Tree{root: f.RootNode}
}

// NewFromRoot returns a Tree over an in-memory node graph.
func NewFromRoot(root *dt.Node) *Tree {
	return &Tree{root: root}
}

func (t *Tree) Root() *dt.Node {
	return t.root
}

// CellValue returns the index-th 32-bit cell of the named property of
// node. Properties hold big endian cells.
//
// For a property like
//
//	someproperty = <1 2 3 4>;
//
// CellValue(node, "someproperty", 1) returns 2.
func (t *Tree) CellValue(node *dt.Node, name string, index int) (uint32, bool) {
	p, ok := node.LookProperty(name)
	if !ok || len(p.Value) < 4*(index+1) {
		log.Warnf("Cannot read %s property of node %s", name, node.Name)
		return 0, false
	}
	return binary.BigEndian.Uint32(p.Value[4*index:]), true
}

// Phandle returns the node referenced by the phandle in cell 0 of the
// named property. Extra specifier cells, as in clocks = <&apcs 0>, are
// ignored.
func (t *Tree) Phandle(node *dt.Node, prop string) (*dt.Node, bool) {
	p, ok := node.LookProperty(prop)
	if !ok || len(p.Value) < 4 {
		log.Errorf("Cannot find %s node in %s: no such property", prop, node.Name)
		return nil, false
	}
	id := binary.BigEndian.Uint32(p.Value)
	target, ok := t.NodeByPhandle(id)
	if !ok {
		log.Errorf("Cannot find %s node in %s: no node with phandle %#x",
			prop, node.Name, id)
		return nil, false
	}
	return target, true
}

// NodeByPhandle returns the node whose phandle (or legacy linux,phandle)
// property equals id.
func (t *Tree) NodeByPhandle(id uint32) (*dt.Node, bool) {
	return t.root.Find(func(n *dt.Node) bool {
		for _, name := range []string{"phandle", "linux,phandle"} {
			p, ok := n.LookProperty(name)
			if ok && len(p.Value) == 4 && binary.BigEndian.Uint32(p.Value) == id {
				return true
			}
		}
		return false
	})
}

// RegAddr follows the phandle in prop and returns the address cell of
// the index-th (address, size) pair of the target node's reg property.
//
// For nodes like
//
//	l2ccc_0: clock-controller@f900d000 {
//		reg = <0xf900d000 0x1000>;
//		qcom,vctl-node = <&cluster0_spm>;
//	};
//
//	cluster0_spm: spm@f9012000 {
//		reg = <0xf9012000 0x1000>,
//		      <0xf900d210 0x8>;
//	};
//
// RegAddr(l2ccc, "qcom,vctl-node", 1) returns 0xf900d210. The cell
// offset is the index doubled: reg interleaves address and size cells,
// and callers ask for the index-th region, not the index-th cell.
func (t *Tree) RegAddr(node *dt.Node, prop string, index int) (uint32, bool) {
	target, ok := t.Phandle(node, prop)
	if !ok {
		return 0, false
	}
	return t.CellValue(target, "reg", 2*index)
}

// Cpus returns the CPU nodes under /cpus in declaration order.
func (t *Tree) Cpus() ([]*dt.Node, bool) {
	cpus, ok := t.root.NodeByName("cpus")
	if !ok {
		log.Errorf("Cannot find /cpus node")
		return nil, false
	}
	var nodes []*dt.Node
	for _, child := range cpus.Children {
		p, ok := child.LookProperty("device_type")
		if ok && string(bytes.TrimRight(p.Value, "\x00")) == "cpu" {
			nodes = append(nodes, child)
		}
	}
	return nodes, true
}
